package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig configures the Stripe gateway.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api           *stripeclient.API
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

// NewStripeGateway constructs the gateway with an explicit API client,
// not the SDK's package-level key.
func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("stripe api key is required")
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	currency := strings.TrimSpace(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	api := &stripeclient.API{}
	api.Init(cfg.APIKey, nil)
	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		currency:      currency,
	}, nil
}

// CreateCheckoutSession creates a hosted checkout page and returns its URL.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p SessionParams) (string, error) {
	if strings.TrimSpace(p.OrderID) == "" {
		return "", errors.New("orderId is required")
	}
	if p.Amount <= 0 {
		return "", errors.New("amount must be positive")
	}
	label := "Order payment"
	switch p.PaymentType {
	case PaymentTypeDeposit:
		label = "Order deposit"
	case PaymentTypeFull:
		label = "Order full payment"
	default:
		return "", fmt.Errorf("unknown payment type %q", p.PaymentType)
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(p.OrderID),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.currency),
					UnitAmount: stripe.Int64(int64(p.Amount * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(label),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ParseWebhookEvent verifies the signature against the raw body and
// decodes the fields the reconciliation flow needs.
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signatureHeader string) (CheckoutEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return CheckoutEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	out := CheckoutEvent{Type: string(event.Type), Raw: payload}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return CheckoutEvent{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	out.OrderID = sess.ClientReferenceID
	out.CustomerEmail = sess.CustomerEmail
	if out.CustomerEmail == "" && sess.CustomerDetails != nil {
		out.CustomerEmail = sess.CustomerDetails.Email
	}
	if sess.PaymentIntent != nil {
		out.TransactionID = sess.PaymentIntent.ID
	}
	// Stripe reports amounts in minor units.
	out.Amount = float64(sess.AmountTotal) / 100
	return out, nil
}
