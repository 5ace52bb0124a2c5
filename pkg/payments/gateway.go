package payments

import (
	"context"
	"errors"
)

// Payment types accepted by checkout-session creation.
const (
	PaymentTypeDeposit = "deposit"
	PaymentTypeFull    = "full"
)

// EventCheckoutCompleted is the webhook event type that drives the
// reconciliation flow. Other event types are acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

var (
	// ErrInvalidSignature indicates the webhook signature did not verify.
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	// ErrInvalidPayload indicates the webhook body could not be decoded.
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

// SessionParams describes a checkout session to create.
type SessionParams struct {
	OrderID     string
	Amount      float64 // major units
	PaymentType string  // deposit or full
}

// CheckoutEvent is a verified, decoded webhook event.
type CheckoutEvent struct {
	Type          string
	OrderID       string
	CustomerEmail string
	TransactionID string
	Amount        float64 // major units (gateway minor units / 100)
	Raw           []byte
}

// Gateway abstracts the external payment provider: hosted checkout
// creation plus signed webhook event parsing.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p SessionParams) (string, error)
	ParseWebhookEvent(payload []byte, signatureHeader string) (CheckoutEvent, error)
}
