package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
	"paperdesk/pkg/mail"
	"paperdesk/pkg/payments"
)

// ParseWebhookEvent verifies and decodes a raw gateway webhook.
func (a *App) ParseWebhookEvent(payload []byte, signatureHeader string) (payments.CheckoutEvent, error) {
	if a.gateway == nil {
		return payments.CheckoutEvent{}, fmt.Errorf("payment gateway not configured")
	}
	return a.gateway.ParseWebhookEvent(payload, signatureHeader)
}

// HandleCheckoutEvent reconciles a verified gateway event: record a
// completed payment, advance the order, confirm by email. Delivery is
// at-least-once, so a transaction ID that already has a payment is
// acknowledged without mutating anything.
func (a *App) HandleCheckoutEvent(ctx context.Context, event payments.CheckoutEvent) error {
	if event.Type != payments.EventCheckoutCompleted {
		return nil
	}
	if event.OrderID == "" || event.TransactionID == "" {
		return E(KindValidation, "event missing order or transaction reference")
	}

	existing, exists, err := a.store.GetPaymentByTransactionID(event.TransactionID)
	if err != nil {
		return fmt.Errorf("check transaction: %w", err)
	}

	order, ok, err := a.store.GetOrder(event.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return E(KindNotFound, MsgOrderNotFound)
	}

	if exists {
		// Replay. The payment is already recorded; finish the status
		// advance if an earlier delivery failed between the two writes.
		slog.Info("webhook replay", "transaction_id", event.TransactionID, "payment_id", existing.ID)
		if order.Status == domain.OrderPending {
			if err := a.store.SetOrderStatus(order.ID, domain.OrderInProgress); err != nil {
				return fmt.Errorf("advance order status: %w", err)
			}
		}
		return nil
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:            util.NewID(),
		OrderID:       order.ID,
		Amount:        event.Amount,
		PaymentStatus: domain.PaymentCompleted,
		TransactionID: event.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.SavePayment(payment, event.Raw); err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	if err := a.store.SetOrderStatus(order.ID, domain.OrderInProgress); err != nil {
		// The payment row is committed; the gateway retry will land in
		// the replay branch above and advance the order then.
		slog.Error("order status advance failed after payment", "order_id", order.ID, "error", err)
		return fmt.Errorf("advance order status: %w", err)
	}

	to := event.CustomerEmail
	if to == "" {
		if student, found, err := a.store.GetUserByID(order.StudentID); err == nil && found {
			to = student.Email
		}
	}
	if to != "" {
		if err := a.mailer.Send(ctx, mail.PaymentConfirmationMessage(to, order.ID, event.Amount)); err != nil {
			slog.Warn("payment confirmation email failed", "order_id", order.ID, "error", err)
		}
	}
	return nil
}
