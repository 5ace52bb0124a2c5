package app

import (
	"context"
	"fmt"
	"time"

	"paperdesk/internal/authz"
	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
	"paperdesk/pkg/payments"
)

// CreatePaymentInput carries the fields for a manually created payment.
type CreatePaymentInput struct {
	OrderID string
	Amount  float64
}

// CreatePayment records a PENDING payment against an order the actor
// owns. Completed payments come only from webhook reconciliation.
func (a *App) CreatePayment(actor *domain.User, in CreatePaymentInput) (domain.Payment, error) {
	if actor == nil {
		return domain.Payment{}, ErrUnauthenticatedMutation
	}
	order, ok, err := a.store.GetOrder(in.OrderID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return domain.Payment{}, E(KindNotFound, MsgOrderNotFound)
	}
	if !authz.Can(actor, authz.EntityPayment, authz.ActionCreate, authz.Target{StudentID: order.StudentID}) {
		return domain.Payment{}, E(KindForbidden, MsgPaymentUnauthorized)
	}
	if in.Amount <= 0 {
		return domain.Payment{}, E(KindValidation, "amount must be positive")
	}
	now := time.Now().UTC()
	payment := domain.Payment{
		ID:            util.NewID(),
		OrderID:       order.ID,
		Amount:        in.Amount,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.SavePayment(payment, nil); err != nil {
		return domain.Payment{}, fmt.Errorf("save payment: %w", err)
	}
	return payment, nil
}

// GetPayment returns a payment whose parent order the actor owns.
func (a *App) GetPayment(actor *domain.User, id string) (domain.Payment, error) {
	if actor == nil {
		return domain.Payment{}, ErrUnauthenticatedQuery
	}
	payment, ok, err := a.store.GetPayment(id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("fetch payment: %w", err)
	}
	if !ok {
		return domain.Payment{}, E(KindNotFound, MsgPaymentNotFound)
	}
	if err := a.requirePaymentAccess(actor, payment); err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

// ListPayments returns payments over all orders the actor owns.
func (a *App) ListPayments(actor *domain.User) ([]domain.Payment, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	list, err := a.store.ListPaymentsByStudent(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if len(list) == 0 {
		return nil, E(KindNotFound, MsgNoPayments)
	}
	return list, nil
}

// ListPaymentsByOrder returns an owned order's payments.
func (a *App) ListPaymentsByOrder(actor *domain.User, orderID string) ([]domain.Payment, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	if _, err := a.GetOrder(actor, orderID); err != nil {
		return nil, err
	}
	list, err := a.store.ListPaymentsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if len(list) == 0 {
		return nil, E(KindNotFound, MsgNoPayments)
	}
	return list, nil
}

// GetPaymentByTransaction resolves a payment by gateway transaction ID,
// scoped to the actor's orders.
func (a *App) GetPaymentByTransaction(actor *domain.User, transactionID string) (domain.Payment, error) {
	if actor == nil {
		return domain.Payment{}, ErrUnauthenticatedQuery
	}
	payment, ok, err := a.store.GetPaymentByTransactionID(transactionID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("fetch payment: %w", err)
	}
	if !ok {
		return domain.Payment{}, E(KindNotFound, MsgPaymentNotFound)
	}
	if err := a.requirePaymentAccess(actor, payment); err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

// requirePaymentAccess hides foreign payments behind not-found.
func (a *App) requirePaymentAccess(actor *domain.User, payment domain.Payment) error {
	order, ok, err := a.store.GetOrder(payment.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if !ok || !authz.Can(actor, authz.EntityPayment, authz.ActionRead, authz.Target{StudentID: order.StudentID}) {
		return E(KindNotFound, MsgPaymentNotFound)
	}
	return nil
}

// UpdatePaymentInput carries admin-editable payment fields.
type UpdatePaymentInput struct {
	PaymentStatus *domain.PaymentStatus
	Amount        *float64
}

// UpdatePayment applies an admin update, typically a status transition.
func (a *App) UpdatePayment(actor *domain.User, id string, in UpdatePaymentInput) (domain.Payment, error) {
	if actor == nil {
		return domain.Payment{}, ErrUnauthenticatedMutation
	}
	if !authz.Can(actor, authz.EntityPayment, authz.ActionUpdate, authz.Target{}) {
		return domain.Payment{}, E(KindForbidden, MsgAdminOnly)
	}
	payment, ok, err := a.store.GetPayment(id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("fetch payment: %w", err)
	}
	if !ok {
		return domain.Payment{}, E(KindNotFound, MsgPaymentNotFound)
	}
	if in.PaymentStatus != nil {
		payment.PaymentStatus = *in.PaymentStatus
	}
	if in.Amount != nil {
		payment.Amount = *in.Amount
	}
	payment.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdatePayment(payment); err != nil {
		return domain.Payment{}, fmt.Errorf("update payment: %w", err)
	}
	return payment, nil
}

// DeletePayment removes a payment, admin only.
func (a *App) DeletePayment(actor *domain.User, id string) (bool, error) {
	if actor == nil {
		return false, ErrUnauthenticatedMutation
	}
	if !authz.Can(actor, authz.EntityPayment, authz.ActionDelete, authz.Target{}) {
		return false, E(KindForbidden, MsgAdminOnly)
	}
	_, ok, err := a.store.GetPayment(id)
	if err != nil {
		return false, fmt.Errorf("fetch payment: %w", err)
	}
	if !ok {
		return false, E(KindNotFound, MsgPaymentNotFound)
	}
	if err := a.store.DeletePayment(id); err != nil {
		return false, fmt.Errorf("delete payment: %w", err)
	}
	return true, nil
}

// CreateCheckoutSession creates a gateway-hosted checkout for an owned
// order. The charged amount comes from the order, not the client:
// deposit charges DepositAmount, full charges TotalAmount.
func (a *App) CreateCheckoutSession(ctx context.Context, actor *domain.User, orderID, paymentType string) (string, error) {
	if actor == nil {
		return "", ErrUnauthenticatedMutation
	}
	if a.gateway == nil {
		return "", fmt.Errorf("payment gateway not configured")
	}
	if paymentType != payments.PaymentTypeDeposit && paymentType != payments.PaymentTypeFull {
		return "", E(KindValidation, "paymentType must be deposit or full")
	}
	order, ok, err := a.store.GetOrderForStudent(orderID, actor.ID)
	if err != nil {
		return "", fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return "", E(KindNotFound, MsgOrderNotFound)
	}
	amount := order.TotalAmount
	if paymentType == payments.PaymentTypeDeposit {
		amount = order.DepositAmount
	}
	url, err := a.gateway.CreateCheckoutSession(ctx, payments.SessionParams{
		OrderID:     order.ID,
		Amount:      amount,
		PaymentType: paymentType,
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return url, nil
}
