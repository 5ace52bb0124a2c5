package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperdesk/internal/authz"
	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
	"paperdesk/pkg/mail"
)

// UploadedFileInput is client-supplied file metadata attached at order
// creation.
type UploadedFileInput struct {
	URL      string
	Name     string
	Size     int64
	MimeType string
}

// CreateOrderInput carries the fields for a new order. Amounts are
// never read from the client.
type CreateOrderInput struct {
	StudentID     string
	PaperType     string
	NumberOfPages int
	DueDate       string
	Files         []UploadedFileInput
}

// CreateOrderResult is the soft result of createOrder: a missing
// student reports success=false instead of failing the call.
type CreateOrderResult struct {
	Success bool
	Message string
	Order   *domain.Order
}

// CreateOrder persists an order with computed amounts and nested file
// metadata, then sends a best-effort confirmation email.
func (a *App) CreateOrder(ctx context.Context, actor *domain.User, in CreateOrderInput) (CreateOrderResult, error) {
	if actor == nil {
		return CreateOrderResult{}, ErrUnauthenticatedMutation
	}
	if in.PaperType == "" || in.NumberOfPages <= 0 {
		return CreateOrderResult{}, E(KindValidation, "paperType and numberOfPages are required")
	}

	student, ok, err := a.store.GetUserByID(in.StudentID)
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("fetch student: %w", err)
	}
	if !ok {
		return CreateOrderResult{Success: false, Message: MsgStudentNotFound}, nil
	}

	total, deposit := orderAmounts(in.NumberOfPages)
	now := time.Now().UTC()
	order := domain.Order{
		ID:            util.NewID(),
		StudentID:     student.ID,
		PaperType:     in.PaperType,
		NumberOfPages: in.NumberOfPages,
		DueDate:       in.DueDate,
		TotalAmount:   total,
		DepositAmount: deposit,
		Status:        domain.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, f := range in.Files {
		order.Files = append(order.Files, domain.UploadedFile{
			ID:        util.NewID(),
			OrderID:   order.ID,
			URL:       f.URL,
			Name:      f.Name,
			Size:      f.Size,
			MimeType:  f.MimeType,
			CreatedAt: now,
		})
	}
	if err := a.store.SaveOrder(order); err != nil {
		return CreateOrderResult{}, fmt.Errorf("save order: %w", err)
	}

	msg := mail.OrderConfirmationMessage(student.Email, order.ID, order.PaperType,
		order.NumberOfPages, order.DueDate, order.TotalAmount, order.DepositAmount)
	if err := a.mailer.Send(ctx, msg); err != nil {
		slog.Warn("order confirmation email failed", "order_id", order.ID, "error", err)
	}

	return CreateOrderResult{Success: true, Message: "Order created successfully", Order: &order}, nil
}

// GetOrder returns a single order owned by the actor. A lookup scoped
// by both id and owner cannot reveal whether the order exists under
// another student.
func (a *App) GetOrder(actor *domain.User, id string) (domain.Order, error) {
	if actor == nil {
		return domain.Order{}, ErrUnauthenticatedQuery
	}
	order, ok, err := a.store.GetOrderForStudent(id, actor.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return domain.Order{}, E(KindNotFound, MsgOrderNotFound)
	}
	return order, nil
}

// ListOrders returns the actor's orders. Every returned row's owner is
// re-checked; a mismatch is a data-integrity violation that fails the
// whole call rather than being silently filtered.
func (a *App) ListOrders(actor *domain.User) ([]domain.Order, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	orders, err := a.store.ListOrdersByStudent(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for _, o := range orders {
		if o.StudentID != actor.ID {
			slog.Error("order listing returned foreign row", "order_id", o.ID, "actor_id", actor.ID)
			return nil, E(KindInternal, MsgOrdersUnauthorized)
		}
	}
	if len(orders) == 0 {
		return nil, E(KindNotFound, MsgNoOrders)
	}
	return orders, nil
}

// UpdateOrderInput carries optional order fields. Amount overrides are
// honored only for admins.
type UpdateOrderInput struct {
	PaperType     *string
	NumberOfPages *int
	DueDate       *string
	Status        *domain.OrderStatus
	TotalAmount   *float64
	DepositAmount *float64
}

// UpdateOrder applies an update for the owning student or an admin.
// Persistence failures keep the historical wire message; the kind
// distinguishes them from real authorization denials.
func (a *App) UpdateOrder(actor *domain.User, id string, in UpdateOrderInput) (domain.Order, error) {
	if actor == nil {
		return domain.Order{}, ErrUnauthenticatedMutation
	}
	order, ok, err := a.store.GetOrder(id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return domain.Order{}, E(KindNotFound, MsgOrderNotFound)
	}
	if !authz.Can(actor, authz.EntityOrder, authz.ActionUpdate, authz.Target{StudentID: order.StudentID}) {
		return domain.Order{}, E(KindForbidden, MsgOrderUnauthorized)
	}

	if in.PaperType != nil {
		order.PaperType = *in.PaperType
	}
	if in.NumberOfPages != nil {
		order.NumberOfPages = *in.NumberOfPages
		order.TotalAmount, order.DepositAmount = orderAmounts(order.NumberOfPages)
	}
	if in.DueDate != nil {
		order.DueDate = *in.DueDate
	}
	if in.Status != nil {
		order.Status = *in.Status
	}
	// Independent amount revision is an admin-only escape hatch.
	if authz.HasRole(actor, domain.RoleAdmin) {
		if in.TotalAmount != nil {
			order.TotalAmount = *in.TotalAmount
		}
		if in.DepositAmount != nil {
			order.DepositAmount = *in.DepositAmount
		}
	}
	order.UpdatedAt = time.Now().UTC()

	if err := a.store.UpdateOrder(order); err != nil {
		slog.Error("order update failed", "order_id", id, "error", err)
		return domain.Order{}, Wrap(KindInternal, MsgOrderUnauthorized, err)
	}
	return order, nil
}

// DeleteOrder removes an order owned by the actor.
func (a *App) DeleteOrder(actor *domain.User, id string) (bool, error) {
	if actor == nil {
		return false, ErrUnauthenticatedMutation
	}
	order, ok, err := a.store.GetOrder(id)
	if err != nil {
		return false, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return false, E(KindNotFound, MsgOrderNotFound)
	}
	if !authz.Can(actor, authz.EntityOrder, authz.ActionDelete, authz.Target{StudentID: order.StudentID}) {
		return false, E(KindForbidden, MsgOrderUnauthorized)
	}
	if err := a.store.DeleteOrder(id); err != nil {
		slog.Error("order delete failed", "order_id", id, "error", err)
		return false, Wrap(KindInternal, MsgOrderUnauthorized, err)
	}
	return true, nil
}
