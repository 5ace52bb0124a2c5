package app

import (
	"context"
	"testing"

	"paperdesk/pkg/domain"
	"paperdesk/pkg/payments"
)

func checkoutEvent(orderID string) payments.CheckoutEvent {
	return payments.CheckoutEvent{
		Type:          payments.EventCheckoutCompleted,
		OrderID:       orderID,
		CustomerEmail: "s@x.com",
		TransactionID: "pi_123",
		Amount:        100,
		Raw:           []byte(`{"id":"evt_1"}`),
	}
}

func TestCheckoutEventCreatesPaymentAndAdvancesOrder(t *testing.T) {
	env := newTestEnv(t)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)
	order := env.addOrder(t, student.ID, 10)

	if err := env.app.HandleCheckoutEvent(context.Background(), checkoutEvent(order.ID)); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	list, err := env.store.ListPaymentsByOrder(order.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 payment, got %d err=%v", len(list), err)
	}
	p := list[0]
	if p.PaymentStatus != domain.PaymentCompleted || p.TransactionID != "pi_123" || p.Amount != 100 {
		t.Fatalf("unexpected payment %+v", p)
	}

	got, _, _ := env.store.GetOrder(order.ID)
	if got.Status != domain.OrderInProgress {
		t.Fatalf("order not advanced: %s", got.Status)
	}

	msgs := env.mailer.Messages()
	if len(msgs) != 1 || msgs[0].To != "s@x.com" {
		t.Fatalf("expected payment confirmation email, got %+v", msgs)
	}
}

func TestCheckoutEventReplayIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)
	order := env.addOrder(t, student.ID, 10)
	ev := checkoutEvent(order.ID)

	for i := 0; i < 3; i++ {
		if err := env.app.HandleCheckoutEvent(context.Background(), ev); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	list, err := env.store.ListPaymentsByOrder(order.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("replays must create exactly one payment, got %d err=%v", len(list), err)
	}
	if len(env.mailer.Messages()) != 1 {
		t.Fatalf("replays must not resend mail, got %d", len(env.mailer.Messages()))
	}
}

func TestCheckoutEventReplayFinishesStatusAdvance(t *testing.T) {
	env := newTestEnv(t)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)
	order := env.addOrder(t, student.ID, 10)
	ev := checkoutEvent(order.ID)

	// Simulate an earlier delivery that recorded the payment but died
	// before advancing the order.
	if err := env.store.SavePayment(domain.Payment{
		ID: "p1", OrderID: order.ID, Amount: 100,
		PaymentStatus: domain.PaymentCompleted, TransactionID: ev.TransactionID,
	}, nil); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	if err := env.app.HandleCheckoutEvent(context.Background(), ev); err != nil {
		t.Fatalf("replay: %v", err)
	}
	got, _, _ := env.store.GetOrder(order.ID)
	if got.Status != domain.OrderInProgress {
		t.Fatalf("replay must finish the advance, got %s", got.Status)
	}
	list, _ := env.store.ListPaymentsByOrder(order.ID)
	if len(list) != 1 {
		t.Fatalf("replay created a duplicate payment: %d", len(list))
	}
}

func TestCheckoutEventIgnoresOtherTypes(t *testing.T) {
	env := newTestEnv(t)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)
	order := env.addOrder(t, student.ID, 10)

	ev := checkoutEvent(order.ID)
	ev.Type = "invoice.paid"
	if err := env.app.HandleCheckoutEvent(context.Background(), ev); err != nil {
		t.Fatalf("other event types are acknowledged: %v", err)
	}
	if list, _ := env.store.ListPaymentsByOrder(order.ID); len(list) != 0 {
		t.Fatal("no payment expected for ignored event")
	}
}

func TestCheckoutEventUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	err := env.app.HandleCheckoutEvent(context.Background(), checkoutEvent("missing"))
	if err == nil {
		t.Fatal("expected error so the gateway retries")
	}
}
