package app

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"paperdesk/pkg/domain"
	"paperdesk/pkg/mail"
	"paperdesk/pkg/store"
)

func TestCreateOrderComputesAmounts(t *testing.T) {
	env := newTestEnv(t)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)

	res, err := env.app.CreateOrder(context.Background(), &student, CreateOrderInput{
		StudentID:     student.ID,
		PaperType:     "Essay",
		NumberOfPages: 10,
		DueDate:       "2026-12-01",
		Files: []UploadedFileInput{
			{URL: "https://files.example/brief.pdf", Name: "brief.pdf", Size: 1024, MimeType: "application/pdf"},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !res.Success || res.Order == nil {
		t.Fatalf("unexpected result %+v", res)
	}
	o := res.Order
	if o.TotalAmount != 200 || o.DepositAmount != 100 {
		t.Fatalf("amounts not computed: total=%v deposit=%v", o.TotalAmount, o.DepositAmount)
	}
	if o.Status != domain.OrderPending {
		t.Fatalf("expected PENDING, got %s", o.Status)
	}

	files, err := env.store.ListFilesByOrder(o.ID)
	if err != nil || len(files) != 1 {
		t.Fatalf("expected nested file, got %d err=%v", len(files), err)
	}

	msgs := env.mailer.Messages()
	if len(msgs) != 1 || msgs[0].To != "s@x.com" {
		t.Fatalf("expected one confirmation email to student, got %+v", msgs)
	}
	if !strings.Contains(msgs[0].Body, "200.00") || !strings.Contains(msgs[0].Body, "100.00") {
		t.Fatalf("confirmation missing amounts: %q", msgs[0].Body)
	}
}

func TestCreateOrderStudentNotFound(t *testing.T) {
	env := newTestEnv(t)
	actor := env.addUser(t, "admin@x.com", domain.RoleAdmin)

	res, err := env.app.CreateOrder(context.Background(), &actor, CreateOrderInput{
		StudentID: "missing", PaperType: "Essay", NumberOfPages: 3,
	})
	if err != nil {
		t.Fatalf("missing student must be a soft result: %v", err)
	}
	if res.Success || res.Message != "Student not found" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(env.mailer.Messages()) != 0 {
		t.Fatal("no email expected for failed creation")
	}
}

func TestGetOrderHidesForeignOrders(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@x.com", domain.RoleStudent)
	other := env.addUser(t, "other@x.com", domain.RoleStudent)
	order := env.addOrder(t, owner.ID, 4)

	if _, err := env.app.GetOrder(&owner, order.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	_, err := env.app.GetOrder(&other, order.ID)
	if err == nil || err.Error() != "Order not found" {
		t.Fatalf("foreign order must surface as not found, got %v", err)
	}
}

func TestListOrdersEmptyIsDomainSignal(t *testing.T) {
	env := newTestEnv(t)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)

	_, err := env.app.ListOrders(&student)
	if err == nil || err.Error() != "No orders found for this user" {
		t.Fatalf("expected no-orders signal, got %v", err)
	}
}

func TestListOrdersRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.app.ListOrders(nil)
	if err == nil || err.Error() != "Please login" {
		t.Fatalf("expected login prompt, got %v", err)
	}
}

// foreignRowStore returns a row owned by someone else from the
// per-student listing, simulating a data-integrity violation.
type foreignRowStore struct {
	store.Store
	foreign domain.Order
}

func (s foreignRowStore) ListOrdersByStudent(string) ([]domain.Order, error) {
	return []domain.Order{s.foreign}, nil
}

func TestListOrdersIntegrityViolationFailsWholeCall(t *testing.T) {
	mr := miniredis.RunT(t)
	verifications, err := store.NewRedisVerificationTokenStore(mr.Addr(), "")
	if err != nil {
		t.Fatalf("verification store: %v", err)
	}
	bad := foreignRowStore{
		Store:   store.NewMemoryStore(),
		foreign: domain.Order{ID: "o1", StudentID: "someone-else"},
	}
	a, err := New(Config{
		TokenSecret:       "test-secret",
		Store:             bad,
		VerificationStore: verifications,
		Mailer:            &mail.MemoryMailer{},
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	actor := domain.User{ID: "u1", Role: domain.RoleStudent}
	_, err = a.ListOrders(&actor)
	if err == nil || err.Error() != "Unauthorized access to orders" {
		t.Fatalf("expected whole-call failure, got %v", err)
	}
}

func TestUpdateOrderAuthz(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@x.com", domain.RoleStudent)
	other := env.addUser(t, "other@x.com", domain.RoleStudent)
	admin := env.addUser(t, "admin@x.com", domain.RoleAdmin)
	order := env.addOrder(t, owner.ID, 4)

	pages := 6
	updated, err := env.app.UpdateOrder(&owner, order.ID, UpdateOrderInput{NumberOfPages: &pages})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.TotalAmount != 120 || updated.DepositAmount != 60 {
		t.Fatalf("amounts not recomputed: %+v", updated)
	}

	_, err = env.app.UpdateOrder(&other, order.ID, UpdateOrderInput{NumberOfPages: &pages})
	if err == nil || err.Error() != "Unauthorized access to order" {
		t.Fatalf("expected denial, got %v", err)
	}

	// Admins may revise amounts independently.
	total := 500.0
	updated, err = env.app.UpdateOrder(&admin, order.ID, UpdateOrderInput{TotalAmount: &total})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.TotalAmount != 500 {
		t.Fatalf("admin amount override ignored: %+v", updated)
	}
}

func TestDeleteOrderOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@x.com", domain.RoleStudent)
	admin := env.addUser(t, "admin@x.com", domain.RoleAdmin)
	order := env.addOrder(t, owner.ID, 4)

	if _, err := env.app.DeleteOrder(&admin, order.ID); err == nil {
		t.Fatal("admin must not delete a student's order")
	}
	ok, err := env.app.DeleteOrder(&owner, order.ID)
	if err != nil || !ok {
		t.Fatalf("owner delete: ok=%v err=%v", ok, err)
	}
	if _, found, _ := env.store.GetOrder(order.ID); found {
		t.Fatal("order still present after delete")
	}
}
