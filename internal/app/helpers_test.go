package app

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
	"paperdesk/pkg/mail"
	"paperdesk/pkg/payments"
	"paperdesk/pkg/storage"
	"paperdesk/pkg/store"
)

type testEnv struct {
	app     *App
	store   *store.MemoryStore
	mailer  *mail.MemoryMailer
	gw      *payments.FakeGateway
	objects *storage.MemoryObjectStore
	redis   *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	verifications, err := store.NewRedisVerificationTokenStore(mr.Addr(), "")
	if err != nil {
		t.Fatalf("verification store: %v", err)
	}
	memStore := store.NewMemoryStore()
	mailer := &mail.MemoryMailer{}
	gw := &payments.FakeGateway{SessionURL: "https://pay.example/session"}
	objects := storage.NewMemoryObjectStore()
	a, err := New(Config{
		TokenSecret:       "test-secret",
		FrontendURL:       "https://app.example",
		BaseURL:           "https://api.example",
		Store:             memStore,
		VerificationStore: verifications,
		Mailer:            mailer,
		Gateway:           gw,
		Objects:           objects,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return &testEnv{app: a, store: memStore, mailer: mailer, gw: gw, objects: objects, redis: mr}
}

func (e *testEnv) addUser(t *testing.T, email string, role domain.UserRole) domain.User {
	t.Helper()
	now := time.Now().UTC()
	u := domain.User{ID: util.NewID(), Email: email, Role: role, CreatedAt: now, UpdatedAt: now}
	if err := e.store.SaveUser(u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return u
}

func (e *testEnv) addOrder(t *testing.T, studentID string, pages int) domain.Order {
	t.Helper()
	total, deposit := orderAmounts(pages)
	now := time.Now().UTC()
	o := domain.Order{
		ID:            util.NewID(),
		StudentID:     studentID,
		PaperType:     "Essay",
		NumberOfPages: pages,
		DueDate:       "2026-12-01",
		TotalAmount:   total,
		DepositAmount: deposit,
		Status:        domain.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.SaveOrder(o); err != nil {
		t.Fatalf("save order: %v", err)
	}
	return o
}
