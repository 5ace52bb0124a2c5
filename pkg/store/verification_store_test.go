package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"paperdesk/pkg/domain"
)

func testRegistration() domain.PendingRegistration {
	return domain.PendingRegistration{
		Email:         "a@b.com",
		PaperType:     "Essay",
		NumberOfPages: 5,
		DueDate:       "2024-12-01",
	}
}

func TestVerificationStoreStageAndPeek(t *testing.T) {
	redis := miniredis.RunT(t)
	s, err := NewRedisVerificationTokenStore(redis.Addr(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := s.Stage("token-1", testRegistration(), time.Hour); err != nil {
		t.Fatalf("stage: %v", err)
	}

	reg, ok, err := s.Peek("token-1")
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if !ok {
		t.Fatal("expected staged registration")
	}
	if reg.Email != "a@b.com" || reg.NumberOfPages != 5 {
		t.Fatalf("unexpected payload: %+v", reg)
	}

	// Peek is read-only: a second peek still sees the token.
	if _, ok, err := s.Peek("token-1"); err != nil || !ok {
		t.Fatalf("expected token to survive peek, ok=%v err=%v", ok, err)
	}
}

func TestVerificationStorePeekUnknownToken(t *testing.T) {
	redis := miniredis.RunT(t)
	s, err := NewRedisVerificationTokenStore(redis.Addr(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, ok, err := s.Peek("nope")
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown token")
	}
}

func TestVerificationStoreConsumeIsSingleUse(t *testing.T) {
	redis := miniredis.RunT(t)
	s, err := NewRedisVerificationTokenStore(redis.Addr(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Stage("token-2", testRegistration(), time.Hour); err != nil {
		t.Fatalf("stage: %v", err)
	}

	reg, ok, err := s.Consume("token-2")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !ok || reg.Email != "a@b.com" {
		t.Fatalf("expected payload on first consume, ok=%v reg=%+v", ok, reg)
	}

	if _, ok, err := s.Consume("token-2"); err != nil || ok {
		t.Fatalf("expected second consume to miss, ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.Peek("token-2"); err != nil || ok {
		t.Fatalf("expected token gone after consume, ok=%v err=%v", ok, err)
	}
}

func TestVerificationStoreTokenExpires(t *testing.T) {
	redis := miniredis.RunT(t)
	s, err := NewRedisVerificationTokenStore(redis.Addr(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Stage("token-3", testRegistration(), time.Minute); err != nil {
		t.Fatalf("stage: %v", err)
	}
	redis.FastForward(2 * time.Minute)
	if _, ok, err := s.Peek("token-3"); err != nil || ok {
		t.Fatalf("expected expired token to miss, ok=%v err=%v", ok, err)
	}
}
