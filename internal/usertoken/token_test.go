package usertoken

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndVerifySubject(t *testing.T) {
	m, err := NewManager(Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	subject, err := m.VerifySubject(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("unexpected subject %q", subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, _ := NewManager(Config{Secret: "secret-a"})
	b, _ := NewManager(Config{Secret: "secret-b"})
	token, err := a.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := b.VerifySubject(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, _ := NewManager(Config{Secret: "test-secret", TTL: time.Nanosecond, Leeway: time.Nanosecond})
	token, err := m.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := m.VerifySubject(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry rejection, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m, _ := NewManager(Config{Secret: "test-secret"})
	if _, err := m.VerifySubject("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}
