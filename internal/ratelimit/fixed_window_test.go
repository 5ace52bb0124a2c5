package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterEnforcesQuota(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "paperdesk:test:register", 2, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !limiter.Allow("203.0.113.9") {
		t.Fatal("first attempt should pass")
	}
	if !limiter.Allow("203.0.113.9") {
		t.Fatal("second attempt should pass")
	}
	if limiter.Allow("203.0.113.9") {
		t.Fatal("third attempt should be throttled")
	}
}

func TestFixedWindowLimiterKeysAreIndependent(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "paperdesk:test:login", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !limiter.Allow("203.0.113.9") {
		t.Fatal("first key should pass")
	}
	if !limiter.Allow("198.51.100.4") {
		t.Fatal("a different key should have its own quota")
	}
	if limiter.Allow("203.0.113.9") {
		t.Fatal("exhausted key should stay throttled")
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "paperdesk:test:login", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	redis.Close()
	if limiter.Allow("203.0.113.9") {
		t.Fatal("limiter must deny when redis is unreachable")
	}
}

func TestFixedWindowLimiterRejectsBadConfig(t *testing.T) {
	if l, err := NewRedisFixedWindowLimiter("", "", "paperdesk:test", 1, time.Minute); err == nil || l != nil {
		t.Fatal("expected error for missing redis addr")
	}
	if l, err := NewRedisFixedWindowLimiter("localhost:6379", "", "paperdesk:test", 0, time.Minute); err == nil || l != nil {
		t.Fatal("expected error for non-positive limit")
	}
}
