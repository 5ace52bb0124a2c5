package payments

import (
	"context"
	"sync"
)

// FakeGateway is an in-process Gateway for tests and local development.
type FakeGateway struct {
	mu sync.Mutex

	SessionURL string
	SessionErr error
	Event      CheckoutEvent
	EventErr   error

	created []SessionParams
}

func (g *FakeGateway) CreateCheckoutSession(_ context.Context, p SessionParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SessionErr != nil {
		return "", g.SessionErr
	}
	g.created = append(g.created, p)
	if g.SessionURL != "" {
		return g.SessionURL, nil
	}
	return "https://checkout.example.com/session/" + p.OrderID, nil
}

func (g *FakeGateway) ParseWebhookEvent(payload []byte, _ string) (CheckoutEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.EventErr != nil {
		return CheckoutEvent{}, g.EventErr
	}
	ev := g.Event
	if ev.Raw == nil {
		ev.Raw = payload
	}
	return ev, nil
}

// CreatedSessions returns every session requested so far.
func (g *FakeGateway) CreatedSessions() []SessionParams {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SessionParams(nil), g.created...)
}
