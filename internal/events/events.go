// Package events fans gameplay milestones out to external consumers.
// Delivery is best-effort: failures are logged and gameplay continues.
package events

import (
	"context"
	"sync"
	"time"
)

type Type string

const (
	UpgradePurchased Type = "upgrade_purchased"
	Rebirth          Type = "rebirth"
	BlackjackSettled Type = "blackjack_settled"
	AdminAction      Type = "admin_action"
	MarketShift      Type = "market_shift"
)

type Event struct {
	Type     Type           `json:"type"`
	Username string         `json:"username,omitempty"`
	At       time.Time      `json:"at"`
	Data     map[string]any `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
