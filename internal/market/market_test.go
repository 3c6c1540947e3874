package market

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEffectFollowsMultiplier(t *testing.T) {
	cases := []struct {
		mult float64
		want Effect
	}{
		{2.5, EffectBoost},
		{1.2, EffectBoost},
		{1, EffectNone},
		{0.5, EffectCrash},
		{0, EffectNone},
		{-3, EffectNone},
	}
	for _, tc := range cases {
		ev := NewEvent("x", tc.mult)
		if ev.Effect != tc.want {
			t.Fatalf("multiplier %v: effect %s, want %s", tc.mult, ev.Effect, tc.want)
		}
		if ev.Duration != 60 {
			t.Fatalf("duration = %d", ev.Duration)
		}
	}
}

func TestBoardStartsNeutral(t *testing.T) {
	b := NewBoard()
	if b.Multiplier() != 1 || b.Current().Effect != EffectNone {
		t.Fatalf("unexpected initial event %+v", b.Current())
	}
}

type stubSource struct {
	ev  Event
	err error
	got float64
}

func (s *stubSource) MarketEvent(_ context.Context, money float64) (Event, error) {
	s.got = money
	return s.ev, s.err
}

func TestRotate(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	src := &stubSource{ev: Event{Message: "Tech boom! Stocks are soaring.", Multiplier: 2, Effect: EffectCrash}}
	b := NewBoard()
	r := NewRotator(b, src, func() float64 { return 1234 })
	r.Now = func() time.Time { return now }
	var notified []Event
	r.OnChange = func(_ context.Context, ev Event) { notified = append(notified, ev) }

	r.Rotate(context.Background())
	cur := b.Current()
	if cur.Multiplier != 2 || cur.Effect != EffectBoost || !cur.StartedAt.Equal(now) {
		t.Fatalf("unexpected event %+v", cur)
	}
	if src.got != 1234 {
		t.Fatalf("source saw money %v", src.got)
	}
	if len(b.History()) != 1 {
		t.Fatalf("history = %d", len(b.History()))
	}

	src.err = errors.New("boom")
	r.Rotate(context.Background())
	if b.Current().Multiplier != 2 {
		t.Fatalf("failed rotation replaced event")
	}
	if len(notified) != 1 || notified[0].Message != "Tech boom! Stocks are soaring." {
		t.Fatalf("notified = %+v", notified)
	}
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	r := NewRotator(NewBoard(), &stubSource{}, nil)
	if err := r.Register("not a schedule"); err == nil {
		t.Fatalf("expected error")
	}
	if err := r.Register(""); err != nil {
		t.Fatalf("default schedule: %v", err)
	}
}

func TestBeforeSetSeesOutgoingEvent(t *testing.T) {
	b := NewBoard()
	var seen []float64
	b.BeforeSet(func() { seen = append(seen, b.Multiplier()) })

	b.Set(Event{Message: "boom", Multiplier: 2}, time.Now())
	b.Set(Event{Message: "bust", Multiplier: 0.5}, time.Now())
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("hooks saw multipliers %v, want [1 2]", seen)
	}
}
