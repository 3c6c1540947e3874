package viewmodel

import (
	"testing"
	"time"

	"neon-tycoon/internal/market"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/session"
)

func TestBuildPlayerState(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	engine := progression.NewEngine(nil, progression.Options{Now: func() time.Time { return now }})

	p := progression.New(now.Add(-2*time.Hour - 5*time.Minute))
	p.Money = 20
	p.Upgrades = map[string]int{"intern": 1}
	ev := market.NewEvent("Crypto bubble!", 2)
	snap := session.Snapshot{
		Username: "alice",
		Progress: p,
		Stats:    engine.Stats(&p, ev.Multiplier),
		Market:   ev,
		Rebirth:  engine.NextRebirth(&p),
		At:       now,
	}

	view := BuildPlayerState(engine, snap)
	if view.Username != "alice" || view.MoneyText != "20" || view.TimePlayed != "2h 5m" {
		t.Fatalf("unexpected header: %+v", view)
	}
	if view.IncomePerSecond != 2 {
		t.Fatalf("income = %v, want 2", view.IncomePerSecond)
	}
	if view.Rebirth.CostText != "1M" {
		t.Fatalf("rebirth cost text = %q", view.Rebirth.CostText)
	}
	if len(view.Upgrades) != engine.Catalog().Len() {
		t.Fatalf("upgrades = %d, want %d", len(view.Upgrades), engine.Catalog().Len())
	}

	intern := view.Upgrades[0]
	if intern.ID != "intern" || intern.Owned != 1 || intern.Cost != 17 || !intern.Affordable || !intern.Unlocked {
		t.Fatalf("unexpected intern view: %+v", intern)
	}
	server := view.Upgrades[1]
	if server.Affordable || server.Owned != 0 {
		t.Fatalf("unexpected server view: %+v", server)
	}
	for _, u := range view.Upgrades {
		if u.RequiredRebirths > 0 && (u.Unlocked || u.Affordable) {
			t.Fatalf("gated upgrade %s reported available", u.ID)
		}
	}
}
