package progression

import (
	"errors"
	"strings"
	"time"

	"neon-tycoon/internal/economy"
)

var ErrNegativeElapsed = errors.New("negative_elapsed")

type Options struct {
	// KeepLifetimeOnRebirth preserves TotalLifetimeMoney across a rebirth.
	// By default it resets together with money.
	KeepLifetimeOnRebirth bool
	Now                   func() time.Time
}

// Engine applies game rules to a Progress. It holds no per-player state;
// callers serialize access to each Progress.
type Engine struct {
	catalog *economy.Catalog
	opts    Options
}

func NewEngine(catalog *economy.Catalog, opts Options) *Engine {
	if catalog == nil {
		catalog = economy.DefaultCatalog()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{catalog: catalog, opts: opts}
}

func (e *Engine) Catalog() *economy.Catalog {
	return e.catalog
}

func (e *Engine) Now() time.Time {
	return e.opts.Now()
}

func (e *Engine) Stats(p *Progress, market float64) economy.Stats {
	return e.catalog.Compute(p.Upgrades, p.PrestigeMultiplier, market)
}

// ApplyManualClick credits one click and returns the amount earned.
func (e *Engine) ApplyManualClick(p *Progress, market float64) float64 {
	v := e.Stats(p, market).ClickValue
	p.Money += v
	p.TotalLifetimeMoney += v
	p.ManualClicks++
	return v
}

// AccrueTime credits passive income for elapsed wall-clock time.
func (e *Engine) AccrueTime(p *Progress, market float64, elapsed time.Duration) (float64, error) {
	if elapsed < 0 {
		return 0, ErrNegativeElapsed
	}
	earned := e.Stats(p, market).IncomePerSecond * elapsed.Seconds()
	p.Money += earned
	p.TotalLifetimeMoney += earned
	return earned, nil
}

// UpgradeCost prices the next unit of id; ok is false for unknown ids.
func (e *Engine) UpgradeCost(p *Progress, id string) (float64, bool) {
	u, ok := e.catalog.Lookup(id)
	if !ok {
		return 0, false
	}
	return economy.Cost(u, p.Owned(id)), true
}

func (e *Engine) CanPurchase(p *Progress, id string) bool {
	u, ok := e.catalog.Lookup(id)
	if !ok || !u.Unlocked(p.Rebirths) {
		return false
	}
	return p.Money >= economy.Cost(u, p.Owned(id))
}

// PurchaseUpgrade buys one unit. Unknown ids, locked tiers and short
// balances leave p untouched and return false.
func (e *Engine) PurchaseUpgrade(p *Progress, id string) bool {
	if !e.CanPurchase(p, id) {
		return false
	}
	cost, _ := e.UpgradeCost(p, id)
	p.Money -= cost
	if p.Upgrades == nil {
		p.Upgrades = map[string]int{}
	}
	p.Upgrades[id]++
	return true
}

type RebirthPreview struct {
	Cost           float64 `json:"cost"`
	Affordable     bool    `json:"affordable"`
	NextMultiplier float64 `json:"next_multiplier"`
	PercentGain    float64 `json:"percent_gain"`
}

func (e *Engine) NextRebirth(p *Progress) RebirthPreview {
	cost := economy.RebirthCost(p.Rebirths)
	next := p.PrestigeMultiplier + economy.PrestigeStep
	gain := 0.0
	if p.PrestigeMultiplier > 0 {
		gain = (next - p.PrestigeMultiplier) / p.PrestigeMultiplier * 100
	}
	return RebirthPreview{
		Cost:           cost,
		Affordable:     p.Money >= cost,
		NextMultiplier: next,
		PercentGain:    gain,
	}
}

// Rebirth trades the current run for a permanent multiplier step. Company
// name, click count and casino wins carry over.
func (e *Engine) Rebirth(p *Progress) bool {
	if p.Money < economy.RebirthCost(p.Rebirths) {
		return false
	}
	next := New(e.opts.Now())
	next.CompanyName = p.CompanyName
	next.Rebirths = p.Rebirths + 1
	next.PrestigeMultiplier = p.PrestigeMultiplier + economy.PrestigeStep
	next.ManualClicks = p.ManualClicks
	next.BlackjackWins = p.BlackjackWins
	if e.opts.KeepLifetimeOnRebirth {
		next.TotalLifetimeMoney = p.TotalLifetimeMoney
	}
	*p = next
	return true
}

func (e *Engine) RenameCompany(p *Progress, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == p.CompanyName {
		return false
	}
	p.CompanyName = name
	return true
}
