package progression

import "neon-tycoon/internal/economy"

const (
	AdminGrantAmount = 1_000_000_000
	AdminGrantUnits  = 5
)

// Operator adjustments. They bypass purchase rules and report whether
// anything changed.

func (e *Engine) ResetMoney(p *Progress) bool {
	if p.Money == 0 {
		return false
	}
	p.Money = 0
	return true
}

func (e *Engine) ResetUpgrades(p *Progress) bool {
	if len(p.Upgrades) == 0 {
		return false
	}
	p.Upgrades = map[string]int{}
	return true
}

// RevokeRebirth undoes one prestige step, never dropping below the base
// multiplier.
func (e *Engine) RevokeRebirth(p *Progress) bool {
	if p.Rebirths == 0 && p.PrestigeMultiplier <= 1 {
		return false
	}
	p.Rebirths = max(0, p.Rebirths-1)
	p.PrestigeMultiplier = max(1, p.PrestigeMultiplier-economy.PrestigeStep)
	return true
}

func (e *Engine) GrantMoney(p *Progress, amount float64) bool {
	if amount <= 0 {
		return false
	}
	p.Money += amount
	return true
}

// GrantTech adds units of every catalog upgrade, ignoring tier gates.
func (e *Engine) GrantTech(p *Progress, units int) bool {
	if units <= 0 {
		return false
	}
	if p.Upgrades == nil {
		p.Upgrades = map[string]int{}
	}
	for _, u := range e.catalog.Upgrades() {
		p.Upgrades[u.ID] += units
	}
	return true
}

func (e *Engine) AdjustUpgrade(p *Progress, id string, delta int) bool {
	if _, ok := e.catalog.Lookup(id); !ok || delta == 0 {
		return false
	}
	n := max(0, p.Owned(id)+delta)
	if n == p.Owned(id) {
		return false
	}
	if p.Upgrades == nil {
		p.Upgrades = map[string]int{}
	}
	if n == 0 {
		delete(p.Upgrades, id)
	} else {
		p.Upgrades[id] = n
	}
	return true
}
