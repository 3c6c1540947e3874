package viewmodel

import (
	"neon-tycoon/internal/format"
	"neon-tycoon/internal/game"
	"neon-tycoon/internal/market"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/session"
)

type UpgradeView struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Icon             string  `json:"icon"`
	Owned            int     `json:"owned"`
	Cost             float64 `json:"cost"`
	CostText         string  `json:"cost_text"`
	IncomeEach       float64 `json:"income_each"`
	RequiredRebirths int     `json:"required_rebirths"`
	Unlocked         bool    `json:"unlocked"`
	Affordable       bool    `json:"affordable"`
}

type RebirthView struct {
	progression.RebirthPreview
	CostText string `json:"cost_text"`
}

type PlayerStateView struct {
	Username           string        `json:"username"`
	IsAdmin            bool          `json:"is_admin"`
	CompanyName        string        `json:"company_name"`
	Money              float64       `json:"money"`
	MoneyText          string        `json:"money_text"`
	LifetimeMoney      float64       `json:"lifetime_money"`
	LifetimeText       string        `json:"lifetime_text"`
	IncomePerSecond    float64       `json:"income_per_second"`
	IncomeText         string        `json:"income_text"`
	ClickValue         float64       `json:"click_value"`
	ClickText          string        `json:"click_text"`
	Rebirths           int           `json:"rebirths"`
	PrestigeMultiplier float64       `json:"prestige_multiplier"`
	ManualClicks       int64         `json:"manual_clicks"`
	BlackjackWins      int64         `json:"blackjack_wins"`
	TimePlayed         string        `json:"time_played"`
	Market             market.Event  `json:"market"`
	Rebirth            RebirthView   `json:"rebirth"`
	Upgrades           []UpgradeView `json:"upgrades"`
	Blackjack          game.Snapshot `json:"blackjack"`
}

// BuildPlayerState renders a session snapshot for clients. Costs and
// affordability are evaluated against the snapshot, not live state.
func BuildPlayerState(e *progression.Engine, snap session.Snapshot) PlayerStateView {
	p := snap.Progress
	return PlayerStateView{
		Username:           snap.Username,
		IsAdmin:            snap.IsAdmin,
		CompanyName:        p.CompanyName,
		Money:              p.Money,
		MoneyText:          format.Number(p.Money),
		LifetimeMoney:      p.TotalLifetimeMoney,
		LifetimeText:       format.Number(p.TotalLifetimeMoney),
		IncomePerSecond:    snap.Stats.IncomePerSecond,
		IncomeText:         format.Number(snap.Stats.IncomePerSecond),
		ClickValue:         snap.Stats.ClickValue,
		ClickText:          format.Number(snap.Stats.ClickValue),
		Rebirths:           p.Rebirths,
		PrestigeMultiplier: p.PrestigeMultiplier,
		ManualClicks:       p.ManualClicks,
		BlackjackWins:      p.BlackjackWins,
		TimePlayed:         format.Duration(snap.At.Sub(p.Started())),
		Market:             snap.Market,
		Rebirth: RebirthView{
			RebirthPreview: snap.Rebirth,
			CostText:       format.Number(snap.Rebirth.Cost),
		},
		Upgrades:  BuildUpgrades(e, p),
		Blackjack: snap.Blackjack,
	}
}

// BuildUpgrades lists the catalog in tier order with p's counts and prices.
func BuildUpgrades(e *progression.Engine, p progression.Progress) []UpgradeView {
	catalog := e.Catalog().Upgrades()
	out := make([]UpgradeView, 0, len(catalog))
	for _, u := range catalog {
		cost, _ := e.UpgradeCost(&p, u.ID)
		out = append(out, UpgradeView{
			ID:               u.ID,
			Name:             u.Name,
			Description:      u.Description,
			Icon:             u.Icon,
			Owned:            p.Owned(u.ID),
			Cost:             cost,
			CostText:         format.Number(cost),
			IncomeEach:       u.BaseIncome,
			RequiredRebirths: u.RequiredRebirths,
			Unlocked:         u.Unlocked(p.Rebirths),
			Affordable:       e.CanPurchase(&p, u.ID),
		})
	}
	return out
}
