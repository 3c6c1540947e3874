package public

import (
	"neon-tycoon/internal/economy"
	"neon-tycoon/internal/market"
)

type LeaderboardResponse struct {
	Sort  string            `json:"sort"`
	Limit int               `json:"limit"`
	Items []LeaderboardItem `json:"items"`
}

type LeaderboardItem struct {
	Rank          int     `json:"rank"`
	Username      string  `json:"username"`
	CompanyName   string  `json:"company_name"`
	Money         float64 `json:"money"`
	MoneyText     string  `json:"money_text"`
	Rebirths      int     `json:"rebirths"`
	ManualClicks  int64   `json:"manual_clicks"`
	BlackjackWins int64   `json:"blackjack_wins"`
}

type ProfileResponse struct {
	Username        string  `json:"username"`
	CompanyName     string  `json:"company_name"`
	Rank            int     `json:"rank"`
	TotalPlayers    int     `json:"total_players"`
	TopPercent      int     `json:"top_percent"`
	TimePlayed      string  `json:"time_played"`
	Money           float64 `json:"money"`
	MoneyText       string  `json:"money_text"`
	LifetimeText    string  `json:"lifetime_text"`
	IncomeText      string  `json:"income_text"`
	IncomePerSecond float64 `json:"income_per_second"`
	ClickValue      float64 `json:"click_value"`
	Rebirths        int     `json:"rebirths"`
	Prestige        float64 `json:"prestige_multiplier"`
	UpgradesOwned   int     `json:"upgrades_owned"`
	ManualClicks    int64   `json:"manual_clicks"`
	BlackjackWins   int64   `json:"blackjack_wins"`
}

type CatalogResponse struct {
	Items []economy.Upgrade `json:"items"`
}

type MarketResponse struct {
	Current market.Event   `json:"current"`
	History []market.Event `json:"history"`
}
