package progression

import (
	"strings"
	"time"

	"neon-tycoon/internal/game"
)

const DefaultCompanyName = "Startup Inc."

// Progress is one account's saved game. JSON names follow the browser
// save format so exported saves import unchanged.
type Progress struct {
	Money              float64        `json:"money"`
	TotalLifetimeMoney float64        `json:"totalLifetimeMoney"`
	Rebirths           int            `json:"rebirths"`
	PrestigeMultiplier float64        `json:"prestigeMultiplier"`
	Upgrades           map[string]int `json:"upgrades"`
	StartTime          int64          `json:"startTime"`
	CompanyName        string         `json:"companyName"`
	ManualClicks       int64          `json:"manualClicks"`
	BlackjackWins      int64          `json:"blackjackWins"`
}

func New(now time.Time) Progress {
	return Progress{
		PrestigeMultiplier: 1,
		Upgrades:           map[string]int{},
		StartTime:          now.UnixMilli(),
		CompanyName:        DefaultCompanyName,
	}
}

// Normalize fills fields a partial or older save may lack.
func (p *Progress) Normalize(now time.Time) {
	if p.PrestigeMultiplier < 1 {
		p.PrestigeMultiplier = 1
	}
	if p.Upgrades == nil {
		p.Upgrades = map[string]int{}
	}
	for id, n := range p.Upgrades {
		if n <= 0 {
			delete(p.Upgrades, id)
		}
	}
	if p.StartTime <= 0 {
		p.StartTime = now.UnixMilli()
	}
	if strings.TrimSpace(p.CompanyName) == "" {
		p.CompanyName = DefaultCompanyName
	}
	if p.Money < 0 {
		p.Money = 0
	}
	if p.TotalLifetimeMoney < 0 {
		p.TotalLifetimeMoney = 0
	}
	if p.Rebirths < 0 {
		p.Rebirths = 0
	}
	if p.ManualClicks < 0 {
		p.ManualClicks = 0
	}
	if p.BlackjackWins < 0 {
		p.BlackjackWins = 0
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (p Progress) Clone() Progress {
	out := p
	out.Upgrades = make(map[string]int, len(p.Upgrades))
	for id, n := range p.Upgrades {
		out.Upgrades[id] = n
	}
	return out
}

func (p Progress) Owned(id string) int {
	return p.Upgrades[id]
}

func (p Progress) Started() time.Time {
	return time.UnixMilli(p.StartTime)
}

// Balance, Debit and CreditSettlement let a blackjack table escrow and pay
// out against this progress without touching any other field.
func (p *Progress) Balance() float64 {
	return p.Money
}

func (p *Progress) Debit(amount float64) {
	p.Money -= amount
}

func (p *Progress) CreditSettlement(s game.Settlement) {
	p.Money += s.Payout
	p.TotalLifetimeMoney += s.Profit()
	if s.Won() {
		p.BlackjackWins++
	}
}
