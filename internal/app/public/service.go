package public

import (
	"context"
	"sort"
	"strings"

	"neon-tycoon/internal/format"
	"neon-tycoon/internal/session"
	"neon-tycoon/internal/store"
)

const (
	SortMoney    = "money"
	SortRebirths = "rebirths"
	SortClicks   = "clicks"
	SortWins     = "wins"

	leaderboardDefaultRows = 10
	leaderboardMaxRows     = 100
)

type Service struct {
	repo         store.Repository
	mgr          *session.Manager
	defaultLimit int
}

func NewService(repo store.Repository, mgr *session.Manager) *Service {
	return &Service{repo: repo, mgr: mgr, defaultLimit: leaderboardDefaultRows}
}

// WithDefaultLimit sets the row count used when a caller passes no limit.
func (s *Service) WithDefaultLimit(n int) *Service {
	if n > 0 {
		s.defaultLimit = min(n, leaderboardMaxRows)
	}
	return s
}

// Leaderboard ranks every account, live sessions included.
func (s *Service) Leaderboard(ctx context.Context, sortBy string, limit int) (*LeaderboardResponse, error) {
	sortBy = strings.ToLower(strings.TrimSpace(sortBy))
	if sortBy == "" {
		sortBy = SortMoney
	}
	less, ok := leaderboardOrder(sortBy)
	if !ok {
		return nil, ErrInvalidRequest
	}
	limit = clampLeaderboardLimit(limit, s.defaultLimit)

	accts, err := s.accounts(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accts, func(i, j int) bool { return less(accts[i], accts[j]) })
	if len(accts) > limit {
		accts = accts[:limit]
	}

	items := make([]LeaderboardItem, 0, len(accts))
	for i, a := range accts {
		p := a.Progress
		items = append(items, LeaderboardItem{
			Rank:          i + 1,
			Username:      a.Username,
			CompanyName:   p.CompanyName,
			Money:         p.Money,
			MoneyText:     format.Number(p.Money),
			Rebirths:      p.Rebirths,
			ManualClicks:  p.ManualClicks,
			BlackjackWins: p.BlackjackWins,
		})
	}
	return &LeaderboardResponse{Sort: sortBy, Limit: limit, Items: items}, nil
}

// Profile reports a player's standing. Rank orders by rebirths, then money.
func (s *Service) Profile(ctx context.Context, username string) (*ProfileResponse, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrInvalidRequest
	}
	accts, err := s.accounts(ctx)
	if err != nil {
		return nil, err
	}
	less, _ := leaderboardOrder(SortRebirths)
	sort.SliceStable(accts, func(i, j int) bool { return less(accts[i], accts[j]) })

	rank := 0
	var acct store.Account
	for i, a := range accts {
		if a.Username == username {
			rank, acct = i+1, a
			break
		}
	}
	if rank == 0 {
		return nil, ErrPlayerNotFound
	}

	engine := s.mgr.Engine()
	p := acct.Progress
	stats := engine.Stats(&p, s.mgr.Board().Multiplier())
	owned := 0
	for _, n := range p.Upgrades {
		owned += n
	}
	return &ProfileResponse{
		Username:        acct.Username,
		CompanyName:     p.CompanyName,
		Rank:            rank,
		TotalPlayers:    len(accts),
		TopPercent:      topPercent(rank, len(accts)),
		TimePlayed:      format.Duration(engine.Now().Sub(p.Started())),
		Money:           p.Money,
		MoneyText:       format.Number(p.Money),
		LifetimeText:    format.Number(p.TotalLifetimeMoney),
		IncomeText:      format.Number(stats.IncomePerSecond),
		IncomePerSecond: stats.IncomePerSecond,
		ClickValue:      stats.ClickValue,
		Rebirths:        p.Rebirths,
		Prestige:        p.PrestigeMultiplier,
		UpgradesOwned:   owned,
		ManualClicks:    p.ManualClicks,
		BlackjackWins:   p.BlackjackWins,
	}, nil
}

func (s *Service) Catalog() *CatalogResponse {
	return &CatalogResponse{Items: s.mgr.Engine().Catalog().Upgrades()}
}

func (s *Service) Market() *MarketResponse {
	b := s.mgr.Board()
	return &MarketResponse{Current: b.Current(), History: b.History()}
}

func (s *Service) accounts(ctx context.Context) ([]store.Account, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.mgr.Overlay(stored), nil
}

func leaderboardOrder(sortBy string) (func(a, b store.Account) bool, bool) {
	switch sortBy {
	case SortMoney:
		return func(a, b store.Account) bool {
			if a.Progress.Money != b.Progress.Money {
				return a.Progress.Money > b.Progress.Money
			}
			return a.Progress.Rebirths > b.Progress.Rebirths
		}, true
	case SortRebirths:
		return func(a, b store.Account) bool {
			if a.Progress.Rebirths != b.Progress.Rebirths {
				return a.Progress.Rebirths > b.Progress.Rebirths
			}
			return a.Progress.Money > b.Progress.Money
		}, true
	case SortClicks:
		return func(a, b store.Account) bool {
			return a.Progress.ManualClicks > b.Progress.ManualClicks
		}, true
	case SortWins:
		return func(a, b store.Account) bool {
			return a.Progress.BlackjackWins > b.Progress.BlackjackWins
		}, true
	}
	return nil, false
}

func clampLeaderboardLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > leaderboardMaxRows {
		return leaderboardMaxRows
	}
	return limit
}

// topPercent never reports 0 so the leader reads as "top 1%".
func topPercent(rank, total int) int {
	if total <= 0 {
		return 0
	}
	pct := rank * 100 / total
	if pct < 1 {
		return 1
	}
	return pct
}
