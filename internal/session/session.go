package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"neon-tycoon/internal/economy"
	"neon-tycoon/internal/events"
	"neon-tycoon/internal/game"
	"neon-tycoon/internal/market"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/store"
)

// Snapshot is a consistent read of one player's live state.
type Snapshot struct {
	Username  string                     `json:"username"`
	IsAdmin   bool                       `json:"is_admin"`
	Progress  progression.Progress       `json:"progress"`
	Stats     economy.Stats              `json:"stats"`
	Market    market.Event               `json:"market"`
	Rebirth   progression.RebirthPreview `json:"rebirth"`
	Blackjack game.Snapshot              `json:"blackjack"`
	At        time.Time                  `json:"at"`
}

// Session owns one account's progress. Every mutation, including passive
// accrual, runs under its lock so updates never interleave.
type Session struct {
	engine    *progression.Engine
	board     *market.Board
	publisher events.Publisher
	throttle  time.Duration

	mu       sync.Mutex
	account  store.Account
	progress progression.Progress
	table    *game.Table
	lastTick time.Time
	lastSeen time.Time
	token    string
	// rev counts lock holders that may have changed progress.
	rev uint64
}

func newSession(acct store.Account, m *Manager, now time.Time) *Session {
	p := acct.Progress.Clone()
	p.Normalize(now)
	acct.Progress = progression.Progress{}
	return &Session{
		engine:    m.opts.Engine,
		board:     m.opts.Board,
		publisher: m.opts.Publisher,
		throttle:  m.opts.TickThrottle,
		account:   acct,
		progress:  p,
		table:     m.opts.NewTable(),
		lastTick:  now,
		lastSeen:  now,
	}
}

func (s *Session) Username() string {
	return s.account.Username
}

func (s *Session) IsAdmin() bool {
	return s.account.IsAdmin
}

// Tick accrues passive income for the time since the last committed tick.
// Deltas shorter than the throttle are left to accumulate.
func (s *Session) Tick(now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked(now)
}

func (s *Session) tickLocked(now time.Time) float64 {
	elapsed := now.Sub(s.lastTick)
	if elapsed < 0 {
		s.lastTick = now
		return 0
	}
	if elapsed < s.throttle {
		return 0
	}
	earned, err := s.engine.AccrueTime(&s.progress, s.board.Multiplier(), elapsed)
	if err != nil {
		return 0
	}
	s.lastTick = now
	return earned
}

// flush accrues everything up to now, throttle or not. It runs before the
// market multiplier changes so earlier time keeps its earlier price.
func (s *Session) flush(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := now.Sub(s.lastTick)
	if elapsed <= 0 {
		return
	}
	if _, err := s.engine.AccrueTime(&s.progress, s.board.Multiplier(), elapsed); err == nil {
		s.lastTick = now
		s.rev++
	}
}

// begin locks the session, records activity and brings income up to date.
func (s *Session) begin() time.Time {
	s.mu.Lock()
	s.rev++
	now := s.engine.Now()
	s.lastSeen = now
	s.tickLocked(now)
	return now
}

func (s *Session) snapshotLocked(now time.Time) Snapshot {
	ev := s.board.Current()
	return Snapshot{
		Username:  s.account.Username,
		IsAdmin:   s.account.IsAdmin,
		Progress:  s.progress.Clone(),
		Stats:     s.engine.Stats(&s.progress, ev.Multiplier),
		Market:    ev,
		Rebirth:   s.engine.NextRebirth(&s.progress),
		Blackjack: s.table.Snapshot(),
		At:        now,
	}
}

func (s *Session) Snapshot() Snapshot {
	now := s.begin()
	defer s.mu.Unlock()
	return s.snapshotLocked(now)
}

func (s *Session) Click() (float64, Snapshot) {
	now := s.begin()
	earned := s.engine.ApplyManualClick(&s.progress, s.board.Multiplier())
	snap := s.snapshotLocked(now)
	s.mu.Unlock()
	metricClicks.Add(1)
	return earned, snap
}

func (s *Session) BuyUpgrade(ctx context.Context, id string) (bool, Snapshot) {
	now := s.begin()
	cost, _ := s.engine.UpgradeCost(&s.progress, id)
	ok := s.engine.PurchaseUpgrade(&s.progress, id)
	snap := s.snapshotLocked(now)
	s.mu.Unlock()
	if ok {
		metricUpgrades.Add(1)
		s.publish(ctx, events.UpgradePurchased, now, map[string]any{
			"upgrade_id": id,
			"owned":      snap.Progress.Owned(id),
			"cost":       cost,
		})
	}
	return ok, snap
}

func (s *Session) Rebirth(ctx context.Context) (bool, Snapshot) {
	now := s.begin()
	ok := s.engine.Rebirth(&s.progress)
	snap := s.snapshotLocked(now)
	s.mu.Unlock()
	if ok {
		metricRebirths.Add(1)
		log.Info().Str("username", snap.Username).Int("rebirths", snap.Progress.Rebirths).Msg("rebirth")
		s.publish(ctx, events.Rebirth, now, map[string]any{
			"rebirths":            snap.Progress.Rebirths,
			"prestige_multiplier": snap.Progress.PrestigeMultiplier,
		})
	}
	return ok, snap
}

func (s *Session) Rename(name string) (bool, Snapshot) {
	now := s.begin()
	ok := s.engine.RenameCompany(&s.progress, name)
	snap := s.snapshotLocked(now)
	s.mu.Unlock()
	return ok, snap
}

func (s *Session) BlackjackDeal(ctx context.Context, bet float64) (game.Snapshot, error) {
	return s.blackjack(ctx, func(w game.Wallet) (game.Snapshot, error) { return s.table.Deal(w, bet) })
}

func (s *Session) BlackjackHit(ctx context.Context) (game.Snapshot, error) {
	return s.blackjack(ctx, s.table.Hit)
}

func (s *Session) BlackjackStand(ctx context.Context) (game.Snapshot, error) {
	return s.blackjack(ctx, s.table.Stand)
}

func (s *Session) blackjack(ctx context.Context, act func(game.Wallet) (game.Snapshot, error)) (game.Snapshot, error) {
	now := s.begin()
	snap, err := act(&s.progress)
	settlement, settled := s.table.LastSettlement()
	s.mu.Unlock()
	// A successful action that leaves the table settled is the one that
	// settled it: deal starts a new round and hit/stand need an open one.
	if err != nil || !settled {
		return snap, err
	}
	metricBlackjackHands.Add(1)
	s.publish(ctx, events.BlackjackSettled, now, map[string]any{
		"round_id": settlement.RoundID,
		"result":   string(settlement.Result),
		"bet":      settlement.Bet,
		"payout":   settlement.Payout,
	})
	return snap, nil
}

// Apply runs fn against the live progress under the session lock. It is
// the entry point for operator adjustments and background renames.
func (s *Session) Apply(fn func(e *progression.Engine, p *progression.Progress) bool) (bool, Snapshot) {
	now := s.begin()
	ok := fn(s.engine, &s.progress)
	snap := s.snapshotLocked(now)
	s.mu.Unlock()
	return ok, snap
}

// Account returns the persistable account with income accrued to now.
func (s *Session) Account() store.Account {
	acct, _ := s.capture()
	return acct
}

// capture is Account plus the revision it was read at.
func (s *Session) capture() (store.Account, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked(s.engine.Now())
	acct := s.account
	acct.Progress = s.progress.Clone()
	return acct, s.rev
}

func (s *Session) Money() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Money
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) publish(ctx context.Context, t events.Type, at time.Time, data map[string]any) {
	s.publisher.Publish(ctx, events.Event{Type: t, Username: s.account.Username, At: at, Data: data})
}
