package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"neon-tycoon/internal/economy"
	"neon-tycoon/internal/events"
	"neon-tycoon/internal/game"
	"neon-tycoon/internal/market"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubNamer struct{ name string }

func (n stubNamer) CompanyName(context.Context) (string, error) { return n.name, nil }

type failingRepo struct{ store.Repository }

func (failingRepo) SaveAll(context.Context, []store.Account) error { return errors.New("disk full") }

// hookRepo runs onSave after each successful SaveAll.
type hookRepo struct {
	store.Repository
	onSave func()
}

func (r hookRepo) SaveAll(ctx context.Context, accts []store.Account) error {
	if err := r.Repository.SaveAll(ctx, accts); err != nil {
		return err
	}
	if r.onSave != nil {
		r.onSave()
	}
	return nil
}

type fixture struct {
	clock *fakeClock
	repo  *store.Memory
	rec   *events.Recorder
	mgr   *Manager
}

func newFixture(t *testing.T, tweak func(*Options)) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	f := &fixture{clock: clock, repo: store.NewMemory(), rec: &events.Recorder{}}
	opts := Options{
		Engine:    progression.NewEngine(economy.DefaultCatalog(), progression.Options{Now: clock.Now}),
		Board:     market.NewBoard(),
		Repo:      f.repo,
		Publisher: f.rec,
	}
	if tweak != nil {
		tweak(&opts)
	}
	f.mgr = NewManager(opts)
	return f
}

func (f *fixture) account(t *testing.T, username string, mutate func(*progression.Progress)) store.Account {
	t.Helper()
	p := progression.New(f.clock.Now())
	p.CompanyName = "Blue Sun"
	if mutate != nil {
		mutate(&p)
	}
	acct := store.Account{ID: store.NewID(), Username: username, PasswordHash: store.HashPassword("pw"), Progress: p}
	if err := f.repo.Create(context.Background(), acct); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acct
}

func TestTickThrottle(t *testing.T) {
	f := newFixture(t, nil)
	s, _ := f.mgr.Open(f.account(t, "alice", func(p *progression.Progress) { p.Upgrades["intern"] = 1 }))

	if got := s.Tick(f.clock.Now().Add(50 * time.Millisecond)); got != 0 {
		t.Fatalf("tick inside throttle earned %v", got)
	}
	got := s.Tick(f.clock.Now().Add(150 * time.Millisecond))
	if math.Abs(got-0.15) > 1e-12 {
		t.Fatalf("tick earned %v, want 0.15", got)
	}
	if s.Tick(f.clock.Now().Add(100*time.Millisecond)) != 0 {
		t.Fatalf("clock going backwards must not accrue")
	}
}

func TestAccrualMatchesWallClock(t *testing.T) {
	f := newFixture(t, nil)
	s, _ := f.mgr.Open(f.account(t, "alice", func(p *progression.Progress) { p.Upgrades["server"] = 2 }))

	for i := 0; i < 37; i++ {
		f.clock.Advance(130 * time.Millisecond)
		s.Snapshot()
	}
	f.clock.Advance(time.Second)
	snap := s.Snapshot()
	want := 10 * (37*0.13 + 1)
	if math.Abs(snap.Progress.Money-want) > 1e-6 {
		t.Fatalf("money = %v, want %v", snap.Progress.Money, want)
	}
}

func TestAutosaveReadsLiveState(t *testing.T) {
	f := newFixture(t, nil)
	s, _ := f.mgr.Open(f.account(t, "alice", nil))
	ctx := context.Background()

	s.Click()
	if err := f.mgr.SaveAll(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Click()
	s.Click()
	if err := f.mgr.SaveAll(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := f.repo.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Progress.ManualClicks != 3 || got.Progress.Money != 3 {
		t.Fatalf("saved progress is stale: %+v", got.Progress)
	}
}

func TestOpenReusesLiveSessionAndRotatesToken(t *testing.T) {
	f := newFixture(t, nil)
	acct := f.account(t, "alice", nil)
	s1, tok1 := f.mgr.Open(acct)
	s1.Click()

	s2, tok2 := f.mgr.Open(acct)
	if s1 != s2 || tok1 == tok2 {
		t.Fatalf("expected same session with a new token")
	}
	if _, err := f.mgr.Lookup(tok1); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("old token still valid: %v", err)
	}
	if snap := s2.Snapshot(); snap.Progress.ManualClicks != 1 {
		t.Fatalf("live state lost on reopen: %+v", snap.Progress)
	}
}

func TestCloseSavesAndDetaches(t *testing.T) {
	f := newFixture(t, nil)
	s, tok := f.mgr.Open(f.account(t, "alice", nil))
	s.Click()

	if err := f.mgr.Close(context.Background(), tok); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := f.mgr.Get("alice"); ok {
		t.Fatalf("session still attached")
	}
	if _, err := f.mgr.Lookup(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token still valid: %v", err)
	}
	got, _ := f.repo.Load(context.Background(), "alice")
	if got.Progress.ManualClicks != 1 {
		t.Fatalf("close did not save: %+v", got.Progress)
	}
}

func TestSaveFailureKeepsSessions(t *testing.T) {
	f := newFixture(t, nil)
	f.mgr.opts.Repo = failingRepo{f.repo}
	_, tok := f.mgr.Open(f.account(t, "alice", nil))

	if err := f.mgr.SaveAll(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
	if err := f.mgr.Close(context.Background(), tok); err == nil {
		t.Fatalf("expected close to report save error")
	}
	if _, ok := f.mgr.Get("alice"); !ok {
		t.Fatalf("session dropped after failed save")
	}
	f.clock.Advance(time.Hour)
	if n := f.mgr.expireIdle(context.Background(), f.clock.Now()); n != 0 {
		t.Fatalf("expired %d sessions despite failing saves", n)
	}
}

func TestExpireIdle(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.IdleTimeout = 10 * time.Minute })
	s, _ := f.mgr.Open(f.account(t, "alice", nil))
	f.mgr.Open(f.account(t, "bob", nil))
	s.Click()

	f.clock.Advance(5 * time.Minute)
	bob, _ := f.mgr.Get("bob")
	bob.Snapshot()
	f.clock.Advance(6 * time.Minute)

	if n := f.mgr.expireIdle(context.Background(), f.clock.Now()); n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}
	if _, ok := f.mgr.Get("alice"); ok {
		t.Fatalf("alice should have expired")
	}
	if f.mgr.LiveCount() != 1 {
		t.Fatalf("live = %d", f.mgr.LiveCount())
	}
	got, _ := f.repo.Load(context.Background(), "alice")
	if got.Progress.ManualClicks != 1 {
		t.Fatalf("expired session was not saved: %+v", got.Progress)
	}
}

func TestPlaceholderCompanyIsRenamed(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Namer = stubNamer{name: "Arasaka"} })
	acct := f.account(t, "alice", func(p *progression.Progress) { p.CompanyName = "alice Corp" })
	s, _ := f.mgr.Open(acct)

	if err := f.mgr.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := s.Snapshot().Progress.CompanyName; got != "Arasaka" {
		t.Fatalf("company = %q", got)
	}

	other, _ := f.mgr.Open(f.account(t, "bob", nil))
	f.mgr.Shutdown(context.Background())
	if got := other.Snapshot().Progress.CompanyName; got != "Blue Sun" {
		t.Fatalf("generated name replaced a chosen one: %q", got)
	}
}

func TestGameplayPublishesEvents(t *testing.T) {
	deck := []game.Card{{Rank: game.King}, {Rank: game.Queen}, {Rank: game.Ten}, {Rank: game.Seven}}
	f := newFixture(t, func(o *Options) {
		o.NewTable = func() *game.Table {
			return game.NewTable(game.TableOptions{NewDeck: func() *game.Deck { return game.StackedDeck(deck...) }})
		}
	})
	s, _ := f.mgr.Open(f.account(t, "alice", func(p *progression.Progress) { p.Money = 2_000_000 }))
	ctx := context.Background()

	if ok, _ := s.BuyUpgrade(ctx, "intern"); !ok {
		t.Fatalf("purchase failed")
	}
	if ok, _ := s.BuyUpgrade(ctx, "no_such_upgrade"); ok {
		t.Fatalf("unknown upgrade applied")
	}
	if ok, snap := s.Rebirth(ctx); !ok || snap.Progress.Rebirths != 1 {
		t.Fatalf("rebirth failed: %+v", snap.Progress)
	}
	if _, err := s.BlackjackDeal(ctx, 100); !errors.Is(err, game.ErrInvalidBet) {
		t.Fatalf("deal with no money: expected ErrInvalidBet, got %v", err)
	}
	s.Apply(func(e *progression.Engine, p *progression.Progress) bool { return e.GrantMoney(p, 1000) })
	if _, err := s.BlackjackDeal(ctx, 100); err != nil {
		t.Fatalf("deal: %v", err)
	}
	bj, err := s.BlackjackStand(ctx)
	if err != nil || bj.Result != game.ResultWin {
		t.Fatalf("stand: %+v err=%v", bj, err)
	}

	if n := len(f.rec.OfType(events.UpgradePurchased)); n != 1 {
		t.Fatalf("upgrade events = %d", n)
	}
	if n := len(f.rec.OfType(events.Rebirth)); n != 1 {
		t.Fatalf("rebirth events = %d", n)
	}
	settled := f.rec.OfType(events.BlackjackSettled)
	if len(settled) != 1 || settled[0].Data["result"] != "WIN" {
		t.Fatalf("settlement events = %+v", settled)
	}
	if got := s.Snapshot().Progress.BlackjackWins; got != 1 {
		t.Fatalf("wins = %d", got)
	}
}

func TestTotalMoney(t *testing.T) {
	f := newFixture(t, nil)
	f.mgr.Open(f.account(t, "alice", func(p *progression.Progress) { p.Money = 10 }))
	f.mgr.Open(f.account(t, "bob", func(p *progression.Progress) { p.Money = 32 }))
	if got := f.mgr.TotalMoney(); got != 42 {
		t.Fatalf("total = %v", got)
	}
}

func TestOverlayPrefersLiveState(t *testing.T) {
	f := newFixture(t, nil)
	f.account(t, "bob", nil)
	s, _ := f.mgr.Open(f.account(t, "alice", nil))
	s.Click()

	stored, _ := f.repo.List(context.Background())
	merged := f.mgr.Overlay(stored)
	if len(merged) != 2 {
		t.Fatalf("merged = %d accounts", len(merged))
	}
	for _, a := range merged {
		if a.Username == "alice" && a.Progress.ManualClicks != 1 {
			t.Fatalf("overlay used stored state for a live account")
		}
	}
}

func TestExpireIdleRevokesBeforeSaving(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.IdleTimeout = time.Minute })
	_, tok := f.mgr.Open(f.account(t, "alice", nil))
	var lookupErr error
	f.mgr.opts.Repo = hookRepo{Repository: f.repo, onSave: func() {
		_, lookupErr = f.mgr.Lookup(tok)
	}}

	f.clock.Advance(2 * time.Minute)
	if n := f.mgr.expireIdle(context.Background(), f.clock.Now()); n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}
	if !errors.Is(lookupErr, ErrInvalidToken) {
		t.Fatalf("token still accepted while the expiry save ran: %v", lookupErr)
	}
}

func TestExpireIdleKeepsSessionTouchedDuringSave(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.IdleTimeout = time.Minute })
	s, _ := f.mgr.Open(f.account(t, "alice", nil))
	clicked := false
	f.mgr.opts.Repo = hookRepo{Repository: f.repo, onSave: func() {
		if !clicked {
			clicked = true
			s.Click()
		}
	}}

	f.clock.Advance(2 * time.Minute)
	if n := f.mgr.expireIdle(context.Background(), f.clock.Now()); n != 0 {
		t.Fatalf("expired %d, want 0", n)
	}
	if _, ok := f.mgr.Get("alice"); !ok {
		t.Fatalf("session with an unsaved click was detached")
	}
	if err := f.mgr.SaveAll(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := f.repo.Load(context.Background(), "alice")
	if got.Progress.ManualClicks != 1 {
		t.Fatalf("click lost: %+v", got.Progress)
	}
}

func TestMarketShiftDoesNotRepricePastIncome(t *testing.T) {
	f := newFixture(t, nil)
	s, _ := f.mgr.Open(f.account(t, "alice", func(p *progression.Progress) { p.Upgrades["intern"] = 10 }))

	f.clock.Advance(10 * time.Second)
	f.mgr.Board().Set(market.Event{Message: "boom", Multiplier: 2}, f.clock.Now())
	if got := s.Snapshot().Progress.Money; math.Abs(got-100) > 1e-9 {
		t.Fatalf("money after shift = %v, want 100", got)
	}

	f.clock.Advance(5 * time.Second)
	if got := s.Snapshot().Progress.Money; math.Abs(got-200) > 1e-9 {
		t.Fatalf("money = %v, want 200", got)
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	const start = 10_000.0
	f := newFixture(t, nil)
	s, _ := f.mgr.Open(f.account(t, "alice", func(p *progression.Progress) { p.Money = start }))
	ctx := context.Background()

	const workers, perWorker = 8, 50
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		earned float64
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				got, _ := s.Click()
				mu.Lock()
				earned += got
				mu.Unlock()
				if i%5 == w%5 {
					s.BuyUpgrade(ctx, "intern")
				}
				s.Tick(f.clock.Now())
			}
		}(w)
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.Progress.ManualClicks != workers*perWorker {
		t.Fatalf("clicks = %d, want %d", snap.Progress.ManualClicks, workers*perWorker)
	}
	intern, _ := economy.DefaultCatalog().Lookup("intern")
	spent := 0.0
	for n := 0; n < snap.Progress.Owned("intern"); n++ {
		spent += economy.Cost(intern, n)
	}
	if want := start + earned - spent; math.Abs(snap.Progress.Money-want) > 1e-6 {
		t.Fatalf("money = %v, want %v (earned %v, spent %v)", snap.Progress.Money, want, earned, spent)
	}
	if snap.Progress.Money < 0 {
		t.Fatalf("money went negative: %v", snap.Progress.Money)
	}
}
