package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"neon-tycoon/internal/events"
	"neon-tycoon/internal/game"
	"neon-tycoon/internal/market"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/store"
)

var (
	ErrSessionNotFound = errors.New("session_not_found")
	ErrInvalidToken    = errors.New("invalid_token")
)

const (
	defaultTickThrottle = 100 * time.Millisecond
	defaultIdleTimeout  = 30 * time.Minute
	renameTimeout       = 15 * time.Second

	// placeholderSuffix marks a company name that was never generated.
	placeholderSuffix = "Corp"
)

// CompanyNamer supplies generated company names.
type CompanyNamer interface {
	CompanyName(ctx context.Context) (string, error)
}

type Options struct {
	Engine       *progression.Engine
	Board        *market.Board
	Repo         store.Repository
	Publisher    events.Publisher
	Namer        CompanyNamer
	TickThrottle time.Duration
	IdleTimeout  time.Duration
	NewTable     func() *game.Table
}

// Manager owns the live sessions, keyed by username and by bearer token.
type Manager struct {
	opts Options

	mu      sync.Mutex
	byUser  map[string]*Session
	byToken map[string]*Session

	renames sync.WaitGroup
}

func NewManager(opts Options) *Manager {
	if opts.Engine == nil {
		opts.Engine = progression.NewEngine(nil, progression.Options{})
	}
	if opts.Board == nil {
		opts.Board = market.NewBoard()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.TickThrottle <= 0 {
		opts.TickThrottle = defaultTickThrottle
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.NewTable == nil {
		opts.NewTable = func() *game.Table {
			return game.NewTable(game.TableOptions{NewID: store.NewID})
		}
	}
	m := &Manager{
		opts:    opts,
		byUser:  map[string]*Session{},
		byToken: map[string]*Session{},
	}
	opts.Board.BeforeSet(func() { m.FlushAll(opts.Engine.Now()) })
	return m
}

func (m *Manager) Board() *market.Board {
	return m.opts.Board
}

func (m *Manager) Engine() *progression.Engine {
	return m.opts.Engine
}

// Open attaches a session for acct and returns a fresh bearer token. An
// account that is already live keeps its in-memory state; earlier tokens
// for it stop working.
func (m *Manager) Open(acct store.Account) (*Session, string) {
	token := store.NewToken()
	now := m.opts.Engine.Now()

	m.mu.Lock()
	s, ok := m.byUser[acct.Username]
	if !ok {
		s = newSession(acct, m, now)
		m.byUser[acct.Username] = s
		metricSessionsActive.Set(int64(len(m.byUser)))
	}
	s.mu.Lock()
	if s.token != "" {
		delete(m.byToken, s.token)
	}
	s.token = token
	s.lastSeen = now
	placeholder := strings.HasSuffix(s.progress.CompanyName, placeholderSuffix)
	s.mu.Unlock()
	m.byToken[token] = s
	m.mu.Unlock()

	if !ok && placeholder && m.opts.Namer != nil {
		m.renameAsync(s)
	}
	return s, token
}

// renameAsync swaps a placeholder company name for a generated one. The
// player can keep playing; a name set in the meantime wins.
func (m *Manager) renameAsync(s *Session) {
	m.renames.Add(1)
	go func() {
		defer m.renames.Done()
		ctx, cancel := context.WithTimeout(context.Background(), renameTimeout)
		defer cancel()
		name, err := m.opts.Namer.CompanyName(ctx)
		if err != nil || strings.TrimSpace(name) == "" {
			log.Debug().Err(err).Str("username", s.Username()).Msg("company rename skipped")
			return
		}
		ok, _ := s.Apply(func(e *progression.Engine, p *progression.Progress) bool {
			if !strings.HasSuffix(p.CompanyName, placeholderSuffix) {
				return false
			}
			return e.RenameCompany(p, name)
		})
		if ok {
			log.Info().Str("username", s.Username()).Str("company", name).Msg("company renamed")
		}
	}()
}

// Edit applies fn to username's progress. An offline account is loaded into
// a tokenless session for the edit, so a login racing with it attaches to
// the edited state rather than the stored row. live reports whether the
// player was online.
func (m *Manager) Edit(ctx context.Context, username string, fn func(*progression.Engine, *progression.Progress) bool) (applied bool, snap Snapshot, live bool, err error) {
	if s, ok := m.Get(username); ok {
		applied, snap = s.Apply(fn)
		return applied, snap, true, nil
	}
	acct, err := m.opts.Repo.Load(ctx, username)
	if err != nil {
		return false, Snapshot{}, false, err
	}

	m.mu.Lock()
	s, live := m.byUser[username]
	if !live {
		s = newSession(acct, m, m.opts.Engine.Now())
		m.byUser[username] = s
	}
	m.mu.Unlock()

	applied, snap = s.Apply(fn)
	if live {
		return applied, snap, true, nil
	}
	saved, rev := s.capture()
	if applied {
		if err := m.save(ctx, []store.Account{saved}); err != nil {
			// Still attached: autosave keeps retrying the edit.
			return applied, snap, false, err
		}
	}
	m.detach(s, rev)
	return applied, snap, false, nil
}

func (m *Manager) Lookup(token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return s, nil
}

func (m *Manager) Get(username string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[username]
	return s, ok
}

// Close revokes token, saves the session and detaches it. When the save
// fails the session stays attached so autosave can retry.
func (m *Manager) Close(ctx context.Context, token string) error {
	s, err := m.Lookup(token)
	if err != nil {
		return err
	}
	m.revoke(s)
	acct, rev := s.capture()
	if err := m.save(ctx, []store.Account{acct}); err != nil {
		return err
	}
	m.detach(s, rev)
	return nil
}

func (m *Manager) revoke(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.mu.Lock()
	delete(m.byToken, s.token)
	s.token = ""
	s.mu.Unlock()
}

// detach drops a revoked session saved at revision rev. A session that was
// reopened, or touched by a request that looked it up before the revoke,
// stays attached so its newer state reaches the next save.
func (m *Manager) detach(s *Session, rev uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.mu.Lock()
	keep := s.token != "" || s.rev != rev
	s.mu.Unlock()
	if keep {
		return false
	}
	if m.byUser[s.Username()] == s {
		delete(m.byUser, s.Username())
	}
	metricSessionsActive.Set(int64(len(m.byUser)))
	return true
}

func (m *Manager) sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.byUser))
	for _, s := range m.byUser {
		out = append(out, s)
	}
	return out
}

// Accounts returns the live state of every attached account.
func (m *Manager) Accounts() []store.Account {
	live := m.sessions()
	out := make([]store.Account, 0, len(live))
	for _, s := range live {
		out = append(out, s.Account())
	}
	return out
}

// SaveAll writes every live session. State is read at call time, never
// from an earlier capture.
func (m *Manager) SaveAll(ctx context.Context) error {
	accts := m.Accounts()
	if len(accts) == 0 {
		return nil
	}
	return m.save(ctx, accts)
}

func (m *Manager) save(ctx context.Context, accts []store.Account) error {
	if err := m.opts.Repo.SaveAll(ctx, accts); err != nil {
		metricSaveErrors.Add(1)
		return err
	}
	metricSaves.Add(int64(len(accts)))
	return nil
}

// FlushAll accrues income for every live session up to now at the current
// market multiplier.
func (m *Manager) FlushAll(now time.Time) {
	for _, s := range m.sessions() {
		s.flush(now)
	}
}

func (m *Manager) TotalMoney() float64 {
	total := 0.0
	for _, s := range m.sessions() {
		total += s.Money()
	}
	return total
}

func (m *Manager) LiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser)
}

func (m *Manager) StartAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.SaveAll(ctx); err != nil {
					log.Warn().Err(err).Msg("autosave failed")
				}
			}
		}
	}()
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireIdle(ctx, m.opts.Engine.Now())
			}
		}
	}()
}

// expireIdle revokes, saves and detaches sessions idle longer than
// IdleTimeout. A session whose save fails stays attached without a token;
// autosave and the next sweep retry it.
func (m *Manager) expireIdle(ctx context.Context, now time.Time) int {
	expired := 0
	for _, s := range m.sessions() {
		if now.Sub(s.idleSince()) < m.opts.IdleTimeout {
			continue
		}
		m.revoke(s)
		acct, rev := s.capture()
		if err := m.save(ctx, []store.Account{acct}); err != nil {
			log.Warn().Err(err).Str("username", s.Username()).Msg("save before expiry failed")
			continue
		}
		if !m.detach(s, rev) {
			continue
		}
		metricSessionsExpired.Add(1)
		expired++
		log.Info().Str("username", s.Username()).Msg("session expired")
	}
	return expired
}

// Shutdown waits for background renames and writes a final save.
func (m *Manager) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.renames.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return m.SaveAll(ctx)
}

// Overlay replaces stored accounts with their live versions and appends live
// accounts the store has not seen yet.
func (m *Manager) Overlay(stored []store.Account) []store.Account {
	live := map[string]store.Account{}
	for _, a := range m.Accounts() {
		live[a.Username] = a
	}
	out := make([]store.Account, 0, len(stored)+len(live))
	for _, a := range stored {
		if l, ok := live[a.Username]; ok {
			a = l
			delete(live, a.Username)
		}
		out = append(out, a)
	}
	for _, a := range live {
		out = append(out, a)
	}
	return out
}
