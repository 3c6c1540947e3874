package market

import (
	"sync"
	"time"
)

type Effect string

const (
	EffectNone  Effect = "NONE"
	EffectBoost Effect = "BOOST"
	EffectCrash Effect = "CRASH"
)

const (
	DefaultDuration = 60 * time.Second
	welcomeMessage  = "Welcome to Neon Tycoon. Market is stable."
)

type Event struct {
	Message    string    `json:"message"`
	Multiplier float64   `json:"multiplier"`
	Effect     Effect    `json:"effect"`
	Duration   int       `json:"duration"`
	StartedAt  time.Time `json:"started_at"`
}

// EffectFor classifies a multiplier.
func EffectFor(multiplier float64) Effect {
	switch {
	case multiplier > 1:
		return EffectBoost
	case multiplier < 1:
		return EffectCrash
	default:
		return EffectNone
	}
}

// NewEvent builds an event whose effect always agrees with its multiplier.
// Non-positive multipliers are treated as neutral.
func NewEvent(message string, multiplier float64) Event {
	if !(multiplier > 0) {
		multiplier = 1
	}
	return Event{
		Message:    message,
		Multiplier: multiplier,
		Effect:     EffectFor(multiplier),
		Duration:   int(DefaultDuration / time.Second),
	}
}

func Neutral() Event {
	return NewEvent(welcomeMessage, 1)
}

// Board holds the market event currently applied to every player.
type Board struct {
	mu      sync.RWMutex
	current Event
	history []Event
	keep    int
	before  []func()
}

func NewBoard() *Board {
	return &Board{current: Neutral(), keep: 20}
}

func (b *Board) Current() Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

func (b *Board) Multiplier() float64 {
	return b.Current().Multiplier
}

// BeforeSet registers fn to run ahead of every Set, while the outgoing
// event is still current. Hooks run outside the board lock.
func (b *Board) BeforeSet(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.before = append(b.before, fn)
}

func (b *Board) Set(ev Event, now time.Time) {
	ev = NewEvent(ev.Message, ev.Multiplier)
	ev.StartedAt = now
	b.mu.RLock()
	hooks := append([]func(){}, b.before...)
	b.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, b.current)
	if len(b.history) > b.keep {
		b.history = b.history[len(b.history)-b.keep:]
	}
	b.current = ev
}

// History returns earlier events, newest last.
func (b *Board) History() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Event(nil), b.history...)
}
