package narrator

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"neon-tycoon/internal/market"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackEvent struct {
	Message    string  `yaml:"message"`
	Multiplier float64 `yaml:"multiplier"`
}

type fallbackFile struct {
	CompanyNames []string        `yaml:"company_names"`
	MarketEvents []fallbackEvent `yaml:"market_events"`
}

// Fallback picks uniformly from static tables. It never fails.
type Fallback struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	names  []string
	events []fallbackEvent
}

func NewFallback(rnd *rand.Rand) (*Fallback, error) {
	var f fallbackFile
	if err := yaml.Unmarshal(fallbackYAML, &f); err != nil {
		return nil, fmt.Errorf("parse fallback tables: %w", err)
	}
	if len(f.CompanyNames) == 0 || len(f.MarketEvents) == 0 {
		return nil, errors.New("fallback tables are empty")
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Fallback{rnd: rnd, names: f.CompanyNames, events: f.MarketEvents}, nil
}

func (f *Fallback) CompanyName(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names[f.rnd.Intn(len(f.names))], nil
}

func (f *Fallback) MarketEvent(context.Context, float64) (market.Event, error) {
	f.mu.Lock()
	ev := f.events[f.rnd.Intn(len(f.events))]
	f.mu.Unlock()
	return market.NewEvent(ev.Message, ev.Multiplier), nil
}

func (f *Fallback) Names() []string {
	return append([]string(nil), f.names...)
}
