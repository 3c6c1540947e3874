package market

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultSchedule = "@every 45s"

// Source produces the next market event. money is the combined balance of
// players currently online, used to flavour generated headlines.
type Source interface {
	MarketEvent(ctx context.Context, money float64) (Event, error)
}

type Rotator struct {
	Cron    *cron.Cron
	Board   *Board
	Source  Source
	Money   func() float64
	Timeout time.Duration
	Now     func() time.Time

	// OnChange, when set, sees every event placed on the board.
	OnChange func(ctx context.Context, ev Event)
}

func NewRotator(board *Board, src Source, money func() float64) *Rotator {
	return &Rotator{
		Cron:    cron.New(cron.WithSeconds()),
		Board:   board,
		Source:  src,
		Money:   money,
		Timeout: 10 * time.Second,
		Now:     time.Now,
	}
}

func (r *Rotator) Register(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := r.Cron.AddFunc(schedule, func() { r.Rotate(context.Background()) }); err != nil {
		return fmt.Errorf("register market rotation: %w", err)
	}
	return nil
}

func (r *Rotator) Start() {
	r.Cron.Start()
	log.Info().Msg("market rotator started")
}

// Stop waits for a running rotation to finish.
func (r *Rotator) Stop() {
	<-r.Cron.Stop().Done()
	log.Info().Msg("market rotator stopped")
}

// Rotate fetches one event and publishes it to the board. A failing source
// leaves the current event in place.
func (r *Rotator) Rotate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	money := 0.0
	if r.Money != nil {
		money = r.Money()
	}
	ev, err := r.Source.MarketEvent(ctx, money)
	if err != nil {
		log.Warn().Err(err).Msg("market event unavailable")
		return
	}
	r.Board.Set(ev, r.Now())
	cur := r.Board.Current()
	log.Info().
		Str("message", cur.Message).
		Float64("multiplier", cur.Multiplier).
		Str("effect", string(cur.Effect)).
		Msg("market event")
	if r.OnChange != nil {
		r.OnChange(ctx, cur)
	}
}
