package narrator

import (
	"context"
	"expvar"
	"time"

	"github.com/rs/zerolog/log"

	"neon-tycoon/internal/market"
)

var (
	metricGenerated = expvar.NewInt("narrator_generated_total")
	metricFallbacks = expvar.NewInt("narrator_fallbacks_total")
)

// Resilient bounds each primary call by a timeout and substitutes fallback
// output on any failure. Its methods never return an error.
type Resilient struct {
	primary  Narrator
	fallback Narrator
	timeout  time.Duration
}

// WithFallback wraps primary. A nil primary serves fallback output only.
func WithFallback(primary, fallback Narrator, timeout time.Duration) *Resilient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resilient{primary: primary, fallback: fallback, timeout: timeout}
}

func (r *Resilient) CompanyName(ctx context.Context) (string, error) {
	if r.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		name, err := r.primary.CompanyName(cctx)
		cancel()
		if err == nil {
			metricGenerated.Add(1)
			return name, nil
		}
		r.logFailure("company_name", err)
	}
	metricFallbacks.Add(1)
	return r.fallback.CompanyName(ctx)
}

func (r *Resilient) MarketEvent(ctx context.Context, money float64) (market.Event, error) {
	if r.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		ev, err := r.primary.MarketEvent(cctx, money)
		cancel()
		if err == nil {
			metricGenerated.Add(1)
			return ev, nil
		}
		r.logFailure("market_event", err)
	}
	metricFallbacks.Add(1)
	return r.fallback.MarketEvent(ctx, money)
}

func (r *Resilient) logFailure(kind string, err error) {
	log.Debug().Err(err).Str("kind", kind).Msg("narrator fallback")
}
