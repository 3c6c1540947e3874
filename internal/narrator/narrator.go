// Package narrator generates flavour text: company names and market
// headlines. Generated text never gates gameplay; every caller has an
// offline fallback.
package narrator

import (
	"context"
	"errors"

	"neon-tycoon/internal/market"
)

var (
	ErrRateLimited = errors.New("rate_limited")
	ErrEmptyOutput = errors.New("empty_output")
)

type Narrator interface {
	CompanyName(ctx context.Context) (string, error)
	MarketEvent(ctx context.Context, money float64) (market.Event, error)
}
