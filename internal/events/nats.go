package events

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const SubjectPrefix = "tycoon.events."

var (
	metricPublishTotal  = expvar.NewInt("events_publish_total")
	metricPublishErrors = expvar.NewInt("events_publish_errors_total")
)

// NATS publishes each event as JSON on tycoon.events.<type> using core
// NATS. No stream is required.
type NATS struct {
	nc *nats.Conn
}

func NewNATS(url string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("neon-tycoon"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATS{nc: nc}, nil
}

func Subject(t Type) string {
	return SubjectPrefix + string(t)
}

func (p *NATS) Publish(_ context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		metricPublishErrors.Add(1)
		log.Error().Err(err).Str("type", string(ev.Type)).Msg("encode event")
		return
	}
	if err := p.nc.Publish(Subject(ev.Type), data); err != nil {
		metricPublishErrors.Add(1)
		log.Warn().Err(err).Str("type", string(ev.Type)).Msg("publish event")
		return
	}
	metricPublishTotal.Add(1)
}

// Close flushes pending messages and closes the connection.
func (p *NATS) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
