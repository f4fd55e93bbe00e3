// Package maintain runs periodic upkeep of the memory store so
// importance erodes and the database mirror stays current even when
// nobody issues commands.
package maintain

import (
	"context"
	"time"

	"github.com/felixgeelhaar/engram/internal/observe"
)

// DefaultInterval is the pause between passes when none is configured.
const DefaultInterval = time.Hour

// Passer runs one maintenance pass over the store.
type Passer interface {
	DecayPass(ctx context.Context) error
}

// Maintainer drives a Passer on a fixed interval.
type Maintainer struct {
	target   Passer
	observe  *observe.Observer
	interval time.Duration
}

func New(target Passer, o *observe.Observer, interval time.Duration) *Maintainer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Maintainer{
		target:   target,
		observe:  o,
		interval: interval,
	}
}

// Interval returns the configured pause between passes.
func (m *Maintainer) Interval() time.Duration {
	return m.interval
}

// Run blocks, executing a pass every interval until ctx is cancelled.
// A failed pass is logged and the loop continues.
func (m *Maintainer) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.observe.Log().Info().Str("interval", m.interval.String()).Msg("maintenance loop started")
	for {
		select {
		case <-ctx.Done():
			m.observe.Log().Info().Msg("maintenance loop stopped")
			return nil
		case <-ticker.C:
			if err := m.Pass(ctx); err != nil {
				m.observe.Log().Error().Err(err).Msg("maintenance pass failed")
			}
		}
	}
}

// Pass runs one maintenance cycle.
func (m *Maintainer) Pass(ctx context.Context) error {
	ctx, span := m.observe.StartSpan(ctx, "MaintenancePass")
	defer span.End()

	return m.target.DecayPass(ctx)
}
