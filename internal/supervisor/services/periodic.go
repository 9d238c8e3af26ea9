// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package services

import (
	"context"
	"errors"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/gamescore/internal/logging"
)

// Ticker is the part of *time.Ticker a PeriodicService uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }

func (t timeTicker) Stop() { t.t.Stop() }

// NewTimeTicker adapts time.NewTicker to Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// TaskFunc is one run of a periodic job.
type TaskFunc func(ctx context.Context) error

// PeriodicService runs a task on a fixed interval until canceled.
//
// A failed run is logged and the service keeps ticking; a task error
// never triggers a supervisor restart. A non-positive interval disables
// the ticking: Serve performs the start run, if any, and then returns
// suture.ErrDoNotRestart.
type PeriodicService struct {
	name       string
	interval   time.Duration
	runOnStart bool
	task       TaskFunc

	// NewTicker is replaced in tests.
	NewTicker func(time.Duration) Ticker
}

// NewPeriodicService creates a service named name that calls task every
// interval, and once immediately when runOnStart is set.
func NewPeriodicService(name string, interval time.Duration, runOnStart bool, task TaskFunc) *PeriodicService {
	return &PeriodicService{
		name:       name,
		interval:   interval,
		runOnStart: runOnStart,
		task:       task,
		NewTicker:  NewTimeTicker,
	}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(p.name)
	if p.runOnStart {
		p.run(ctx)
	}
	if p.interval <= 0 {
		logger.Info().Bool("ran_on_start", p.runOnStart).Msg("Periodic task disabled")
		return suture.ErrDoNotRestart
	}

	ticker := p.NewTicker(p.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", p.interval).Msg("Periodic task started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			p.run(ctx)
		}
	}
}

func (p *PeriodicService) run(ctx context.Context) {
	start := time.Now()
	err := p.task(ctx)
	switch {
	case err == nil:
		logger := logging.WithComponent(p.name)
		logger.Debug().Dur("took", time.Since(start)).Msg("Periodic task completed")
	case errors.Is(err, context.Canceled):
	default:
		logger := logging.WithComponent(p.name)
		logger.Warn().Err(err).Msg("Periodic task failed")
	}
}

func (p *PeriodicService) String() string {
	return p.name
}
