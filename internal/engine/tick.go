// Package engine provides the interval loop that drives background upkeep
// such as autosave and history pruning.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultSweepTicks is how many ticks pass between OnSweep calls.
const DefaultSweepTicks = 60

// Engine calls its hooks on a fixed interval until its context ends.
type Engine struct {
	Interval   time.Duration // Tick interval (default 1 minute)
	SweepTicks uint64        // OnSweep runs every SweepTicks ticks

	// Callbacks, populated during setup.
	OnTick  func(tick uint64) // Every tick
	OnSweep func(tick uint64) // Every SweepTicks ticks
	OnStop  func(tick uint64) // Once, after the loop exits

	tick    atomic.Uint64
	running atomic.Bool
}

// NewEngine creates an engine with default settings.
func NewEngine(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Engine{
		Interval:   interval,
		SweepTicks: DefaultSweepTicks,
	}
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() uint64 {
	return e.tick.Load()
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run blocks, stepping once per interval, until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("engine started", "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if e.OnStop != nil {
				e.OnStop(e.Tick())
			}
			slog.Info("engine stopped", "tick", e.Tick())
			return
		case <-ticker.C:
			e.step()
		}
	}
}

// step advances the engine by one tick.
func (e *Engine) step() {
	tick := e.tick.Add(1)

	if e.OnTick != nil {
		e.OnTick(tick)
	}

	if e.SweepTicks > 0 && tick%e.SweepTicks == 0 && e.OnSweep != nil {
		e.OnSweep(tick)
	}
}
