/*
Package incremental implements an incremental (tick counting) encoder.

Interrupt glue feeds pulses in via Tick; a tick is one pulse of the encoder
wheel, signed by the direction of travel. Update estimates angular velocity
from the tick delta since the previous sample, so the sampling cadence sets
the bandwidth of the measurement.
*/
package incremental

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Config describes the geometry of an incremental encoder.
type Config struct {
	// TicksPerRotation is the pulse count for one full shaft rotation.
	TicksPerRotation int `json:"ticks_per_rotation" yaml:"ticks_per_rotation"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.TicksPerRotation <= 0 {
		return errors.Errorf("incremental encoder needs a positive ticks_per_rotation, got %d", cfg.TicksPerRotation)
	}
	return nil
}

// Encoder estimates shaft velocity from a signed tick counter.
type Encoder struct {
	ticksPerRotation float64
	clk              clock.Clock
	logger           golog.Logger

	position int64 // atomic, written from interrupt glue

	mu        sync.Mutex
	lastPos   int64
	lastTime  int64 // unix nanos of the previous Update, 0 before the first
	velocity  float64
	lastKnown bool
}

// NewEncoder returns an incremental encoder. A nil clk defaults to the wall
// clock; tests pass a mock clock to control the sampling interval.
func NewEncoder(cfg Config, clk clock.Clock, logger golog.Logger) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Encoder{
		ticksPerRotation: float64(cfg.TicksPerRotation),
		clk:              clk,
		logger:           logger,
	}, nil
}

// Tick records one encoder pulse. dir is +1 for forward and -1 for reverse.
// Safe to call from a different goroutine than Update.
func (e *Encoder) Tick(dir int64) {
	atomic.AddInt64(&e.position, dir)
}

// Position returns the accumulated tick count.
func (e *Encoder) Position() int64 {
	return atomic.LoadInt64(&e.position)
}

// Update samples the tick counter and refreshes the velocity estimate. The
// first update only primes the state and leaves the velocity at zero.
func (e *Encoder) Update(_ context.Context) error {
	pos := atomic.LoadInt64(&e.position)
	now := e.clk.Now().UnixNano()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.lastKnown {
		e.lastPos = pos
		e.lastTime = now
		e.lastKnown = true
		return nil
	}
	dt := float64(now-e.lastTime) / 1e9
	if dt <= 0 {
		return errors.New("incremental encoder sampled twice without time advancing")
	}
	revs := float64(pos-e.lastPos) / e.ticksPerRotation
	e.velocity = revs * 2 * math.Pi / dt
	e.lastPos = pos
	e.lastTime = now
	return nil
}

// Velocity returns the last-sampled angular velocity in rad/s.
func (e *Encoder) Velocity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.velocity
}
