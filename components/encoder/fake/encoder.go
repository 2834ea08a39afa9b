// Package fake implements a fake encoder with a settable velocity.
package fake

import (
	"context"
	"sync"
)

// Encoder reports whatever velocity tests feed it. The value set with
// SetVelocity only becomes visible through Velocity after the next Update,
// mirroring the sample-then-read contract of real encoders.
type Encoder struct {
	mu      sync.Mutex
	next    float64
	sampled float64
	updates int
	updErr  error
}

// NewEncoder returns a fake encoder reading zero velocity.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Update latches the pending velocity into the sampled state.
func (e *Encoder) Update(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.updErr != nil {
		return e.updErr
	}
	e.sampled = e.next
	e.updates++
	return nil
}

// Velocity returns the last-sampled velocity in rad/s.
func (e *Encoder) Velocity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sampled
}

// SetVelocity sets the velocity the next Update will sample.
func (e *Encoder) SetVelocity(radPerSec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next = radPerSec
}

// Updates returns how many times Update has been called.
func (e *Encoder) Updates() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updates
}

// InjectError makes every subsequent Update fail with err. Pass nil to heal.
func (e *Encoder) InjectError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updErr = err
}
