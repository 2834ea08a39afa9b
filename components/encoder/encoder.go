// Package encoder defines feedback devices that report angular velocity.
package encoder

import "context"

// An Encoder samples the rotation of a shaft. Sampling and reading are
// separate so a control step can pin the measurement it acts on.
type Encoder interface {
	// Update refreshes the sampled state.
	Update(ctx context.Context) error

	// Velocity returns the last-sampled angular velocity in radians per
	// second. It is a pure read and does not resample.
	Velocity() float64
}
