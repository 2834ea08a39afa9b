package control

import (
	"github.com/pkg/errors"

	"github.com/Roboost-Robotics/roboost-motor-control/utils"
)

// RateLimiter bounds how quickly a setpoint may move away from the current
// measurement, protecting the plant from step inputs. Implementations are
// stateful in general and not safe for concurrent use.
type RateLimiter interface {
	// Update takes the raw desired value and the current measurement and
	// returns a bounded setpoint.
	Update(desired, measurement float64) float64
	// Reset clears any internal state.
	Reset()
}

// PassThroughLimiter applies no rate limiting and returns the desired value.
type PassThroughLimiter struct{}

// Update returns desired unchanged.
func (PassThroughLimiter) Update(desired, _ float64) float64 { return desired }

// Reset is a no-op.
func (PassThroughLimiter) Reset() {}

// SlewLimiter bounds the setpoint to a window around the measurement. Each
// update the setpoint may exceed the measurement by at most maxRise and fall
// below it by at most maxFall.
type SlewLimiter struct {
	maxRise float64
	maxFall float64
}

// NewSlewLimiter returns a slew limiter with the given per-update rise and
// fall bounds. Both bounds are magnitudes.
func NewSlewLimiter(maxRise, maxFall float64) (*SlewLimiter, error) {
	if maxRise <= 0 {
		return nil, errors.Errorf("slew limiter max rise should be positive, got %v", maxRise)
	}
	if maxFall <= 0 {
		return nil, errors.Errorf("slew limiter max fall should be positive, got %v", maxFall)
	}
	return &SlewLimiter{maxRise: maxRise, maxFall: maxFall}, nil
}

// Update clamps desired to [measurement-maxFall, measurement+maxRise].
func (l *SlewLimiter) Update(desired, measurement float64) float64 {
	return utils.Clamp(desired, measurement-l.maxFall, measurement+l.maxRise)
}

// Reset is a no-op; the limiter is stateless relative to the measurement.
func (l *SlewLimiter) Reset() {}
