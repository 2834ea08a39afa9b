package control

import (
	"math"

	"github.com/pkg/errors"
)

// Filter is a unary stateful signal transform. Implementations carry their
// own state between updates and are not safe for concurrent use.
type Filter interface {
	// Update feeds one sample and returns the filtered value.
	Update(x float64) float64
	// Reset clears the filter state.
	Reset()
}

// PassThrough is the identity filter.
type PassThrough struct{}

// Update returns x unchanged.
func (PassThrough) Update(x float64) float64 { return x }

// Reset is a no-op.
func (PassThrough) Reset() {}

// LowPass is a first order IIR low-pass filter.
type LowPass struct {
	alpha  float64
	y      float64
	primed bool
}

// NewLowPass returns a low-pass filter with the given cutoff frequency,
// discretized at the given sampling frequency (both in Hz).
func NewLowPass(cutoffFreq, smpFreq float64) (*LowPass, error) {
	if cutoffFreq <= 0 {
		return nil, errors.Errorf("low-pass filter cutoff frequency should be positive, got %v", cutoffFreq)
	}
	if smpFreq <= 0 {
		return nil, errors.Errorf("low-pass filter sampling frequency should be positive, got %v", smpFreq)
	}
	if cutoffFreq >= smpFreq/2 {
		return nil, errors.Errorf("low-pass filter cutoff %v exceeds the Nyquist frequency %v", cutoffFreq, smpFreq/2)
	}
	dt := 1.0 / smpFreq
	rc := 1.0 / (2.0 * math.Pi * cutoffFreq)
	return &LowPass{alpha: dt / (rc + dt)}, nil
}

// Update feeds one sample. The first sample primes the filter state.
func (f *LowPass) Update(x float64) float64 {
	if !f.primed {
		f.y = x
		f.primed = true
		return f.y
	}
	f.y += f.alpha * (x - f.y)
	return f.y
}

// Reset clears the filter state.
func (f *LowPass) Reset() {
	f.y = 0
	f.primed = false
}

// MovingAverage is an FIR moving average filter over a fixed window.
type MovingAverage struct {
	window []float64
	idx    int
	count  int
	sum    float64
}

// NewMovingAverage returns a moving average filter with the given window size.
func NewMovingAverage(filterSize int) (*MovingAverage, error) {
	if filterSize <= 0 {
		return nil, errors.Errorf("moving average filter size should be positive, got %d", filterSize)
	}
	return &MovingAverage{window: make([]float64, filterSize)}, nil
}

// Update feeds one sample and returns the mean over the filled window.
func (f *MovingAverage) Update(x float64) float64 {
	f.sum -= f.window[f.idx]
	f.window[f.idx] = x
	f.sum += x
	f.idx = (f.idx + 1) % len(f.window)
	if f.count < len(f.window) {
		f.count++
	}
	return f.sum / float64(f.count)
}

// Reset clears the filter state.
func (f *MovingAverage) Reset() {
	for i := range f.window {
		f.window[i] = 0
	}
	f.idx = 0
	f.count = 0
	f.sum = 0
}
