package control

import (
	"testing"

	"go.viam.com/test"
)

func TestPassThrough(t *testing.T) {
	var f PassThrough
	test.That(t, f.Update(1.5), test.ShouldEqual, 1.5)
	test.That(t, f.Update(-3.0), test.ShouldEqual, -3.0)
	f.Reset()
	test.That(t, f.Update(0.0), test.ShouldEqual, 0.0)
}

func TestNewLowPassValidation(t *testing.T) {
	for _, tc := range []struct {
		name   string
		cutoff float64
		smp    float64
		err    string
	}{
		{"valid", 5, 100, ""},
		{"zero cutoff", 0, 100, "cutoff frequency should be positive"},
		{"zero sampling", 5, 0, "sampling frequency should be positive"},
		{"above nyquist", 60, 100, "Nyquist"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLowPass(tc.cutoff, tc.smp)
			if tc.err == "" {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
				test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
			}
		})
	}
}

func TestLowPass(t *testing.T) {
	f, err := NewLowPass(5, 100)
	test.That(t, err, test.ShouldBeNil)

	// first sample primes the state
	test.That(t, f.Update(2.0), test.ShouldEqual, 2.0)

	// subsequent samples move toward the input without overshooting
	prev := 2.0
	for i := 0; i < 50; i++ {
		y := f.Update(10.0)
		test.That(t, y, test.ShouldBeGreaterThan, prev)
		test.That(t, y, test.ShouldBeLessThanOrEqualTo, 10.0)
		prev = y
	}
	// converged close to the input after enough samples
	test.That(t, prev, test.ShouldAlmostEqual, 10.0, 0.5)

	f.Reset()
	test.That(t, f.Update(4.0), test.ShouldEqual, 4.0)
}

func TestNewMovingAverageValidation(t *testing.T) {
	_, err := NewMovingAverage(0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewMovingAverage(-2)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMovingAverage(t *testing.T) {
	f, err := NewMovingAverage(3)
	test.That(t, err, test.ShouldBeNil)

	// partial window averages over what has been seen
	test.That(t, f.Update(3.0), test.ShouldEqual, 3.0)
	test.That(t, f.Update(6.0), test.ShouldEqual, 4.5)
	test.That(t, f.Update(9.0), test.ShouldEqual, 6.0)

	// full window drops the oldest sample
	test.That(t, f.Update(12.0), test.ShouldEqual, 9.0)

	f.Reset()
	test.That(t, f.Update(1.0), test.ShouldEqual, 1.0)
}
