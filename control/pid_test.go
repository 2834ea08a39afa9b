package control

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
)

func TestPIDConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  PIDConfig
		err  string
	}{
		{"valid", PIDConfig{Kp: 1, Ki: 0.5, Kd: 0.1}, ""},
		{"kp only", PIDConfig{Kp: 1}, ""},
		{"all zero", PIDConfig{}, "at least one of kp, ki or kd"},
		{"negative gain", PIDConfig{Kp: -1}, "non-negative"},
		{"negative integral limit", PIDConfig{Kp: 1, IntegralLimit: -1}, "integral_limit"},
		{"negative output limit", PIDConfig{Kp: 1, OutputLimit: -1}, "output_limit"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.err == "" {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
				test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
			}
		})
	}
}

func TestPIDFirstUpdatePrimes(t *testing.T) {
	clk := clock.NewMock()
	pid, err := NewPID(PIDConfig{Kp: 0.5, Ki: 1, Kd: 1}, clk)
	test.That(t, err, test.ShouldBeNil)

	// only the proportional term on the first update
	test.That(t, pid.Update(1.0, 0.0), test.ShouldEqual, 0.5)

	// and it is clamped like any other output
	pid2, err := NewPID(PIDConfig{Kp: 0.5, Ki: 1, Kd: 1}, clk)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pid2.Update(10.0, 0.0), test.ShouldEqual, 1.0)
}

func TestPIDProportional(t *testing.T) {
	clk := clock.NewMock()
	pid, err := NewPID(PIDConfig{Kp: 0.1}, clk)
	test.That(t, err, test.ShouldBeNil)

	pid.Update(0, 0)
	clk.Add(10 * time.Millisecond)
	test.That(t, pid.Update(2.0, 0.0), test.ShouldAlmostEqual, 0.2)
	clk.Add(10 * time.Millisecond)
	test.That(t, pid.Update(-2.0, 0.0), test.ShouldAlmostEqual, -0.2)
}

func TestPIDIntegralAccumulates(t *testing.T) {
	clk := clock.NewMock()
	pid, err := NewPID(PIDConfig{Ki: 1}, clk)
	test.That(t, err, test.ShouldBeNil)

	pid.Update(1.0, 0.0)
	clk.Add(100 * time.Millisecond)
	test.That(t, pid.Update(1.0, 0.0), test.ShouldAlmostEqual, 0.1)
	clk.Add(100 * time.Millisecond)
	test.That(t, pid.Update(1.0, 0.0), test.ShouldAlmostEqual, 0.2)
	test.That(t, pid.Integral(), test.ShouldAlmostEqual, 0.2)

	pid.Reset()
	test.That(t, pid.Integral(), test.ShouldEqual, 0.0)
}

func TestPIDIntegralClamp(t *testing.T) {
	clk := clock.NewMock()
	pid, err := NewPID(PIDConfig{Ki: 0.1, IntegralLimit: 0.5}, clk)
	test.That(t, err, test.ShouldBeNil)

	pid.Update(10.0, 0.0)
	for i := 0; i < 100; i++ {
		clk.Add(100 * time.Millisecond)
		pid.Update(10.0, 0.0)
	}
	test.That(t, pid.Integral(), test.ShouldAlmostEqual, 0.5)
}

func TestPIDDerivative(t *testing.T) {
	clk := clock.NewMock()
	pid, err := NewPID(PIDConfig{Kd: 0.01}, clk)
	test.That(t, err, test.ShouldBeNil)

	pid.Update(1.0, 0.0)
	clk.Add(100 * time.Millisecond)
	// error rose from 1.0 to 2.0 over 0.1s
	test.That(t, pid.Update(2.0, 0.0), test.ShouldAlmostEqual, 0.1)
}

func TestPIDOutputClamp(t *testing.T) {
	clk := clock.NewMock()
	pid, err := NewPID(PIDConfig{Kp: 100}, clk)
	test.That(t, err, test.ShouldBeNil)

	pid.Update(0, 0)
	clk.Add(10 * time.Millisecond)
	test.That(t, pid.Update(5.0, 0.0), test.ShouldEqual, 1.0)
	clk.Add(10 * time.Millisecond)
	test.That(t, pid.Update(-5.0, 0.0), test.ShouldEqual, -1.0)
}

func TestPIDAntiWindupBackCalculation(t *testing.T) {
	clk := clock.NewMock()
	pid, err := NewPID(PIDConfig{Kp: 1, Ki: 10}, clk)
	test.That(t, err, test.ShouldBeNil)

	pid.Update(5.0, 0.0)
	for i := 0; i < 50; i++ {
		clk.Add(100 * time.Millisecond)
		pid.Update(5.0, 0.0)
	}
	// once the error drops to zero the integral must not keep the output
	// pinned at the clamp
	clk.Add(100 * time.Millisecond)
	out := pid.Update(0.0, 0.0)
	test.That(t, out, test.ShouldBeLessThan, 1.0)
}
