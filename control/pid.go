package control

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/Roboost-Robotics/roboost-motor-control/utils"
)

// Controller computes a corrective command from a setpoint and a measurement.
// Its output is nominally a power fraction in [-1, 1].
type Controller interface {
	Update(setpoint, measurement float64) float64
	Reset()
}

// PIDConfig holds the gains and limits of a PID controller.
type PIDConfig struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ki float64 `json:"ki" yaml:"ki"`
	Kd float64 `json:"kd" yaml:"kd"`
	// IntegralLimit bounds the magnitude of the accumulated integral term
	// to prevent windup. Zero disables the integral clamp.
	IntegralLimit float64 `json:"integral_limit" yaml:"integral_limit"`
	// OutputLimit bounds the magnitude of the controller output.
	// Defaults to 1.0 so the output maps directly onto a power fraction.
	OutputLimit float64 `json:"output_limit" yaml:"output_limit"`
}

// Validate ensures the config describes a usable controller.
func (cfg *PIDConfig) Validate() error {
	if cfg.Kp == 0 && cfg.Ki == 0 && cfg.Kd == 0 {
		return errors.New("pid config should have at least one of kp, ki or kd set")
	}
	if cfg.Kp < 0 || cfg.Ki < 0 || cfg.Kd < 0 {
		return errors.Errorf("pid gains should be non-negative, got kp=%v ki=%v kd=%v", cfg.Kp, cfg.Ki, cfg.Kd)
	}
	if cfg.IntegralLimit < 0 {
		return errors.Errorf("pid integral_limit should be non-negative, got %v", cfg.IntegralLimit)
	}
	if cfg.OutputLimit < 0 {
		return errors.Errorf("pid output_limit should be non-negative, got %v", cfg.OutputLimit)
	}
	return nil
}

// PID is a discrete PID controller over a (setpoint, measurement) pair. It
// keeps its own integral and derivative state and derives dt from its clock,
// so it must be stepped by exactly one caller.
type PID struct {
	cfg         PIDConfig
	clk         clock.Clock
	integral    float64
	prevError   float64
	lastUpdate  time.Time
	primed      bool
	outputLimit float64
}

// NewPID returns a PID controller with the given gains. A nil clk defaults to
// the wall clock; tests pass a mock clock to control dt.
func NewPID(cfg PIDConfig, clk clock.Clock) (*PID, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	limit := cfg.OutputLimit
	if limit == 0 {
		limit = 1.0
	}
	return &PID{cfg: cfg, clk: clk, outputLimit: limit}, nil
}

// Update computes the next controller output for the given setpoint and
// measurement. The first update primes the error state and applies only the
// proportional term.
func (p *PID) Update(setpoint, measurement float64) float64 {
	err := setpoint - measurement
	now := p.clk.Now()

	if !p.primed {
		p.prevError = err
		p.lastUpdate = now
		p.primed = true
		return utils.Clamp(p.cfg.Kp*err, -p.outputLimit, p.outputLimit)
	}

	dt := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	var i, d float64
	if dt > 0 {
		p.integral += err * dt
		if p.cfg.IntegralLimit > 0 {
			p.integral = utils.Clamp(p.integral, -p.cfg.IntegralLimit, p.cfg.IntegralLimit)
		}
		i = p.cfg.Ki * p.integral
		d = p.cfg.Kd * (err - p.prevError) / dt
	}
	p.prevError = err

	out := p.cfg.Kp*err + i + d
	if out > p.outputLimit {
		out = p.outputLimit
		// back-calculate so the integral does not keep winding against the clamp
		if p.cfg.Ki > 0 {
			p.integral = (out - p.cfg.Kp*err - d) / p.cfg.Ki
		}
	} else if out < -p.outputLimit {
		out = -p.outputLimit
		if p.cfg.Ki > 0 {
			p.integral = (out - p.cfg.Kp*err - d) / p.cfg.Ki
		}
	}
	return out
}

// Reset clears the integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
	p.lastUpdate = time.Time{}
	p.primed = false
}

// Integral returns the accumulated integral term, useful for diagnostics.
func (p *PID) Integral() float64 {
	return p.integral
}
