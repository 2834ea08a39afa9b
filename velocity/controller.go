// Package velocity implements a closed-loop velocity motor controller. On
// each step it samples an encoder, rate limits the commanded setpoint,
// computes a corrective command through a PID law, conditions the command
// and writes it to a motor driver as a signed PWM value.
package velocity

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/Roboost-Robotics/roboost-motor-control/components/encoder"
	"github.com/Roboost-Robotics/roboost-motor-control/components/motor"
	"github.com/Roboost-Robotics/roboost-motor-control/control"
	"github.com/Roboost-Robotics/roboost-motor-control/utils"
)

// Config holds the construction-time constants of a controller. The deadband
// and minimum output are expressed in PWM counts and must satisfy
// 0 <= DeadbandThreshold <= MinimumOutput <= PWMResolution.
type Config struct {
	// PWMResolution is the absolute integer range of the driver command.
	PWMResolution int32 `json:"pwm_resolution" yaml:"pwm_resolution"`

	// DeadbandThreshold is the command magnitude below which the output is
	// forced to zero, suppressing jitter around standstill.
	DeadbandThreshold int32 `json:"deadband_threshold" yaml:"deadband_threshold"`

	// MinimumOutput is the smallest nonzero command magnitude the motor can
	// usefully produce; smaller nonzero commands are boosted to this floor
	// to overcome static friction.
	MinimumOutput int32 `json:"minimum_output" yaml:"minimum_output"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.PWMResolution <= 0 {
		return errors.Errorf("velocity controller needs a positive pwm_resolution, got %d", cfg.PWMResolution)
	}
	if cfg.DeadbandThreshold < 0 {
		return errors.Errorf("velocity controller deadband_threshold should be non-negative, got %d", cfg.DeadbandThreshold)
	}
	if cfg.MinimumOutput < cfg.DeadbandThreshold {
		return errors.Errorf("velocity controller minimum_output %d should be at least the deadband_threshold %d",
			cfg.MinimumOutput, cfg.DeadbandThreshold)
	}
	if cfg.MinimumOutput > cfg.PWMResolution {
		return errors.Errorf("velocity controller minimum_output %d exceeds pwm_resolution %d",
			cfg.MinimumOutput, cfg.PWMResolution)
	}
	return nil
}

// Deps holds the collaborators composed into the feedback loop. They are
// borrowed: the caller guarantees they outlive the controller and the
// controller never closes them. Motor, Encoder and PID are required;
// nil filters and a nil rate limiter default to pass-through.
type Deps struct {
	Motor        motor.Driver
	Encoder      encoder.Encoder
	PID          control.Controller
	InputFilter  control.Filter
	OutputFilter control.Filter
	RateLimiter  control.RateLimiter
}

func (d *Deps) populateDefaults() {
	if d.InputFilter == nil {
		d.InputFilter = control.PassThrough{}
	}
	if d.OutputFilter == nil {
		d.OutputFilter = control.PassThrough{}
	}
	if d.RateLimiter == nil {
		d.RateLimiter = control.PassThroughLimiter{}
	}
}

func (d *Deps) validate() error {
	if d.Motor == nil {
		return errors.New("velocity controller needs a motor driver")
	}
	if d.Encoder == nil {
		return errors.New("velocity controller needs an encoder")
	}
	if d.PID == nil {
		return errors.New("velocity controller needs a pid controller")
	}
	return nil
}

// Controller closes the loop between one encoder and one motor driver. It is
// meant to be stepped by a single periodic task and holds no locks; callers
// sharing collaborators across controllers must serialize steps externally.
type Controller struct {
	logger golog.Logger

	driver       motor.Driver
	enc          encoder.Encoder
	pid          control.Controller
	inputFilter  control.Filter
	outputFilter control.Filter
	limiter      control.RateLimiter

	pwmMax int32
	// thresholds as fractions of the PWM range, comparable against the
	// conditioned PID output
	deadband  float64
	minOutput float64

	setpoint float64
}

// NewController validates the config and composes the collaborators.
func NewController(cfg Config, deps Deps, logger golog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps.populateDefaults()
	return &Controller{
		logger:       logger,
		driver:       deps.Motor,
		enc:          deps.Encoder,
		pid:          deps.PID,
		inputFilter:  deps.InputFilter,
		outputFilter: deps.OutputFilter,
		limiter:      deps.RateLimiter,
		pwmMax:       cfg.PWMResolution,
		deadband:     float64(cfg.DeadbandThreshold) / float64(cfg.PWMResolution),
		minOutput:    float64(cfg.MinimumOutput) / float64(cfg.PWMResolution),
	}, nil
}

// SetTarget executes one control step toward the desired angular velocity in
// rad/s, writing exactly one command to the driver on success. Collaborator
// errors propagate unchanged and abort the step before the driver write.
func (c *Controller) SetTarget(ctx context.Context, desired float64) error {
	if err := c.enc.Update(ctx); err != nil {
		return err
	}
	y := c.enc.Velocity()
	y = c.inputFilter.Update(y)

	r := c.limiter.Update(desired, y)
	c.setpoint = r

	u := c.pid.Update(r, y)
	u = c.outputFilter.Update(u)

	if math.IsNaN(u) || math.IsInf(u, 0) {
		return errors.Errorf("non-finite control output %v for setpoint %v", u, r)
	}

	switch mag := math.Abs(u); {
	case mag < c.deadband:
		u = 0
	case mag < c.minOutput:
		u = utils.Sign(u) * c.minOutput
	}

	// clamp in float space; converting a float64 past the int32 range is
	// implementation defined, and the conversion truncates toward zero
	u = utils.Clamp(u, -1, 1)
	cmd := int32(u * float64(c.pwmMax))

	return c.driver.SetMotorControl(ctx, cmd)
}

// Measurement returns the encoder's current reported angular velocity in
// rad/s. It does not resample the encoder.
func (c *Controller) Measurement() float64 {
	return c.enc.Velocity()
}

// Setpoint returns the rate-limited setpoint of the most recent step, zero
// before the first step.
func (c *Controller) Setpoint() float64 {
	return c.setpoint
}
