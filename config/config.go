// Package config loads the deployment configuration of a velocity control
// loop from a YAML file, with environment variable overrides.
package config

import (
	"os"

	"github.com/caarlos0/env"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/Roboost-Robotics/roboost-motor-control/components/encoder/incremental"
	canmotor "github.com/Roboost-Robotics/roboost-motor-control/components/motor/can"
	serialmotor "github.com/Roboost-Robotics/roboost-motor-control/components/motor/serial"
	"github.com/Roboost-Robotics/roboost-motor-control/control"
	"github.com/Roboost-Robotics/roboost-motor-control/velocity"
)

// Motor driver models selectable in config.
const (
	MotorModelFake   = "fake"
	MotorModelCAN    = "can"
	MotorModelSerial = "serial"
)

// Encoder models selectable in config.
const (
	EncoderModelFake        = "fake"
	EncoderModelIncremental = "incremental"
)

// Filter types selectable in config.
const (
	FilterLowPass       = "low_pass"
	FilterMovingAverage = "moving_average"
)

// MotorConfig selects and configures the motor driver.
type MotorConfig struct {
	Model  string              `yaml:"model" env:"MOTOR_MODEL"`
	CAN    *canmotor.Config    `yaml:"can,omitempty"`
	Serial *serialmotor.Config `yaml:"serial,omitempty"`
}

// EncoderConfig selects and configures the encoder.
type EncoderConfig struct {
	Model       string              `yaml:"model" env:"ENCODER_MODEL"`
	Incremental *incremental.Config `yaml:"incremental,omitempty"`
}

// FilterConfig describes one signal filter.
type FilterConfig struct {
	Type string `yaml:"type"`

	// CutoffFreqHz applies to low_pass filters.
	CutoffFreqHz float64 `yaml:"cutoff_freq_hz,omitempty"`

	// FilterSize applies to moving_average filters.
	FilterSize int `yaml:"filter_size,omitempty"`
}

// Build constructs the configured filter, discretized at the loop frequency.
func (fc *FilterConfig) Build(smpFreqHz float64) (control.Filter, error) {
	switch fc.Type {
	case FilterLowPass:
		return control.NewLowPass(fc.CutoffFreqHz, smpFreqHz)
	case FilterMovingAverage:
		return control.NewMovingAverage(fc.FilterSize)
	default:
		return nil, errors.Errorf("unsupported filter type %q", fc.Type)
	}
}

// RateLimiterConfig describes the setpoint slew limiter.
type RateLimiterConfig struct {
	// MaxRisePerUpdate and MaxFallPerUpdate bound the setpoint window around
	// the measurement, in rad/s per control step.
	MaxRisePerUpdate float64 `yaml:"max_rise_per_update"`
	MaxFallPerUpdate float64 `yaml:"max_fall_per_update"`
}

// Build constructs the configured slew limiter.
func (rc *RateLimiterConfig) Build() (control.RateLimiter, error) {
	return control.NewSlewLimiter(rc.MaxRisePerUpdate, rc.MaxFallPerUpdate)
}

// Config is the full deployment configuration of one velocity control loop.
type Config struct {
	Controller velocity.Config   `yaml:"controller"`
	PID        control.PIDConfig `yaml:"pid"`

	// InputFilter and OutputFilter are optional; absent means pass-through.
	InputFilter  *FilterConfig `yaml:"input_filter,omitempty"`
	OutputFilter *FilterConfig `yaml:"output_filter,omitempty"`

	// RateLimiter is optional; absent means the setpoint is not slew limited.
	RateLimiter *RateLimiterConfig `yaml:"rate_limiter,omitempty"`

	LoopFrequencyHz float64 `yaml:"loop_frequency_hz" env:"LOOP_FREQUENCY_HZ"`

	Motor   MotorConfig   `yaml:"motor"`
	Encoder EncoderConfig `yaml:"encoder"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if err := cfg.Controller.Validate(); err != nil {
		return err
	}
	if err := cfg.PID.Validate(); err != nil {
		return err
	}
	if cfg.LoopFrequencyHz <= 0 {
		return errors.Errorf("loop_frequency_hz should be positive, got %v", cfg.LoopFrequencyHz)
	}
	switch cfg.Motor.Model {
	case MotorModelFake:
	case MotorModelCAN:
		if cfg.Motor.CAN == nil {
			return errors.New("motor model can needs a can section")
		}
		if err := cfg.Motor.CAN.Validate("motor.can"); err != nil {
			return err
		}
	case MotorModelSerial:
		if cfg.Motor.Serial == nil {
			return errors.New("motor model serial needs a serial section")
		}
		if err := cfg.Motor.Serial.Validate("motor.serial"); err != nil {
			return err
		}
	default:
		return errors.Errorf("unsupported motor model %q", cfg.Motor.Model)
	}
	switch cfg.Encoder.Model {
	case EncoderModelFake:
	case EncoderModelIncremental:
		if cfg.Encoder.Incremental == nil {
			return errors.New("encoder model incremental needs an incremental section")
		}
		if err := cfg.Encoder.Incremental.Validate(); err != nil {
			return err
		}
	default:
		return errors.Errorf("unsupported encoder model %q", cfg.Encoder.Model)
	}
	return nil
}

// Read loads, overrides and validates the config at path.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", path)
	}
	return FromBytes(data)
}

// FromBytes parses and validates raw YAML config data.
func FromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "cannot apply environment overrides")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
