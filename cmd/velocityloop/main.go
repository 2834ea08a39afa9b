// Package main runs one closed-loop velocity controller from a config file.
// With the fake motor and encoder models it closes the loop over a simple
// first order simulated plant, which is handy for gain tuning dry runs.
package main

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/Roboost-Robotics/roboost-motor-control/components/encoder"
	fakeencoder "github.com/Roboost-Robotics/roboost-motor-control/components/encoder/fake"
	"github.com/Roboost-Robotics/roboost-motor-control/components/encoder/incremental"
	"github.com/Roboost-Robotics/roboost-motor-control/components/motor"
	canmotor "github.com/Roboost-Robotics/roboost-motor-control/components/motor/can"
	fakemotor "github.com/Roboost-Robotics/roboost-motor-control/components/motor/fake"
	serialmotor "github.com/Roboost-Robotics/roboost-motor-control/components/motor/serial"
	"github.com/Roboost-Robotics/roboost-motor-control/config"
	"github.com/Roboost-Robotics/roboost-motor-control/control"
	"github.com/Roboost-Robotics/roboost-motor-control/velocity"
)

var logger = golog.NewDevelopmentLogger("velocityloop")

// simMaxVelocity is the steady state plant velocity at full PWM, rad/s.
const simMaxVelocity = 10.0

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string  `flag:"config,usage=path to YAML config file"`
	Target     float64 `flag:"target,usage=target angular velocity in rad/s"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) (err error) {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.ConfigFile == "" {
		return errors.New("a config file is required")
	}

	cfg, err := config.Read(argsParsed.ConfigFile)
	if err != nil {
		return err
	}

	drv, closeDrv, err := buildMotor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, closeDrv())
	}()

	enc, err := buildEncoder(cfg, logger)
	if err != nil {
		return err
	}

	pid, err := control.NewPID(cfg.PID, nil)
	if err != nil {
		return err
	}

	deps := velocity.Deps{Motor: drv, Encoder: enc, PID: pid}
	if cfg.InputFilter != nil {
		if deps.InputFilter, err = cfg.InputFilter.Build(cfg.LoopFrequencyHz); err != nil {
			return err
		}
	}
	if cfg.OutputFilter != nil {
		if deps.OutputFilter, err = cfg.OutputFilter.Build(cfg.LoopFrequencyHz); err != nil {
			return err
		}
	}
	if cfg.RateLimiter != nil {
		if deps.RateLimiter, err = cfg.RateLimiter.Build(); err != nil {
			return err
		}
	}

	ctrl, err := velocity.NewController(cfg.Controller, deps, logger)
	if err != nil {
		return err
	}

	sim := plantSimulator(cfg, drv, enc)
	target := argsParsed.Target
	loop, err := control.NewLoop(logger, cfg.LoopFrequencyHz, func(ctx context.Context) error {
		if sim != nil {
			sim()
		}
		return ctrl.SetTarget(ctx, target)
	})
	if err != nil {
		return err
	}
	if err := loop.Start(); err != nil {
		return err
	}
	defer loop.Stop()

	utils.ContextMainReadyFunc(ctx)()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		if !utils.SelectContextOrWaitChan(ctx, ticker.C) {
			return nil
		}
		logger.Infow("loop state",
			"target", target,
			"setpoint", ctrl.Setpoint(),
			"measurement", ctrl.Measurement(),
		)
	}
}

func buildMotor(ctx context.Context, cfg *config.Config, logger golog.Logger) (motor.Driver, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Motor.Model {
	case config.MotorModelFake:
		m, err := fakemotor.NewMotor(cfg.Controller.PWMResolution, logger)
		return m, noClose, err
	case config.MotorModelCAN:
		m, err := canmotor.NewMotor(ctx, *cfg.Motor.CAN, logger)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	case config.MotorModelSerial:
		m, err := serialmotor.NewMotor(ctx, *cfg.Motor.Serial, logger)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	default:
		return nil, nil, errors.Errorf("unsupported motor model %q", cfg.Motor.Model)
	}
}

func buildEncoder(cfg *config.Config, logger golog.Logger) (encoder.Encoder, error) {
	switch cfg.Encoder.Model {
	case config.EncoderModelFake:
		return fakeencoder.NewEncoder(), nil
	case config.EncoderModelIncremental:
		return incremental.NewEncoder(*cfg.Encoder.Incremental, nil, logger)
	default:
		return nil, errors.Errorf("unsupported encoder model %q", cfg.Encoder.Model)
	}
}

// plantSimulator returns a step function driving the fake encoder toward the
// fake motor's last command, or nil when real hardware is configured.
func plantSimulator(cfg *config.Config, drv motor.Driver, enc encoder.Encoder) func() {
	fm, ok := drv.(*fakemotor.Motor)
	if !ok {
		return nil
	}
	fe, ok := enc.(*fakeencoder.Encoder)
	if !ok {
		return nil
	}
	var vel float64
	pwmMax := float64(cfg.Controller.PWMResolution)
	return func() {
		goal := float64(fm.LastCommand()) / pwmMax * simMaxVelocity
		vel += 0.2 * (goal - vel)
		fe.SetVelocity(vel)
	}
}
