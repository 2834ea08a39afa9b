// Package fake implements a fake motor driver useful for testing control
// code without hardware.
package fake

import (
	"context"
	"sync"

	"github.com/edaniels/golog"

	"github.com/Roboost-Robotics/roboost-motor-control/components/motor"
	"github.com/Roboost-Robotics/roboost-motor-control/utils"
)

// Motor is a fake motor driver that records every command written to it.
type Motor struct {
	mu      sync.Mutex
	pwmMax  int32
	lastCmd int32
	cmds    []int32
	setErr  error
	logger  golog.Logger
}

// NewMotor returns a fake driver with the given PWM resolution.
func NewMotor(pwmMax int32, logger golog.Logger) (*Motor, error) {
	if pwmMax <= 0 {
		return nil, motor.NewZeroPWMResolutionError("fake")
	}
	return &Motor{pwmMax: pwmMax, logger: logger}, nil
}

// SetMotorControl records the command, rejecting values outside the PWM range.
func (m *Motor) SetMotorControl(_ context.Context, cmd int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if utils.AbsInt32(cmd) > m.pwmMax {
		return motor.NewOutOfRangeError(cmd, m.pwmMax)
	}
	m.lastCmd = cmd
	m.cmds = append(m.cmds, cmd)
	return nil
}

// LastCommand returns the most recent command written.
func (m *Motor) LastCommand() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCmd
}

// Commands returns a copy of every command written, in order.
func (m *Motor) Commands() []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int32, len(m.cmds))
	copy(out, m.cmds)
	return out
}

// InjectError makes every subsequent write fail with err. Pass nil to heal.
func (m *Motor) InjectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}
