package motor

import "github.com/pkg/errors"

// NewOutOfRangeError returns a standard error for a command outside the
// driver's PWM range.
func NewOutOfRangeError(cmd, pwmMax int32) error {
	return errors.Errorf("motor command %d out of range [-%d, %d]", cmd, pwmMax, pwmMax)
}

// NewZeroPWMResolutionError returns a standard error for a driver configured
// without a PWM resolution.
func NewZeroPWMResolutionError(name string) error {
	return errors.Errorf("motor driver %s needs a positive pwm resolution", name)
}
