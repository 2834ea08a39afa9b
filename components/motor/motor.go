// Package motor defines drivers that convert a signed PWM command into
// rotary motion.
package motor

import "context"

// A Driver is the hardware end of a control loop. It accepts a signed
// integer PWM command in [-pwmMax, +pwmMax] where pwmMax is the PWM
// resolution of the deployment.
type Driver interface {
	// SetMotorControl writes one command to the motor. Implementations for
	// realtime use must not block.
	SetMotorControl(ctx context.Context, cmd int32) error
}
