// Package can implements a motor driver that transmits PWM commands as CAN
// frames over a SocketCAN interface.
package can

import (
	"context"
	"encoding/binary"
	"net"
	"sync"

	"github.com/edaniels/golog"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
	goutils "go.viam.com/utils"

	"github.com/Roboost-Robotics/roboost-motor-control/components/motor"
	"github.com/Roboost-Robotics/roboost-motor-control/utils"
)

// Config describes how to reach the motor controller on the CAN bus.
type Config struct {
	// Interface is the SocketCAN network interface, e.g. "can0".
	Interface string `json:"interface" yaml:"interface"`

	// FrameID is the arbitration ID the controller listens on.
	FrameID uint32 `json:"frame_id" yaml:"frame_id"`

	// PWMResolution is the absolute range of the command channel.
	PWMResolution int32 `json:"pwm_resolution" yaml:"pwm_resolution"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Interface == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "interface")
	}
	if cfg.FrameID == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "frame_id")
	}
	if cfg.PWMResolution <= 0 {
		return goutils.NewConfigValidationError(path, motor.NewZeroPWMResolutionError("can"))
	}
	return nil
}

// Motor is a motor driver on a SocketCAN bus. Commands are written as a
// single frame carrying the signed command, little-endian.
type Motor struct {
	mu     sync.Mutex
	cfg    Config
	conn   net.Conn
	tx     *socketcan.Transmitter
	logger golog.Logger
}

// NewMotor dials the configured SocketCAN interface and returns the driver.
func NewMotor(ctx context.Context, cfg Config, logger golog.Logger) (*Motor, error) {
	if err := cfg.Validate("motor"); err != nil {
		return nil, err
	}
	conn, err := socketcan.DialContext(ctx, "can", cfg.Interface)
	if err != nil {
		return nil, err
	}
	return &Motor{
		cfg:    cfg,
		conn:   conn,
		tx:     socketcan.NewTransmitter(conn),
		logger: logger,
	}, nil
}

// SetMotorControl transmits one command frame.
func (m *Motor) SetMotorControl(ctx context.Context, cmd int32) error {
	if utils.AbsInt32(cmd) > m.cfg.PWMResolution {
		return motor.NewOutOfRangeError(cmd, m.cfg.PWMResolution)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx.TransmitFrame(ctx, commandFrame(m.cfg.FrameID, cmd))
}

// Close releases the bus connection.
func (m *Motor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

// commandFrame encodes a signed command into a 4 byte little-endian frame.
func commandFrame(id uint32, cmd int32) can.Frame {
	var f can.Frame
	f.ID = id
	f.Length = 4
	binary.LittleEndian.PutUint32(f.Data[:4], uint32(cmd))
	return f
}
