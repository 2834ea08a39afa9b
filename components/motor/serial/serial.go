// Package serial implements a packet-serial motor driver. The controller is
// addressed on a shared UART bus and each command is a checksummed packet.
package serial

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/edaniels/golog"
	"github.com/jacobsa/go-serial/serial"
	goutils "go.viam.com/utils"

	"github.com/Roboost-Robotics/roboost-motor-control/components/motor"
	"github.com/Roboost-Robotics/roboost-motor-control/utils"
)

// opDrive commands a signed velocity on the addressed controller.
const opDrive = 0x07

var validBaudRates = []uint{115200, 38400, 19200, 9600, 2400}

// Config describes the serial link to the motor controller.
type Config struct {
	// SerialPath is the path to the /dev/ttyXXXX file.
	SerialPath string `json:"serial_path" yaml:"serial_path"`

	// BaudRate of the controller, default 9600.
	BaudRate int `json:"serial_baud_rate,omitempty" yaml:"serial_baud_rate,omitempty"`

	// Address of the controller on the bus. Valid values are 128-135.
	Address int `json:"serial_address" yaml:"serial_address"`

	// PWMResolution is the absolute range of the command channel.
	PWMResolution int32 `json:"pwm_resolution" yaml:"pwm_resolution"`

	// TestChan is a fake "serial" path for test use only.
	TestChan chan []byte `json:"-" yaml:"-"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.SerialPath == "" && cfg.TestChan == nil {
		return goutils.NewConfigValidationFieldRequiredError(path, "serial_path")
	}
	return nil
}

func (cfg *Config) populateDefaults() {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600
	}
}

func (cfg *Config) validateValues() error {
	var errs []string
	if cfg.Address < 128 || cfg.Address > 135 {
		errs = append(errs, "invalid address, acceptable values are 128 thru 135")
	}
	valid := false
	for _, b := range validBaudRates {
		if uint(cfg.BaudRate) == b {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, fmt.Sprintf("invalid baud_rate, acceptable values are %v", validBaudRates))
	}
	if cfg.PWMResolution <= 0 {
		errs = append(errs, "invalid pwm_resolution, should be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("error validating serial motor config: %s", strings.Join(errs, "\r\n"))
	}
	return nil
}

// Motor is a single motor controller on a serial bus.
type Motor struct {
	mu       sync.Mutex
	cfg      Config
	port     io.ReadWriteCloser
	testChan chan []byte
	logger   golog.Logger
}

// NewMotor opens the serial port and returns the driver.
func NewMotor(_ context.Context, cfg Config, logger golog.Logger) (*Motor, error) {
	cfg.populateDefaults()
	if err := cfg.Validate("motor"); err != nil {
		return nil, err
	}
	if err := cfg.validateValues(); err != nil {
		return nil, err
	}

	m := &Motor{cfg: cfg, logger: logger}
	if cfg.TestChan != nil {
		m.testChan = cfg.TestChan
		return m, nil
	}

	options := serial.OpenOptions{
		PortName:        cfg.SerialPath,
		BaudRate:        uint(cfg.BaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}
	port, err := serial.Open(options)
	if err != nil {
		return nil, err
	}
	m.port = port
	return m, nil
}

// SetMotorControl writes one drive packet to the bus.
func (m *Motor) SetMotorControl(_ context.Context, cmd int32) error {
	if utils.AbsInt32(cmd) > m.cfg.PWMResolution {
		return motor.NewOutOfRangeError(cmd, m.cfg.PWMResolution)
	}
	packet := drivePacket(byte(m.cfg.Address), cmd)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.testChan != nil {
		m.testChan <- packet
		return nil
	}
	_, err := m.port.Write(packet)
	return err
}

// Close releases the serial port.
func (m *Motor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port = nil
	return err
}

// drivePacket frames a signed command as
// [address, opcode, cmd[0..3] little-endian, checksum] where the checksum is
// the 7 bit sum of all preceding bytes.
func drivePacket(address byte, cmd int32) []byte {
	packet := []byte{
		address,
		opDrive,
		byte(cmd),
		byte(cmd >> 8),
		byte(cmd >> 16),
		byte(cmd >> 24),
		0,
	}
	var sum byte
	for _, b := range packet[:6] {
		sum += b
	}
	packet[6] = sum & 0x7f
	return packet
}
