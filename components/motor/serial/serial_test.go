package serial

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate("motor")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "serial_path")

	cfg = Config{TestChan: make(chan []byte)}
	test.That(t, cfg.Validate("motor"), test.ShouldBeNil)
}

func TestConfigValues(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
		err  string
	}{
		{"valid", Config{Address: 130, BaudRate: 9600, PWMResolution: 4096}, ""},
		{"default baud", Config{Address: 130, PWMResolution: 4096}, ""},
		{"low address", Config{Address: 100, BaudRate: 9600, PWMResolution: 4096}, "invalid address"},
		{"bad baud", Config{Address: 130, BaudRate: 1200, PWMResolution: 4096}, "invalid baud_rate"},
		{"no resolution", Config{Address: 130, BaudRate: 9600}, "pwm_resolution"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.populateDefaults()
			err := tc.cfg.validateValues()
			if tc.err == "" {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
				test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
			}
		})
	}
}

func TestDrivePacket(t *testing.T) {
	packet := drivePacket(130, -300)
	test.That(t, len(packet), test.ShouldEqual, 7)
	test.That(t, packet[0], test.ShouldEqual, byte(130))
	test.That(t, packet[1], test.ShouldEqual, byte(opDrive))
	// -300 little-endian
	test.That(t, packet[2], test.ShouldEqual, byte(0xd4))
	test.That(t, packet[3], test.ShouldEqual, byte(0xfe))
	test.That(t, packet[4], test.ShouldEqual, byte(0xff))
	test.That(t, packet[5], test.ShouldEqual, byte(0xff))

	var sum byte
	for _, b := range packet[:6] {
		sum += b
	}
	test.That(t, packet[6], test.ShouldEqual, sum&0x7f)
}

func TestSetMotorControl(t *testing.T) {
	logger := golog.NewTestLogger(t)
	testChan := make(chan []byte, 8)
	m, err := NewMotor(context.Background(), Config{
		Address:       128,
		PWMResolution: 4096,
		TestChan:      testChan,
	}, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, m.SetMotorControl(context.Background(), 2048), test.ShouldBeNil)
	packet := <-testChan
	test.That(t, packet, test.ShouldResemble, drivePacket(128, 2048))

	err = m.SetMotorControl(context.Background(), 5000)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "out of range")
	test.That(t, len(testChan), test.ShouldEqual, 0)
}
