package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestSign(t *testing.T) {
	test.That(t, Sign(3.2), test.ShouldEqual, 1.0)
	test.That(t, Sign(-0.001), test.ShouldEqual, -1.0)
	test.That(t, Sign(0), test.ShouldEqual, 0.0)
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(0.5, -1, 1), test.ShouldEqual, 0.5)
	test.That(t, Clamp(1.5, -1, 1), test.ShouldEqual, 1.0)
	test.That(t, Clamp(-1.5, -1, 1), test.ShouldEqual, -1.0)
}

func TestAbsInt32(t *testing.T) {
	test.That(t, AbsInt32(-7), test.ShouldEqual, int32(7))
	test.That(t, AbsInt32(7), test.ShouldEqual, int32(7))
	test.That(t, AbsInt32(0), test.ShouldEqual, int32(0))
}
