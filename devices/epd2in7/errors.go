package epd2in7

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when a bitmap or buffer does not fit
	// the panel geometry. Nothing is sent to the controller in that case.
	ErrDimensionMismatch = errors.New("epd2in7: dimension mismatch")

	// ErrNotReady is returned when an operation is attempted while the
	// controller is not idle, e.g. before Init or after Sleep.
	ErrNotReady = errors.New("epd2in7: controller not ready")

	// ErrControllerUnresponsive is returned when the busy line did not clear
	// within Opts.BusyTimeout. The controller has been reset.
	ErrControllerUnresponsive = errors.New("epd2in7: controller unresponsive")
)

// BusError is a failure of the underlying SPI or GPIO transport. The protocol
// framing is lost after one; only Init recovers.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("epd2in7: %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}
