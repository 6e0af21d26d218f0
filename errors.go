package vl53l0x

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the sensor did not report the expected
	// status within the poll deadline
	ErrTimeout = errors.New("timeout")
	// ErrInvalidBudget is returned when a timing budget cannot cover the
	// overhead of the enabled sequence steps
	ErrInvalidBudget = errors.New("invalid timing budget")
	// ErrModelID is returned when the device does not identify as a VL53L0X
	ErrModelID = errors.New("unexpected model ID")
	// ErrInvalidSamples is returned for a negative sample count, or a
	// calibration asked for no samples
	ErrInvalidSamples = errors.New("invalid sample count")
	// ErrClosed is returned by any bus access after Close
	ErrClosed = errors.New("device closed")
)

// ProtocolError reports a failed register transfer.  The device should be
// considered unusable after one occurs during initialization.
type ProtocolError struct {
	Op  string
	Reg uint8
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s register 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
