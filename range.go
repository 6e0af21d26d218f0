package vl53l0x

import (
	"errors"
	"fmt"
	"time"
)

// State is the state of the ranging engine.  Every state other than Idle is
// transient and only observable while Measure is running, the engine is back
// in Idle once Measure returns, including after a timeout.
type State uint8

const (
	Idle State = iota
	Triggered
	Waiting
	Ready
	TimedOut
)

// minRangeTimeout is the lower bound on the wait for a measurement
const minRangeTimeout = time.Second

// String implement Stringer interface for State
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Triggered:
		return "triggered"
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	case TimedOut:
		return "timed out"
	default:
		return "unknown state"
	}
}

// State returns the current state of the ranging engine, which is Idle
// between measurements
func (v *VL53L0X) State() State {
	return v.state
}

// rangeTimeout returns the wait for a measurement derived from the current
// timing budget
func (v *VL53L0X) rangeTimeout() time.Duration {

	timeout := time.Duration(v.timingBudget)*time.Microsecond + 100*time.Millisecond

	if timeout < minRangeTimeout {
		return minRangeTimeout
	}

	return timeout
}

// Measure performs a single-shot ranging measurement and returns the range in
// millimeters less the offset.  The result may be negative if the offset is
// larger than the reading, and out of range targets give large readings.  A
// measurement that does not complete within the timing budget derived
// deadline returns ErrTimeout and may be retried.
func (v *VL53L0X) Measure() (int, error) {

	defer func() {
		v.state = Idle
	}()

	if err := v.trigger(); err != nil {
		return 0, err
	}

	v.state = Waiting

	timeout := v.rangeTimeout()

	if err := v.poll(timeout, v.interruptReady); err != nil {
		if errors.Is(err, ErrTimeout) {
			v.state = TimedOut
			v.log.Printf("Ranging %s after %v", v.state, timeout)
			return 0, fmt.Errorf("waiting for measurement: %w", err)
		}
		return 0, err
	}

	v.state = Ready

	rangeMM, err := v.readReg16Bit(RESULT_RANGE_MM)

	if err != nil {
		return 0, err
	}

	if err := v.writeReg(SYSTEM_INTERRUPT_CLEAR, interruptClear); err != nil {
		return 0, err
	}

	return int(rangeMM) - v.offset, nil
}

// MeasureN takes n sequential measurements.  On error the samples taken so
// far are returned with it.
func (v *VL53L0X) MeasureN(n int) ([]int, error) {

	if n < 0 {
		return nil, ErrInvalidSamples
	}

	samples := make([]int, 0, n)

	for i := 0; i < n; i++ {
		mm, err := v.Measure()

		if err != nil {
			return samples, err
		}

		samples = append(samples, mm)
	}

	return samples, nil
}

// trigger restores the stop variable and starts a single-shot measurement
func (v *VL53L0X) trigger() error {

	err := v.writeRegs([]regValue{
		{regPowerMode, 0x01},
		{regPageSelect, 0x01},
		{regInternal00, 0x00},
		{regStopVariable, v.stopVariable},
		{regInternal00, 0x01},
		{regPageSelect, 0x00},
		{regPowerMode, 0x00},
	})

	if err != nil {
		return err
	}

	if err := v.writeReg(SYSRANGE_START, rangeStartBit); err != nil {
		return err
	}

	v.state = Triggered

	return nil
}
