package vl53l0x

import "fmt"

// Timing budget overheads in microseconds from
// VL53L0X_get_measurement_timing_budget_micro_seconds()
const (
	startOverhead      uint32 = 1910
	preRangeOverhead   uint32 = 660
	finalRangeOverhead uint32 = 550
)

// sequenceTimeouts holds the enabled steps and timeouts of the pre-range and
// final range sequence steps
type sequenceTimeouts struct {
	preRange   bool
	finalRange bool

	preRangeVcselPclks uint32
	preRangeMclks      uint32
	preRangeUs         uint32

	finalRangeVcselPclks uint32
	// finalRangeMclks excludes the pre-range MCLKs
	finalRangeMclks uint32
	finalRangeUs    uint32
}

// getSequenceTimeouts reads the sequence step enables and decodes the
// timeouts of the enabled steps based on get_sequence_step_timeout()
func (v *VL53L0X) getSequenceTimeouts() (sequenceTimeouts, error) {

	var st sequenceTimeouts

	enables, err := v.readReg(SYSTEM_SEQUENCE_CONFIG)

	if err != nil {
		return st, err
	}

	st.preRange = enables&sequenceEnablePreRange != 0
	st.finalRange = enables&sequenceEnableFinalRange != 0

	if st.preRange {
		period, err := v.readReg(PRE_RANGE_CONFIG_VCSEL_PERIOD)

		if err != nil {
			return st, err
		}

		encoded, err := v.readReg16Bit(PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI)

		if err != nil {
			return st, err
		}

		st.preRangeVcselPclks = decodeVcselPeriod(period)
		st.preRangeMclks = decodeTimeout(encoded)
		st.preRangeUs = timeoutMclksToUs(st.preRangeMclks, st.preRangeVcselPclks)
	}

	if st.finalRange {
		period, err := v.readReg(FINAL_RANGE_CONFIG_VCSEL_PERIOD)

		if err != nil {
			return st, err
		}

		encoded, err := v.readReg16Bit(FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI)

		if err != nil {
			return st, err
		}

		st.finalRangeVcselPclks = decodeVcselPeriod(period)
		st.finalRangeMclks = decodeTimeout(encoded)

		// the final range timeout includes the pre-range timeout
		if st.preRange {
			if st.finalRangeMclks > st.preRangeMclks {
				st.finalRangeMclks -= st.preRangeMclks
			} else {
				st.finalRangeMclks = 0
			}
		}

		st.finalRangeUs = timeoutMclksToUs(st.finalRangeMclks, st.finalRangeVcselPclks)
	}

	return st, nil
}

// GetTimingBudget returns the measurement timing budget in microseconds
// derived from the sensor registers
func (v *VL53L0X) GetTimingBudget() (uint32, error) {

	st, err := v.getSequenceTimeouts()

	if err != nil {
		return 0, err
	}

	budgetUs := startOverhead

	if st.preRange {
		budgetUs += st.preRangeUs + preRangeOverhead
	}

	if st.finalRange {
		budgetUs += st.finalRangeUs + finalRangeOverhead
	}

	return budgetUs, nil
}

// SetTimingBudget sets the measurement timing budget in microseconds, which is
// the time allowed for sensor to take one measurement.  The budget is applied
// to the final range step, if that step is disabled nothing is written and
// false is returned.  A budget too small for the enabled steps fails with
// ErrInvalidBudget.
func (v *VL53L0X) SetTimingBudget(budgetUs uint32) (bool, error) {

	st, err := v.getSequenceTimeouts()

	if err != nil {
		return false, err
	}

	usedUs := startOverhead

	if st.preRange {
		usedUs += st.preRangeUs + preRangeOverhead
	}

	if !st.finalRange {
		return false, nil
	}

	if budgetUs <= usedUs+finalRangeOverhead {
		return false, fmt.Errorf("%w: %dus does not exceed %dus overhead",
			ErrInvalidBudget, budgetUs, usedUs+finalRangeOverhead)
	}

	finalRangeUs := budgetUs - usedUs - finalRangeOverhead
	finalRangeMclks := timeoutUsToMclks(finalRangeUs, st.finalRangeVcselPclks)

	// the final range timeout register includes the pre-range timeout
	if st.preRange {
		finalRangeMclks += st.preRangeMclks
	}

	err = v.writeReg16Bit(FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI, encodeTimeout(finalRangeMclks))

	if err != nil {
		return false, err
	}

	v.timingBudget = budgetUs
	v.log.Printf("Timing budget set to %dus", budgetUs)

	return true, nil
}
