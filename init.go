package vl53l0x

import (
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// refCalTimeout bounds each single reference calibration
const refCalTimeout = 2 * time.Second

// Init initializes the sensor using the sequence based on VL53L0X_DataInit(),
// VL53L0X_StaticInit() and VL53L0X_PerformRefCalibration().  A failure leaves
// the sensor unusable and it must be reinitialized.
func (v *VL53L0X) Init() error {

	if err := v.dataInit(); err != nil {
		return fmt.Errorf("Error on dataInit(), %w", err)
	}

	if err := v.staticInit(); err != nil {
		return fmt.Errorf("Error on staticInit(), %w", err)
	}

	if err := v.refCalibration(); err != nil {
		return fmt.Errorf("Error on refCalibration(), %w", err)
	}

	v.log.Printf("Init state: %s", spew.Sdump(struct {
		StopVariable uint8
		SpadCount    uint8
		IsAperture   bool
		EnableMap    [spadMapBytes]byte
		TimingBudget uint32
	}{
		v.stopVariable, v.spad.count, v.spad.isAperture, v.spad.enableMap,
		v.timingBudget,
	}))

	return nil
}

// dataInit implements VL53L0X_DataInit() from the ST API
func (v *VL53L0X) dataInit() error {

	// check model ID register (value specified in datasheet)
	model, err := v.readReg(IDENTIFICATION_MODEL_ID)

	if err != nil {
		return err
	}

	if model != ModelID {
		return fmt.Errorf("%w: 0x%02X", ErrModelID, model)
	}

	// sensor uses 1V8 mode for I/O by default; switch to 2V8 mode
	val, err := v.readReg(VHV_CONFIG_PAD_SCL_SDA_EXTSUP_HV)

	if err != nil {
		return err
	}

	if err := v.writeReg(VHV_CONFIG_PAD_SCL_SDA_EXTSUP_HV, val|0x01); err != nil {
		return err
	}

	// set I2C standard mode
	err = v.writeRegs([]regValue{
		{regI2CMode, 0x00},
		{regPowerMode, 0x01},
		{regPageSelect, 0x01},
		{regInternal00, 0x00},
	})

	if err != nil {
		return err
	}

	stop, err := v.readReg(regStopVariable)

	if err != nil {
		return err
	}

	v.stopVariable = stop

	err = v.writeRegs([]regValue{
		{regInternal00, 0x01},
		{regPageSelect, 0x00},
		{regPowerMode, 0x00},
	})

	if err != nil {
		return err
	}

	v.log.Printf("Stop variable 0x%02X", v.stopVariable)

	return v.configureSignalRateLimit()
}

// configureSignalRateLimit disables the MSRC and pre-range signal rate limit
// checks and sets the final range signal rate limit to 0.25 MCPS
func (v *VL53L0X) configureSignalRateLimit() error {

	ctrl, err := v.readReg(MSRC_CONFIG_CONTROL)

	if err != nil {
		return err
	}

	if err := v.writeReg(MSRC_CONFIG_CONTROL, ctrl|msrcRateLimitDisable); err != nil {
		return err
	}

	err = v.writeReg16Bit(FINAL_RANGE_CONFIG_MIN_COUNT_RATE_RTN_LIMIT, finalRangeMinSignalRate)

	if err != nil {
		return err
	}

	return v.writeReg(SYSTEM_SEQUENCE_CONFIG, sequenceAllSteps)
}

// staticInit implements VL53L0X_StaticInit() from the ST API
func (v *VL53L0X) staticInit() error {

	if err := v.setupSpads(); err != nil {
		return err
	}

	v.log.Printf("Reference SPADs configured, count %d aperture %t",
		v.spad.count, v.spad.isAperture)

	if err := v.writeRegs(tuningSettings); err != nil {
		return err
	}

	return v.configureInterrupt()
}

// configureInterrupt sets the GPIO interrupt to fire on a new sample with an
// active low output and clears any pending interrupt
func (v *VL53L0X) configureInterrupt() error {

	if err := v.writeReg(SYSTEM_INTERRUPT_CONFIG_GPIO, interruptNewSample); err != nil {
		return err
	}

	mux, err := v.readReg(GPIO_HV_MUX_ACTIVE_HIGH)

	if err != nil {
		return err
	}

	if err := v.writeReg(GPIO_HV_MUX_ACTIVE_HIGH, mux&^gpioActiveHighBit); err != nil {
		return err
	}

	return v.writeReg(SYSTEM_INTERRUPT_CLEAR, interruptClear)
}

// refCalibration reapplies the default timing budget and runs the VHV and
// phase reference calibrations
func (v *VL53L0X) refCalibration() error {

	budget, err := v.GetTimingBudget()

	if err != nil {
		return err
	}

	v.log.Printf("Default timing budget %dus", budget)

	if _, err := v.SetTimingBudget(budget); err != nil {
		return err
	}

	// disable MSRC and TCC, the timing budget depends on the enabled steps
	// so recalculate it
	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, sequenceDefaultSteps); err != nil {
		return err
	}

	if _, err := v.SetTimingBudget(budget); err != nil {
		return err
	}

	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, sequenceVHVCal); err != nil {
		return err
	}

	if err := v.singleRefCalibration(vhvCalInitByte); err != nil {
		return fmt.Errorf("VHV calibration: %w", err)
	}

	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, sequencePhaseCal); err != nil {
		return err
	}

	if err := v.singleRefCalibration(phaseInitByte); err != nil {
		return fmt.Errorf("phase calibration: %w", err)
	}

	// restore the previous sequence config
	return v.writeReg(SYSTEM_SEQUENCE_CONFIG, sequenceDefaultSteps)
}

// singleRefCalibration based on VL53L0X_perform_single_ref_calibration()
func (v *VL53L0X) singleRefCalibration(vhvInitByte uint8) error {

	if err := v.writeReg(SYSRANGE_START, rangeStartBit|vhvInitByte); err != nil {
		return err
	}

	if err := v.poll(refCalTimeout, v.interruptReady); err != nil {
		return err
	}

	if err := v.writeReg(SYSTEM_INTERRUPT_CLEAR, interruptClear); err != nil {
		return err
	}

	return v.writeReg(SYSRANGE_START, 0x00)
}

// interruptReady checks if the sensor has raised its result interrupt
func (v *VL53L0X) interruptReady() (bool, error) {

	status, err := v.readReg(RESULT_INTERRUPT_STATUS)

	if err != nil {
		return false, err
	}

	return status&interruptMask != 0, nil
}
