package vl53l0x

import (
	"fmt"
	"math/bits"
	"time"
)

const (
	// spadMapBytes is the size of the reference SPAD enable map
	spadMapBytes = 6
	// spadApertureStart is the first aperture SPAD in the reference map
	spadApertureStart = 12
	// spadTimeout bounds the wait for the SPAD info to become readable
	spadTimeout = 500 * time.Millisecond
)

// buildSpadMap returns a copy of refMap in which only the first count set bits
// at or above the aperture dependent start index remain enabled
func buildSpadMap(refMap [spadMapBytes]byte, count uint8, isAperture bool) [spadMapBytes]byte {

	first := 0

	if isAperture {
		first = spadApertureStart
	}

	var enabled uint8

	for i := 0; i < spadMapBytes*8; i++ {
		bit := byte(1) << (i % 8)

		if i < first || enabled == count {
			refMap[i/8] &^= bit
		} else if refMap[i/8]&bit != 0 {
			enabled++
		}
	}

	return refMap
}

// spadMapCount returns the number of enabled SPADs in the map
func spadMapCount(m [spadMapBytes]byte) int {

	n := 0

	for _, b := range m {
		n += bits.OnesCount8(b)
	}

	return n
}

// getSpadInfo reads the reference SPAD count and type from the sensor based on
// VL53L0X_get_info_from_device()
func (v *VL53L0X) getSpadInfo() (count uint8, isAperture bool, err error) {

	err = v.writeRegs([]regValue{
		{regPowerMode, 0x01},
		{regPageSelect, 0x01},
		{regInternal00, 0x00},
		{regPageSelect, 0x06},
	})

	if err != nil {
		return 0, false, err
	}

	status, err := v.readReg(regSpadStatus)

	if err != nil {
		return 0, false, err
	}

	err = v.writeRegs([]regValue{
		{regSpadStatus, status | 0x04},
		{regPageSelect, 0x07},
		{regSpadSelect, 0x01},
		{regPowerMode, 0x01},
		{regSpadTrigger, 0x6B},
		{regSpadStatus, 0x00},
	})

	if err != nil {
		return 0, false, err
	}

	err = v.poll(spadTimeout, func() (bool, error) {
		s, err := v.readReg(regSpadStatus)
		return s != 0x00, err
	})

	if err != nil {
		return 0, false, fmt.Errorf("waiting for SPAD info: %w", err)
	}

	if err := v.writeReg(regSpadStatus, 0x01); err != nil {
		return 0, false, err
	}

	tmp, err := v.readReg(regSpadInfo)

	if err != nil {
		return 0, false, err
	}

	count = tmp & spadCountMask
	isAperture = tmp&spadApertureBit != 0

	// restore registers
	err = v.writeRegs([]regValue{
		{regSpadSelect, 0x00},
		{regPageSelect, 0x06},
	})

	if err != nil {
		return 0, false, err
	}

	status, err = v.readReg(regSpadStatus)

	if err != nil {
		return 0, false, err
	}

	err = v.writeRegs([]regValue{
		{regSpadStatus, status &^ 0x04},
		{regPageSelect, 0x01},
		{regInternal00, 0x01},
		{regPageSelect, 0x00},
		{regPowerMode, 0x00},
	})

	if err != nil {
		return 0, false, err
	}

	return count, isAperture, nil
}

// setupSpads discovers the reference SPADs and writes back an enable map with
// exactly the reported number of SPADs enabled
func (v *VL53L0X) setupSpads() error {

	count, isAperture, err := v.getSpadInfo()

	if err != nil {
		return err
	}

	// The SPAD map (RefGoodSpadMap) is read by VL53L0X_get_info_from_device() in
	// the API, but the same data seems to be written to
	// GLOBAL_CONFIG_SPAD_ENABLES_REF_0 through _6, so read it from there
	raw, err := v.readMulti(GLOBAL_CONFIG_SPAD_ENABLES_REF_0, spadMapBytes)

	if err != nil {
		return err
	}

	var refMap [spadMapBytes]byte
	copy(refMap[:], raw)

	// set_reference_spads()
	err = v.writeRegs([]regValue{
		{regPageSelect, 0x01},
		{DYNAMIC_SPAD_REF_EN_START_OFFSET, 0x00},
		{DYNAMIC_SPAD_NUM_REQUESTED_REF_SPAD, spadRequestedRef},
		{regPageSelect, 0x00},
		{GLOBAL_CONFIG_REF_EN_START_SELECT, spadRefStartIndex},
	})

	if err != nil {
		return err
	}

	enableMap := buildSpadMap(refMap, count, isAperture)

	if err := v.writeMulti(GLOBAL_CONFIG_SPAD_ENABLES_REF_0, enableMap[:]); err != nil {
		return err
	}

	v.spad = spadInfo{
		count:      count,
		isAperture: isAperture,
		enableMap:  enableMap,
	}

	return nil
}
