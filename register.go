package vl53l0x

import "io"

const (
	// Range start and sequence control
	SYSRANGE_START         uint8 = 0x00
	SYSTEM_SEQUENCE_CONFIG uint8 = 0x01

	// Interrupt configuration
	SYSTEM_INTERRUPT_CONFIG_GPIO uint8 = 0x0A
	SYSTEM_INTERRUPT_CLEAR       uint8 = 0x0B
	GPIO_HV_MUX_ACTIVE_HIGH      uint8 = 0x84

	// Result registers
	RESULT_INTERRUPT_STATUS uint8 = 0x13
	RESULT_RANGE_STATUS     uint8 = 0x14
	// range in millimeters is the word at RESULT_RANGE_STATUS + 10
	RESULT_RANGE_MM uint8 = RESULT_RANGE_STATUS + 0x0A

	// Signal rate limits
	MSRC_CONFIG_CONTROL                         uint8 = 0x60
	FINAL_RANGE_CONFIG_MIN_COUNT_RATE_RTN_LIMIT uint8 = 0x44

	// Sequence step timing
	PRE_RANGE_CONFIG_VCSEL_PERIOD        uint8 = 0x50
	PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI   uint8 = 0x51
	FINAL_RANGE_CONFIG_VCSEL_PERIOD      uint8 = 0x70
	FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI uint8 = 0x71

	// Reference SPAD configuration
	GLOBAL_CONFIG_SPAD_ENABLES_REF_0    uint8 = 0xB0
	GLOBAL_CONFIG_REF_EN_START_SELECT   uint8 = 0xB6
	DYNAMIC_SPAD_NUM_REQUESTED_REF_SPAD uint8 = 0x4E
	DYNAMIC_SPAD_REF_EN_START_OFFSET    uint8 = 0x4F

	// I/O voltage selection register
	VHV_CONFIG_PAD_SCL_SDA_EXTSUP_HV uint8 = 0x89

	// Identification
	IDENTIFICATION_MODEL_ID uint8 = 0xC0
)

// Undocumented registers used by the ST API during init and ranging
const (
	regPowerMode    uint8 = 0x80
	regPageSelect   uint8 = 0xFF
	regInternal00   uint8 = 0x00
	regI2CMode      uint8 = 0x88
	regStopVariable uint8 = 0x91
	regSpadInfo     uint8 = 0x92
	regSpadStatus   uint8 = 0x83
	regSpadTrigger  uint8 = 0x94
	regSpadSelect   uint8 = 0x81
)

// Register values
const (
	sequenceAllSteps     uint8 = 0xFF
	sequenceDefaultSteps uint8 = 0xE8
	sequenceVHVCal       uint8 = 0x01
	sequencePhaseCal     uint8 = 0x02

	sequenceEnablePreRange   uint8 = 0x40
	sequenceEnableFinalRange uint8 = 0x80

	rangeStartBit  uint8 = 0x01
	vhvCalInitByte uint8 = 0x40
	phaseInitByte  uint8 = 0x00

	interruptMask      uint8 = 0x07
	interruptNewSample uint8 = 0x04
	interruptClear     uint8 = 0x01
	gpioActiveHighBit  uint8 = 0x10

	// disables SIGNAL_RATE_MSRC (bit 1) and SIGNAL_RATE_PRE_RANGE (bit 4)
	// limit checks
	msrcRateLimitDisable uint8 = 0x12
	// 0.25 MCPS in 9.7 fixed point
	finalRangeMinSignalRate uint16 = 0x0020

	spadCountMask     uint8 = 0x7F
	spadApertureBit   uint8 = 0x80
	spadRequestedRef  uint8 = 0x2C
	spadRefStartIndex uint8 = 0xB4
)

// regValue is a single register write in a fixed sequence
type regValue struct {
	reg uint8
	val uint8
}

// tuningSettings are the default tuning settings from the ST API
// (vl53l0x_tuning.h).  Order matters, the 0xFF writes select a page.
var tuningSettings = []regValue{
	{0xFF, 0x01}, {0x00, 0x00},

	{0xFF, 0x00}, {0x09, 0x00}, {0x10, 0x00}, {0x11, 0x00},

	{0x24, 0x01}, {0x25, 0xFF}, {0x75, 0x00},

	{0xFF, 0x01}, {0x4E, 0x2C}, {0x48, 0x00}, {0x30, 0x20},

	{0xFF, 0x00}, {0x30, 0x09}, {0x54, 0x00}, {0x31, 0x04}, {0x32, 0x03},
	{0x40, 0x83}, {0x46, 0x25}, {0x60, 0x00}, {0x27, 0x00}, {0x50, 0x06},
	{0x51, 0x00}, {0x52, 0x96}, {0x56, 0x08}, {0x57, 0x30}, {0x61, 0x00},
	{0x62, 0x00}, {0x64, 0x00}, {0x65, 0x00}, {0x66, 0xA0},

	{0xFF, 0x01}, {0x22, 0x32}, {0x47, 0x14}, {0x49, 0xFF}, {0x4A, 0x00},

	{0xFF, 0x00}, {0x7A, 0x0A}, {0x7B, 0x00}, {0x78, 0x21},

	{0xFF, 0x01}, {0x23, 0x34}, {0x42, 0x00}, {0x44, 0xFF}, {0x45, 0x26},
	{0x46, 0x05}, {0x40, 0x40}, {0x0E, 0x06}, {0x20, 0x1A}, {0x43, 0x40},

	{0xFF, 0x00}, {0x34, 0x03}, {0x35, 0x44},

	{0xFF, 0x01}, {0x31, 0x04}, {0x4B, 0x09}, {0x4C, 0x05}, {0x4D, 0x04},

	{0xFF, 0x00}, {0x44, 0x00}, {0x45, 0x20}, {0x47, 0x08}, {0x48, 0x28},
	{0x67, 0x00}, {0x70, 0x04}, {0x71, 0x01}, {0x72, 0xFE}, {0x76, 0x00},
	{0x77, 0x00},

	{0xFF, 0x01}, {0x0D, 0x01},

	{0xFF, 0x00}, {0x80, 0x01}, {0x01, 0xF8},

	{0xFF, 0x01}, {0x8E, 0x01}, {0x00, 0x01}, {0xFF, 0x00}, {0x80, 0x00},
}

// writeReg writes a 8 bit value to the register
func (v *VL53L0X) writeReg(reg uint8, value uint8) error {
	return v.writeMulti(reg, []byte{value})
}

// writeReg16Bit writes a 16 bit value to the register
func (v *VL53L0X) writeReg16Bit(reg uint8, value uint16) error {
	return v.writeMulti(reg, []byte{byte(value >> 8), byte(value)})
}

// writeMulti writes data to consecutive registers starting at reg
func (v *VL53L0X) writeMulti(reg uint8, data []byte) error {

	if v.closed {
		return &ProtocolError{Op: "write", Reg: reg, Err: ErrClosed}
	}

	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reg)
	buf = append(buf, data...)

	n, err := v.bus.WriteBytes(buf)

	if err != nil {
		return &ProtocolError{Op: "write", Reg: reg, Err: err}
	}

	if n < len(buf) {
		return &ProtocolError{Op: "write", Reg: reg, Err: io.ErrShortWrite}
	}

	return nil
}

// writeRegs writes a fixed register sequence in order
func (v *VL53L0X) writeRegs(seq []regValue) error {

	for _, rv := range seq {
		if err := v.writeReg(rv.reg, rv.val); err != nil {
			return err
		}
	}

	return nil
}

// readReg reads an 8-bit value from the register
func (v *VL53L0X) readReg(reg uint8) (uint8, error) {

	buf, err := v.readMulti(reg, 1)

	if err != nil {
		return 0, err
	}

	return buf[0], nil
}

// readReg16Bit reads a big endian 16-bit value from the register
func (v *VL53L0X) readReg16Bit(reg uint8) (uint16, error) {

	buf, err := v.readMulti(reg, 2)

	if err != nil {
		return 0, err
	}

	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// readMulti reads count bytes from consecutive registers starting at reg
func (v *VL53L0X) readMulti(reg uint8, count int) ([]byte, error) {

	if v.closed {
		return nil, &ProtocolError{Op: "read", Reg: reg, Err: ErrClosed}
	}

	// write the register address
	if _, err := v.bus.WriteBytes([]byte{reg}); err != nil {
		return nil, &ProtocolError{Op: "read", Reg: reg, Err: err}
	}

	buf := make([]byte, count)
	n, err := v.bus.ReadBytes(buf)

	if err != nil {
		return nil, &ProtocolError{Op: "read", Reg: reg, Err: err}
	}

	if n < count {
		return nil, &ProtocolError{Op: "read", Reg: reg, Err: io.ErrUnexpectedEOF}
	}

	return buf, nil
}
