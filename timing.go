package vl53l0x

// macroPeriodNs calculates the macro period in nanoseconds from a VCSEL period
// in PCLKs.  1655 is the PLL period in picoseconds.
func macroPeriodNs(vcselPeriodPclks uint32) uint32 {
	return uint32((2304*uint64(vcselPeriodPclks)*1655 + 500) / 1000)
}

// timeoutUsToMclks converts a sequence step timeout from microseconds to
// macro periods, rounding to nearest.  A zero VCSEL period gives zero.
func timeoutUsToMclks(timeoutUs uint32, vcselPeriodPclks uint32) uint32 {
	macroNs := uint64(macroPeriodNs(vcselPeriodPclks))

	if macroNs == 0 {
		return 0
	}

	return uint32((uint64(timeoutUs)*1000 + macroNs/2) / macroNs)
}

// timeoutMclksToUs converts a sequence step timeout from macro periods to
// microseconds, rounding to nearest
func timeoutMclksToUs(timeoutMclks uint32, vcselPeriodPclks uint32) uint32 {
	macroNs := uint64(macroPeriodNs(vcselPeriodPclks))
	return uint32((uint64(timeoutMclks)*macroNs + 500) / 1000)
}

// decodeTimeout decodes a sequence step timeout in MCLKs from a register value
// of the form (ms_byte << 8) | ls_byte, where the timeout is
// (ls_byte << ms_byte) + 1
func decodeTimeout(regVal uint16) uint32 {
	lsByte := uint32(regVal & 0xFF)
	msByte := regVal >> 8
	return (lsByte << msByte) + 1
}

// encodeTimeout encodes a sequence step timeout in MCLKs into the register
// format read by decodeTimeout
func encodeTimeout(timeoutMclks uint32) uint16 {

	if timeoutMclks == 0 {
		return 0
	}

	lsByte := timeoutMclks - 1
	var msByte uint16

	for lsByte&0xFFFFFF00 > 0 {
		lsByte >>= 1
		msByte++
	}

	return (msByte << 8) | uint16(lsByte&0xFF)
}

// decodeVcselPeriod converts a VCSEL period register value to PCLKs
func decodeVcselPeriod(regVal uint8) uint32 {
	return (uint32(regVal) + 1) << 1
}
