package vl53l0x

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Calibrate takes samples measurements against a target at targetMM and
// returns the offset that corrects the mean reading to the target.  The
// current offset is left unchanged, use SetOffset to apply the result.
func (v *VL53L0X) Calibrate(targetMM, samples int) (int, error) {

	if samples <= 0 {
		return 0, ErrInvalidSamples
	}

	v.log.Printf("Calibrating with target %dmm, %d samples", targetMM, samples)

	// measure with a zero offset
	current := v.offset
	v.offset = 0

	defer func() {
		v.offset = current
	}()

	readings, err := v.MeasureN(samples)

	if err != nil {
		return 0, fmt.Errorf("calibration measurement %d: %w", len(readings)+1, err)
	}

	xs := make([]float64, len(readings))

	for i, r := range readings {
		xs[i] = float64(r)
	}

	mean, std := stat.MeanStdDev(xs, nil)
	measured := int(mean)
	offset := measured - targetMM

	v.log.Printf("Measured distance %dmm (std dev %.1fmm), offset %dmm",
		measured, std, offset)

	return offset, nil
}
