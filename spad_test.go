package vl53l0x

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSpadMap(t *testing.T) {

	full := [spadMapBytes]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	tests := []struct {
		name       string
		ref        [spadMapBytes]byte
		count      uint8
		isAperture bool
		want       [spadMapBytes]byte
	}{
		{
			name:  "seven from index 0",
			ref:   full,
			count: 7,
			want:  [spadMapBytes]byte{0x7F, 0, 0, 0, 0, 0},
		},
		{
			name:  "skips bad spads in index order",
			ref:   [spadMapBytes]byte{0xAA, 0x0F, 0x00, 0xFF, 0x00, 0x00},
			count: 7,
			want:  [spadMapBytes]byte{0xAA, 0x07, 0, 0, 0, 0},
		},
		{
			name:       "aperture starts at index 12",
			ref:        full,
			count:      5,
			isAperture: true,
			want:       [spadMapBytes]byte{0x00, 0xF0, 0x01, 0, 0, 0},
		},
		{
			name:  "zero count clears map",
			ref:   full,
			count: 0,
			want:  [spadMapBytes]byte{},
		},
		{
			name:  "count above available keeps all",
			ref:   [spadMapBytes]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x80},
			count: 44,
			want:  [spadMapBytes]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSpadMap(tt.ref, tt.count, tt.isAperture)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSpadMapCountInvariant(t *testing.T) {

	ref := [spadMapBytes]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	for count := uint8(0); count <= 36; count++ {
		for _, aperture := range []bool{false, true} {
			m := buildSpadMap(ref, count, aperture)
			assert.Equal(t, int(count), spadMapCount(m), "count %d aperture %t", count, aperture)

			if aperture {
				// nothing below the first aperture SPAD
				assert.Zero(t, m[0])
				assert.Zero(t, m[1]&0x0F)
			}
		}
	}
}

func TestSetupSpads(t *testing.T) {

	bus := newFakeDevice()
	bus.regs[regSpadInfo] = 0x80 | 0x03
	v, _ := newTestSensor(bus)

	require.NoError(t, v.setupSpads())

	assert.Equal(t, uint8(3), v.spad.count)
	assert.True(t, v.spad.isAperture)
	assert.Equal(t, [spadMapBytes]byte{0x00, 0x70, 0, 0, 0, 0}, v.spad.enableMap)
	assert.Equal(t, []byte{0x00, 0x70, 0, 0, 0, 0},
		bus.regs[GLOBAL_CONFIG_SPAD_ENABLES_REF_0:GLOBAL_CONFIG_SPAD_ENABLES_REF_0+spadMapBytes])
	assert.Equal(t, spadRefStartIndex, bus.regs[GLOBAL_CONFIG_REF_EN_START_SELECT])
	assert.Equal(t, spadRequestedRef, bus.regs[DYNAMIC_SPAD_NUM_REQUESTED_REF_SPAD])

	// SPAD info trigger precedes the map write back
	trigger := bus.indexOfWrite(regValue{regSpadTrigger, 0x6B}, 0)
	require.GreaterOrEqual(t, trigger, 0)
	assert.Greater(t, bus.indexOfWrite(regValue{GLOBAL_CONFIG_SPAD_ENABLES_REF_0, 0x00}, 0), trigger)
}

func TestGetSpadInfoTimeout(t *testing.T) {

	bus := newFakeDevice()
	bus.fixed[regSpadStatus] = 0x00
	v, clk := newTestSensor(bus)

	_, _, err := v.getSpadInfo()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, v.TimeoutOccurred())
	assert.False(t, v.TimeoutOccurred())
	assert.Greater(t, clk.t.Sub(newFakeClock().t), spadTimeout)
}
