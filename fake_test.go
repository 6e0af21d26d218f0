package vl53l0x

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBus simulates the sensor register file.  The register pointer
// auto-increments across multi-byte transfers like the real device.  Register
// pages selected with 0xFF are not modelled.
type fakeBus struct {
	regs [256]byte
	// fixed registers ignore writes and always read the given value
	fixed map[uint8]byte
	// scripts are read before falling back to fixed or stored values
	scripts map[uint8][]byte

	failRead  map[uint8]error
	failWrite map[uint8]error

	// onRead is called after each register byte is read
	onRead func(reg uint8)

	ptr    uint8
	writes []regValue
	closed bool
}

// newFakeDevice returns a fakeBus seeded like a powered-up VL53L0X with
// reference SPAD count 7, non aperture SPADs, a full reference map, stop
// variable 0x3C and a raw range reading of 530mm
func newFakeDevice() *fakeBus {

	f := &fakeBus{
		fixed: map[uint8]byte{
			IDENTIFICATION_MODEL_ID: ModelID,
			regSpadStatus:           0x01,
			RESULT_INTERRUPT_STATUS: 0x07,
		},
		scripts:   map[uint8][]byte{},
		failRead:  map[uint8]error{},
		failWrite: map[uint8]error{},
	}

	f.regs[regStopVariable] = 0x3C
	f.regs[regSpadInfo] = 0x07
	f.regs[GPIO_HV_MUX_ACTIVE_HIGH] = 0x11

	for i := 0; i < spadMapBytes; i++ {
		f.regs[GLOBAL_CONFIG_SPAD_ENABLES_REF_0+uint8(i)] = 0xFF
	}

	f.setRange(530)

	return f
}

func (f *fakeBus) setRange(mm uint16) {
	f.regs[RESULT_RANGE_MM] = byte(mm >> 8)
	f.regs[RESULT_RANGE_MM+1] = byte(mm)
}

func (f *fakeBus) WriteBytes(buf []byte) (int, error) {

	if len(buf) == 0 {
		return 0, errors.New("empty write")
	}

	reg := buf[0]

	if err := f.failWrite[reg]; err != nil && len(buf) > 1 {
		return 0, err
	}

	f.ptr = reg

	for i, b := range buf[1:] {
		r := reg + uint8(i)
		f.writes = append(f.writes, regValue{r, b})

		if _, ok := f.fixed[r]; !ok {
			f.regs[r] = b
		}
	}

	return len(buf), nil
}

func (f *fakeBus) ReadBytes(buf []byte) (int, error) {

	for i := range buf {
		r := f.ptr + uint8(i)

		if err := f.failRead[r]; err != nil {
			return i, err
		}

		if s := f.scripts[r]; len(s) > 0 {
			buf[i] = s[0]
			f.scripts[r] = s[1:]
		} else if val, ok := f.fixed[r]; ok {
			buf[i] = val
		} else {
			buf[i] = f.regs[r]
		}

		if f.onRead != nil {
			f.onRead(r)
		}
	}

	return len(buf), nil
}

func (f *fakeBus) Close() error {
	f.closed = true
	return nil
}

// writesTo returns the values written to reg in order
func (f *fakeBus) writesTo(reg uint8) []byte {

	var vals []byte

	for _, w := range f.writes {
		if w.reg == reg {
			vals = append(vals, w.val)
		}
	}

	return vals
}

// indexOfWrite returns the index of the first write of rv at or after from
func (f *fakeBus) indexOfWrite(rv regValue, from int) int {

	for i := from; i < len(f.writes); i++ {
		if f.writes[i] == rv {
			return i
		}
	}

	return -1
}

// fakeClock advances only when slept on
type fakeClock struct {
	t      time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Sleep(d time.Duration) {
	c.t = c.t.Add(d)
	c.sleeps++
}

// newTestSensor returns an uninitialized sensor on bus driven by a fake clock
func newTestSensor(bus Bus, opts ...Option) (*VL53L0X, *fakeClock) {

	clk := newFakeClock()
	v := newSensor(bus, append([]Option{
		WithLogger(log.New(io.Discard, "", 0)),
	}, opts...)...)
	v.now = clk.Now
	v.sleep = clk.Sleep

	return v, clk
}

// initTestSensor returns a sensor initialized against a fake device
func initTestSensor(t *testing.T, opts ...Option) (*VL53L0X, *fakeBus, *fakeClock) {

	t.Helper()

	bus := newFakeDevice()
	v, clk := newTestSensor(bus, opts...)

	require.NoError(t, v.Init())

	bus.writes = nil
	clk.sleeps = 0

	return v, bus, clk
}
