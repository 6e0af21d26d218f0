// go-vl53l0x is an I2C driver for the ST VL53L0X time‐of‐flight sensor.
package vl53l0x

import (
	"io"
	"log"
	"time"

	"github.com/swdee/go-i2c"
)

const (
	// Address is the default address of the sensor on I2C bus
	Address uint8 = 0x29
	// ModelID is the value of IDENTIFICATION_MODEL_ID on every VL53L0X
	ModelID uint8 = 0xEE
)

// spadInfo describes the reference SPADs enabled on the device
type spadInfo struct {
	count      uint8
	isAperture bool
	enableMap  [spadMapBytes]byte
}

// VL53L0X represents a single VL53L0X sensor instance.
type VL53L0X struct {
	// bus is the I2C interface
	bus    Bus
	closed bool

	pollInterval time.Duration
	didTimeout   bool
	timeoutStart time.Time

	// now and sleep are replaced in tests
	now   func() time.Time
	sleep func(time.Duration)

	// stopVariable is read once during init and written back before every
	// measurement
	stopVariable uint8
	spad         spadInfo

	// timing budget in microseconds
	timingBudget uint32
	// offset in millimeters subtracted from every reading
	offset int

	state State

	// log logger for debugging
	log *log.Logger
}

// Option configures a VL53L0X instance before initialization
type Option func(*VL53L0X)

// WithOffset sets the initial distance offset in millimeters
func WithOffset(mm int) Option {
	return func(v *VL53L0X) {
		v.offset = mm
	}
}

// WithLogger sets the logger used for debugging
func WithLogger(l *log.Logger) Option {
	return func(v *VL53L0X) {
		if l != nil {
			v.log = l
		}
	}
}

// WithPollInterval sets the delay between status register polls
func WithPollInterval(d time.Duration) Option {
	return func(v *VL53L0X) {
		if d > 0 {
			v.pollInterval = d
		}
	}
}

// New returns a new VL53L0X sensor instance on the given bus.  The sensor is
// fully initialized and calibrated before New returns.
func New(bus Bus, opts ...Option) (*VL53L0X, error) {

	v := newSensor(bus, opts...)

	if err := v.setup(); err != nil {
		return nil, err
	}

	return v, nil
}

// NewWithLog creates sensor instance with logger to be used for debugging
func NewWithLog(bus Bus, log *log.Logger, opts ...Option) (*VL53L0X, error) {
	return New(bus, append([]Option{WithLogger(log)}, opts...)...)
}

// Open opens the I2C device file at the given address and returns an
// initialized sensor instance.  Closing the sensor closes the I2C connection.
func Open(dev string, addr uint8, opts ...Option) (*VL53L0X, error) {

	conn, err := i2c.New(addr, dev)

	if err != nil {
		return nil, err
	}

	v, err := New(conn, opts...)

	if err != nil {
		conn.Close()
		return nil, err
	}

	return v, nil
}

// newSensor returns a new uninitialized VL53L0X sensor instance
func newSensor(bus Bus, opts ...Option) *VL53L0X {

	v := &VL53L0X{
		bus:          bus,
		pollInterval: time.Millisecond,
		now:          time.Now,
		sleep:        time.Sleep,
		state:        Idle,
		// create null logger
		log: log.New(io.Discard, "", log.LstdFlags),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// setup completes New instance creation
func (v *VL53L0X) setup() error {

	v.log.Printf("Starting setup()")

	if err := v.Init(); err != nil {
		return err
	}

	v.log.Printf("Device Init()'d, timing budget %dus, offset %dmm",
		v.timingBudget, v.offset)

	return nil
}

// SetOffset sets the distance offset in millimeters which is subtracted from
// every measurement
func (v *VL53L0X) SetOffset(mm int) {
	v.offset = mm
}

// Offset returns the distance offset in millimeters
func (v *VL53L0X) Offset() int {
	return v.offset
}

// Close closes the underlying bus.  It must not be called while a measurement
// is in progress.
func (v *VL53L0X) Close() error {

	if v.closed {
		return nil
	}

	v.closed = true
	v.log.Printf("Closing device")

	return v.bus.Close()
}
