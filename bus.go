package vl53l0x

import "tinygo.org/x/drivers"

// Bus is the register transport used by the sensor.  Each WriteBytes call is a
// single I2C write transaction whose first byte is the register address, and
// each ReadBytes call is a single read transaction starting at the last
// written register address.  *i2c.Options from github.com/swdee/go-i2c
// satisfies Bus.
type Bus interface {
	WriteBytes(buf []byte) (int, error)
	ReadBytes(buf []byte) (int, error)
	Close() error
}

// txBus adapts a TinyGo I2C bus to Bus
type txBus struct {
	bus  drivers.I2C
	addr uint16
}

// NewTxBus returns a Bus for the device at addr on a TinyGo I2C bus.  The
// caller keeps ownership of the TinyGo bus, so Close is a no-op.
func NewTxBus(bus drivers.I2C, addr uint16) Bus {
	return &txBus{bus: bus, addr: addr}
}

func (t *txBus) WriteBytes(buf []byte) (int, error) {

	if err := t.bus.Tx(t.addr, buf, nil); err != nil {
		return 0, err
	}

	return len(buf), nil
}

func (t *txBus) ReadBytes(buf []byte) (int, error) {

	if err := t.bus.Tx(t.addr, nil, buf); err != nil {
		return 0, err
	}

	return len(buf), nil
}

func (t *txBus) Close() error {
	return nil
}
