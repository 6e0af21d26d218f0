package vl53l0x

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx is a TinyGo style I2C bus backed by a fakeBus register file
type fakeTx struct {
	dev  *fakeBus
	addr uint16
	err  error
}

func (f *fakeTx) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return errors.New("not used")
}

func (f *fakeTx) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return errors.New("not used")
}

func (f *fakeTx) Tx(addr uint16, w, r []byte) error {

	if f.err != nil {
		return f.err
	}

	if addr != f.addr {
		return errors.New("no device at address")
	}

	if len(w) > 0 {
		if _, err := f.dev.WriteBytes(w); err != nil {
			return err
		}
	}

	if len(r) > 0 {
		if _, err := f.dev.ReadBytes(r); err != nil {
			return err
		}
	}

	return nil
}

func TestTxBus(t *testing.T) {

	dev := newFakeDevice()
	tx := &fakeTx{dev: dev, addr: uint16(Address)}

	v, err := New(NewTxBus(tx, uint16(Address)), WithOffset(30))

	require.NoError(t, err)

	mm, err := v.Measure()

	require.NoError(t, err)
	assert.Equal(t, 500, mm)

	require.NoError(t, v.Close())
	assert.False(t, dev.closed)
}

func TestTxBusError(t *testing.T) {

	tx := &fakeTx{dev: newFakeDevice(), addr: 0x30}

	_, err := New(NewTxBus(tx, uint16(Address)))

	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, IDENTIFICATION_MODEL_ID, perr.Reg)
}

func TestReadShortTransfer(t *testing.T) {

	v, _ := newTestSensor(shortBus{})

	_, err := v.readReg16Bit(RESULT_RANGE_MM)

	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "read register 0x1E")
	assert.Contains(t, err.Error(), "unexpected EOF")
}

// shortBus acknowledges writes but returns a single byte on every read
type shortBus struct{}

func (shortBus) WriteBytes(buf []byte) (int, error) { return len(buf), nil }
func (shortBus) ReadBytes(buf []byte) (int, error)  { return 1, nil }
func (shortBus) Close() error                       { return nil }
