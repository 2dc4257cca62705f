// Package hostbus adapts Linux i2c-dev SMBus access to the axp transfer
// callbacks. Both backends move one register per SMBus byte-data transaction,
// so a burst that fails midway reports a partial transfer.
package hostbus

import (
	"sync"

	"axp-go/drivers/axp"
	"axp-go/errcode"

	"tinygo.org/x/drivers"
)

// byteIO is one SMBus byte-data read or write against a 7-bit address.
type byteIO interface {
	readByte(addr uint8, reg uint8) (byte, error)
	writeByte(addr uint8, reg uint8, v byte) error
	close() error
}

// Transport serves a chip through a byteIO. It implements drivers.I2C for
// probing and offers Read/Write as axp.TransferFunc values.
type Transport struct {
	mu   sync.Mutex
	io   byteIO
	last error // cause of the most recent failed transfer
}

var _ drivers.I2C = (*Transport)(nil)

func newTransport(io byteIO) *Transport { return &Transport{io: io} }

// Read is an axp.TransferFunc.
func (t *Transport) Read(c axp.Conn, reg uint8, buf []byte) axp.TransferStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.each(len(buf), func(i int) error {
		v, err := t.io.readByte(uint8(c.Addr), reg+uint8(i))
		buf[i] = v
		return err
	})
}

// Write is an axp.TransferFunc.
func (t *Transport) Write(c axp.Conn, reg uint8, buf []byte) axp.TransferStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.each(len(buf), func(i int) error {
		return t.io.writeByte(uint8(c.Addr), reg+uint8(i), buf[i])
	})
}

// each runs n single-byte transfers and classifies the outcome.
func (t *Transport) each(n int, fn func(i int) error) axp.TransferStatus {
	for i := 0; i < n; i++ {
		if err := fn(i); err != nil {
			t.last = err
			if i == 0 {
				return axp.TransferNone
			}
			return axp.TransferPartial
		}
	}
	return axp.TransferFull
}

// Tx treats w[0] as the register address, writes w[1:] from there and then
// reads len(r) bytes from the same register.
func (t *Transport) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		return errcode.New(errcode.InvalidParams, "hostbus: tx", "register address required")
	}
	if addr > 0x7F {
		return errcode.New(errcode.InvalidParams, "hostbus: tx", "address must be 7-bit")
	}
	c := axp.Conn{Addr: addr}
	if len(w) > 1 {
		if st := t.Write(c, w[0], w[1:]); st != axp.TransferFull {
			return t.txErr("write", st)
		}
	}
	if len(r) > 0 {
		if st := t.Read(c, w[0], r); st != axp.TransferFull {
			return t.txErr("read", st)
		}
	}
	return nil
}

func (t *Transport) txErr(op string, st axp.TransferStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &errcode.E{C: errcode.IOError, Op: "hostbus: " + op, Msg: st.String(), Err: t.last}
}

// LastError returns the cause of the most recent failed transfer, for logs.
func (t *Transport) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.io.close()
}
