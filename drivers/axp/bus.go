package axp

import (
	"strconv"

	"axp-go/errcode"

	"tinygo.org/x/drivers"
)

// Conn addresses the chip on its bus. It is the device handle passed to an
// injected TransferFunc; Bus is nil when no direct handle was supplied.
type Conn struct {
	Bus  drivers.I2C
	Addr uint16
}

// TransferStatus classifies the outcome of one register transfer.
type TransferStatus uint8

const (
	TransferFull    TransferStatus = iota // every byte moved
	TransferNone                          // nothing moved (NACK, bus fault, timeout)
	TransferPartial                       // some bytes moved before the transfer failed
)

func (s TransferStatus) String() string {
	switch s {
	case TransferFull:
		return "full"
	case TransferNone:
		return "no transfer"
	case TransferPartial:
		return "partial transfer"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// TransferFunc moves len(buf) bytes to or from register reg of the device
// behind c. A read writes reg then reads into buf; a write sends reg followed
// by buf, in one transaction where the transport allows it.
type TransferFunc func(c Conn, reg uint8, buf []byte) TransferStatus

// TransferError is the cause carried by every io_error the driver returns.
type TransferError struct {
	Op     string // "read" or "write"
	Reg    uint8
	Status TransferStatus
	Err    error // transport error on the direct path
}

func (e *TransferError) Error() string {
	s := "register 0x" + strconv.FormatUint(uint64(e.Reg), 16) + ": " + e.Status.String()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *TransferError) Unwrap() error { return e.Err }

// Largest write payload the direct path assembles without allocating.
const maxBurst = 8

// All helpers below expect d.mu to be held.

func (d *Device) readBytes(reg uint8, buf []byte) error {
	if err := d.checkIO("read"); err != nil {
		return err
	}
	var st TransferStatus
	var cause error
	if d.read != nil {
		st = d.read(d.conn, reg, buf)
	} else {
		var w [1]byte
		w[0] = reg
		if cause = d.conn.Bus.Tx(d.conn.Addr, w[:], buf); cause != nil {
			st = TransferNone
		}
	}
	return transferErr("read", reg, st, cause)
}

func (d *Device) writeBytes(reg uint8, buf []byte) error {
	if err := d.checkIO("write"); err != nil {
		return err
	}
	var st TransferStatus
	var cause error
	if d.write != nil {
		st = d.write(d.conn, reg, buf)
	} else {
		var w [1 + maxBurst]byte
		p := w[:1+len(buf)]
		if len(buf) > maxBurst {
			p = make([]byte, 1+len(buf))
		}
		p[0] = reg
		copy(p[1:], buf)
		if cause = d.conn.Bus.Tx(d.conn.Addr, p, nil); cause != nil {
			st = TransferNone
		}
	}
	return transferErr("write", reg, st, cause)
}

func (d *Device) readReg(reg uint8) (byte, error) {
	var b [1]byte
	if err := d.readBytes(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Device) writeReg(reg uint8, v byte) error {
	b := [1]byte{v}
	return d.writeBytes(reg, b[:])
}

// modifyReg applies fn to the current register value and writes the result
// back. The write is skipped when nothing changed.
func (d *Device) modifyReg(reg uint8, fn func(byte) byte) (byte, error) {
	v, err := d.readReg(reg)
	if err != nil {
		return 0, err
	}
	nv := fn(v)
	if nv == v {
		return v, nil
	}
	if err := d.writeReg(reg, nv); err != nil {
		return 0, err
	}
	return nv, nil
}

// modifyBitmaskRegister sets and clears bits in one read-modify-write.
func (d *Device) modifyBitmaskRegister(reg uint8, set, clear byte) (byte, error) {
	return d.modifyReg(reg, func(v byte) byte { return v&^clear | set })
}

func (d *Device) checkIO(op string) error {
	if d.state == stateNew {
		return errcode.New(errcode.NotInitialized, "axp: "+op, "device not initialized")
	}
	return nil
}

func transferErr(op string, reg uint8, st TransferStatus, cause error) error {
	if st == TransferFull {
		return nil
	}
	return &errcode.E{
		C:   errcode.IOError,
		Op:  "axp: " + op,
		Err: &TransferError{Op: op, Reg: reg, Status: st, Err: cause},
	}
}
