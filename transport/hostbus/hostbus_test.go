package hostbus

import (
	"errors"
	"testing"

	"axp-go/drivers/axp"
	"axp-go/errcode"
)

var errNack = errors.New("nack")

// fakeIO fails every access at or above failAt.
type fakeIO struct {
	regs   [256]byte
	addr   uint8
	failAt int
	closed bool
}

func (f *fakeIO) ok(addr, reg uint8) error {
	if addr != f.addr || (f.failAt >= 0 && int(reg) >= f.failAt) {
		return errNack
	}
	return nil
}

func (f *fakeIO) readByte(addr, reg uint8) (byte, error) {
	if err := f.ok(addr, reg); err != nil {
		return 0, err
	}
	return f.regs[reg], nil
}

func (f *fakeIO) writeByte(addr, reg uint8, v byte) error {
	if err := f.ok(addr, reg); err != nil {
		return err
	}
	f.regs[reg] = v
	return nil
}

func (f *fakeIO) close() error { f.closed = true; return nil }

func TestTransport_Classify(t *testing.T) {
	cases := []struct {
		name   string
		failAt int
		reg    uint8
		n      int
		want   axp.TransferStatus
	}{
		{"full", -1, 0x78, 2, axp.TransferFull},
		{"none", 0x78, 0x78, 2, axp.TransferNone},
		{"partial", 0x79, 0x78, 2, axp.TransferPartial},
		{"empty", 0, 0x10, 0, axp.TransferFull},
	}
	for _, c := range cases {
		f := &fakeIO{addr: 0x35, failAt: c.failAt}
		tr := newTransport(f)
		buf := make([]byte, c.n)
		if got := tr.Read(axp.Conn{Addr: 0x35}, c.reg, buf); got != c.want {
			t.Errorf("%s read: %v want %v", c.name, got, c.want)
		}
		if got := tr.Write(axp.Conn{Addr: 0x35}, c.reg, buf); got != c.want {
			t.Errorf("%s write: %v want %v", c.name, got, c.want)
		}
	}
}

func TestTransport_WrongAddress(t *testing.T) {
	tr := newTransport(&fakeIO{addr: 0x35, failAt: -1})
	if st := tr.Read(axp.Conn{Addr: 0x34}, 0x03, make([]byte, 1)); st != axp.TransferNone {
		t.Fatalf("status %v", st)
	}
	if !errors.Is(tr.LastError(), errNack) {
		t.Fatalf("last error %v", tr.LastError())
	}
}

func TestTransport_Tx(t *testing.T) {
	f := &fakeIO{addr: 0x34, failAt: -1}
	f.regs[0x03] = axp.ChipIDAXP192
	tr := newTransport(f)

	if err := tr.Tx(0x34, []byte{0x12, 0x5F, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	if f.regs[0x12] != 0x5F || f.regs[0x13] != 0x01 {
		t.Fatalf("regs % x", f.regs[0x12:0x14])
	}
	r := make([]byte, 2)
	if err := tr.Tx(0x34, []byte{0x12}, r); err != nil || r[0] != 0x5F || r[1] != 0x01 {
		t.Fatalf("read back % x err %v", r, err)
	}

	if err := tr.Tx(0x34, nil, r); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("no register: %v", err)
	}
	if err := tr.Tx(0x80, []byte{0}, r); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("10-bit address: %v", err)
	}
	err := tr.Tx(0x35, []byte{0x03}, r)
	if errcode.Of(err) != errcode.IOError || !errors.Is(err, errNack) {
		t.Fatalf("nack: %v", err)
	}
}

// Detect and a full Initialize run over the transport as a drivers.I2C and
// as a callback pair.
func TestTransport_DrivesDevice(t *testing.T) {
	f := &fakeIO{addr: axp.AddressAXP202, failAt: -1}
	f.regs[0x03] = axp.ChipIDAXP202
	tr := newTransport(f)

	chip, err := axp.Detect(tr, axp.AddressAXP202)
	if err != nil || chip != axp.AXP202 {
		t.Fatalf("Detect: %v %v", chip, err)
	}
	dev, err := axp.NewWithTransport(tr.Read, tr.Write, axp.Config{Chip: chip, Address: axp.AddressAXP202})
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetVoltage(axp.DCDC2, 1500); err != nil {
		t.Fatal(err)
	}
	if f.regs[0x23] != 32 {
		t.Fatalf("0x23=%d", f.regs[0x23])
	}
	if err := tr.Close(); err != nil || !f.closed {
		t.Fatalf("close: %v", err)
	}
}
