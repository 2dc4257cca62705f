package axp

import (
	"errors"
	"sync"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

var errNack = errors.New("nack")

type txWrite struct {
	reg  uint8
	data []byte
}

// Register-map fake. Reads and writes auto-increment from the addressed
// register; w1c registers clear the bits written as 1.
type fakeI2C struct {
	mu    sync.Mutex
	addr  uint16
	regs  [256]byte
	w1c   map[uint8]bool
	stuck map[uint8]byte // bits that always read back as 1

	failRead  map[uint8]bool
	failWrite map[uint8]bool

	reads  []uint8
	writes []txWrite
}

func newFake(addr uint16) *fakeI2C {
	return &fakeI2C{
		addr:      addr,
		w1c:       map[uint8]bool{},
		stuck:     map[uint8]byte{},
		failRead:  map[uint8]bool{},
		failWrite: map[uint8]bool{},
	}
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if addr != f.addr || len(w) == 0 {
		return errNack
	}
	reg := w[0]
	if len(r) > 0 {
		if f.failRead[reg] {
			return errNack
		}
		f.reads = append(f.reads, reg)
		for i := range r {
			a := reg + uint8(i)
			r[i] = f.regs[a] | f.stuck[a]
		}
		return nil
	}
	if f.failWrite[reg] {
		return errNack
	}
	f.writes = append(f.writes, txWrite{reg: reg, data: append([]byte(nil), w[1:]...)})
	for i, b := range w[1:] {
		a := reg + uint8(i)
		if f.w1c[a] {
			f.regs[a] &^= b
		} else {
			f.regs[a] = b
		}
	}
	return nil
}

func (f *fakeI2C) set(reg uint8, v byte) {
	f.mu.Lock()
	f.regs[reg] = v
	f.mu.Unlock()
}

func (f *fakeI2C) get(reg uint8) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[reg]
}

func (f *fakeI2C) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeI2C) wroteTo(reg uint8) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.writes {
		if w.reg == reg {
			return true
		}
	}
	return false
}

func (f *fakeI2C) resetLog() {
	f.mu.Lock()
	f.reads, f.writes = nil, nil
	f.mu.Unlock()
}

// newChipFake returns a fake that passes the identity probe of chip, with
// the interrupt status bank wired as write-1-to-clear.
func newChipFake(chip Chip) *fakeI2C {
	sp := variantFor(chip).spec()
	f := newFake(sp.addr)
	switch chip {
	case AXP173:
		f.regs[regModeChgState] = 0x40
	default:
		f.regs[regICType] = sp.id
	}
	for _, r := range sp.irqStatus {
		f.w1c[r] = true
	}
	return f
}

// newReady builds and initializes a device over a fake. Registers can be
// preset with pre before Initialize runs.
func newReady(t *testing.T, chip Chip, pre func(f *fakeI2C)) (*fakeI2C, *Device) {
	t.Helper()
	f := newChipFake(chip)
	if pre != nil {
		pre(f)
	}
	d, err := New(f, DefaultConfig(chip))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	f.resetLog()
	return f, d
}

// recorder is a Sink that keeps every event.
type recorder struct {
	mu  sync.Mutex
	evs []Event
}

func (r *recorder) Emit(e Event) {
	r.mu.Lock()
	r.evs = append(r.evs, e)
	r.mu.Unlock()
}

func (r *recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.evs
	r.evs = nil
	return out
}

func kinds(evs []Event) []EventKind {
	out := make([]EventKind, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}
