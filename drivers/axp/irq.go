package axp

import "axp-go/x/bitx"

// IRQ is a 40-bit interrupt mask; bit n lives in bit n%8 of interrupt
// register n/8 (enable bank and status bank share the layout).
type IRQ uint64

const (
	IRQVBusLowVHold  IRQ = 1 << 1
	IRQVBusRemoved   IRQ = 1 << 2
	IRQVBusPlugged   IRQ = 1 << 3
	IRQVBusOverV     IRQ = 1 << 4
	IRQAcinRemoved   IRQ = 1 << 5
	IRQAcinPlugged   IRQ = 1 << 6
	IRQAcinOverV     IRQ = 1 << 7
	IRQBattLowTemp   IRQ = 1 << 8 // decoded as IRQReport.TempHigh
	IRQBattOverTemp  IRQ = 1 << 9 // decoded as IRQReport.TempLow
	IRQChargeDone    IRQ = 1 << 10
	IRQCharging      IRQ = 1 << 11
	IRQExitActivate  IRQ = 1 << 12
	IRQEnterActivate IRQ = 1 << 13
	IRQBattRemoved   IRQ = 1 << 14
	IRQBattPlugged   IRQ = 1 << 15
	IRQPEKLong       IRQ = 1 << 16
	IRQPEKShort      IRQ = 1 << 17
	IRQTimerTimeout  IRQ = 1 << 39

	IRQAll IRQ = 1<<40 - 1
)

// IRQReport is one decoded interrupt status snapshot.
type IRQReport struct {
	AcinOverV    bool
	AcinPlugged  bool
	AcinRemoved  bool
	VBusOverV    bool
	VBusPlugged  bool
	VBusRemoved  bool
	VBusLowVHold bool

	BattPlugged   bool
	BattRemoved   bool
	EnterActivate bool
	ExitActivate  bool
	Charging      bool
	ChargeDone    bool
	TempLow       bool
	TempHigh      bool

	PEKShort bool
	PEKLong  bool

	TimerTimeout bool
}

// DecodeIRQ decodes the five interrupt status bytes. Any other length is a
// programming error and panics.
func DecodeIRQ(b []byte) IRQReport {
	if len(b) != 5 {
		panic("axp: interrupt snapshot must be 5 bytes")
	}
	return IRQReport{
		AcinOverV:    bitx.IsSet(b[0], 7),
		AcinPlugged:  bitx.IsSet(b[0], 6),
		AcinRemoved:  bitx.IsSet(b[0], 5),
		VBusOverV:    bitx.IsSet(b[0], 4),
		VBusPlugged:  bitx.IsSet(b[0], 3),
		VBusRemoved:  bitx.IsSet(b[0], 2),
		VBusLowVHold: bitx.IsSet(b[0], 1),

		BattPlugged:   bitx.IsSet(b[1], 7),
		BattRemoved:   bitx.IsSet(b[1], 6),
		EnterActivate: bitx.IsSet(b[1], 5),
		ExitActivate:  bitx.IsSet(b[1], 4),
		Charging:      bitx.IsSet(b[1], 3),
		ChargeDone:    bitx.IsSet(b[1], 2),
		TempLow:       bitx.IsSet(b[1], 1),
		TempHigh:      bitx.IsSet(b[1], 0),

		PEKShort: bitx.IsSet(b[2], 1),
		PEKLong:  bitx.IsSet(b[2], 0),

		TimerTimeout: bitx.IsSet(b[4], 7),
	}
}

// Warning is the set of warning conditions present in a report.
type Warning uint8

const (
	WarnAcinOverV Warning = 1 << iota
	WarnVBusOverV
	WarnVBusLowVHold
	WarnTempLow
	WarnTempHigh
)

func (w Warning) Has(f Warning) bool { return w&f != 0 }

func (w Warning) String() string {
	if w == 0 {
		return "none"
	}
	names := [...]string{"acin_over_v", "vbus_over_v", "vbus_low_v_hold", "temp_low", "temp_high"}
	s := ""
	for i, n := range names {
		if w&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += n
		}
	}
	return s
}

// Warning folds the five warning conditions of r into a bitmask.
func (r IRQReport) Warning() Warning {
	var w Warning
	if r.AcinOverV {
		w |= WarnAcinOverV
	}
	if r.VBusOverV {
		w |= WarnVBusOverV
	}
	if r.VBusLowVHold {
		w |= WarnVBusLowVHold
	}
	if r.TempLow {
		w |= WarnTempLow
	}
	if r.TempHigh {
		w |= WarnTempHigh
	}
	return w
}

// irqState is the per-device snapshot pair. A new decode becomes cur and the
// old cur becomes prev.
type irqState struct {
	raw  [5]byte
	cur  IRQReport
	prev IRQReport
}

func (s *irqState) rotate(raw [5]byte) IRQReport {
	s.prev = s.cur
	s.raw = raw
	s.cur = DecodeIRQ(raw[:])
	return s.cur
}

// ---------------- Enable bank ----------------

func (d *Device) EnableIRQ(m IRQ) error  { return d.maskIRQ("enable irq", m, true) }
func (d *Device) DisableIRQ(m IRQ) error { return d.maskIRQ("disable irq", m, false) }

func (d *Device) maskIRQ(op string, m IRQ, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(op); err != nil {
		return err
	}
	if m&^IRQAll != 0 {
		return invalid(op, "mask exceeds 40 bits")
	}
	regs := d.v.spec().irqEnable
	for i, b := range bitx.Split40(uint64(m)) {
		if b == 0 {
			continue
		}
		set, clr := b, byte(0)
		if !on {
			set, clr = 0, b
		}
		if _, err := d.modifyBitmaskRegister(regs[i], set, clr); err != nil {
			return err
		}
	}
	return nil
}

// IRQEnabled reads back the enable bank.
func (d *Device) IRQEnabled() (IRQ, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("irq enabled"); err != nil {
		return 0, err
	}
	var m IRQ
	for i, reg := range d.v.spec().irqEnable {
		v, err := d.readReg(reg)
		if err != nil {
			return 0, err
		}
		m |= IRQ(v) << (8 * i)
	}
	return m, nil
}

// ---------------- Status bank ----------------

// ReadIRQ reads the status bank, decodes it and rotates the current report
// into the previous one.
func (d *Device) ReadIRQ() (IRQReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readIRQ()
}

func (d *Device) readIRQ() (IRQReport, error) {
	regs := d.v.spec().irqStatus
	if regs == nil {
		return IRQReport{}, d.unsupported("read irq")
	}
	if err := d.ready("read irq"); err != nil {
		return IRQReport{}, err
	}
	var raw [5]byte
	if err := d.transferRuns(regs, raw[:], d.readBytes); err != nil {
		return IRQReport{}, err
	}
	return d.irq.rotate(raw), nil
}

// ClearIRQ acknowledges every pending interrupt and zeroes the current report.
func (d *Device) ClearIRQ() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	regs := d.v.spec().irqStatus
	if regs == nil {
		return d.unsupported("clear irq")
	}
	if err := d.ready("clear irq"); err != nil {
		return err
	}
	// Register/data pairs; the status bank does not take burst writes.
	for _, r := range regs {
		if err := d.writeReg(r, 0xFF); err != nil {
			return err
		}
	}
	d.irq.raw = [5]byte{}
	d.irq.cur = IRQReport{}
	return nil
}

// transferRuns reads regs[i] into buf[i], one burst per run of consecutive
// addresses.
func (d *Device) transferRuns(regs []uint8, buf []byte, xfer func(uint8, []byte) error) error {
	for i := 0; i < len(regs); {
		j := i + 1
		for j < len(regs) && regs[j] == regs[j-1]+1 {
			j++
		}
		if err := xfer(regs[i], buf[i:j]); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// IRQReport returns the most recent decoded report.
func (d *Device) IRQReport() IRQReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.irq.cur
}

// PreviousIRQReport returns the report that preceded the most recent one.
func (d *Device) PreviousIRQReport() IRQReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.irq.prev
}

// pollIRQ is the watcher's read. Variants without a readable status bank
// yield the last (zero) report without bus traffic.
func (d *Device) pollIRQ() (IRQReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.v.spec().irqStatus == nil {
		if err := d.ready("read irq"); err != nil {
			return IRQReport{}, err
		}
		return d.irq.cur, nil
	}
	return d.readIRQ()
}

// RawIRQ returns the undecoded bytes behind the current report.
func (d *Device) RawIRQ() [5]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.irq.raw
}
