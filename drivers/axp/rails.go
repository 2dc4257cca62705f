package axp

import (
	"strconv"
	"time"

	"axp-go/errcode"
	"axp-go/x/bitx"
)

// Output switch writes settle for this long before the read-back check.
const outputSettle = time.Millisecond

// SetVoltage programs rail to mV. Values outside the variant's legal range
// (or, for table rails, not in the table) are rejected before any bus
// traffic. The cached value changes only after the write succeeds.
func (d *Device) SetVoltage(r Rail, mV uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	op := "set " + r.String()
	rs, ok := d.v.spec().rails[r]
	if !ok {
		return d.unsupported(op)
	}
	if err := d.ready(op); err != nil {
		return err
	}
	if d.c.rails[r] == mV {
		return nil
	}
	f, ok := rs.field(mV)
	if !ok {
		return invalid(op, rangeMsg(rs, mV))
	}
	v, err := d.modifyReg(rs.reg, func(v byte) byte { return bitx.Embed(v, rs.keep, f, rs.shift) })
	if err != nil {
		return err
	}
	d.c.rails[r] = rs.millivolts(v)
	return nil
}

// Voltage returns the cached setpoint of rail in mV.
func (d *Device) Voltage(r Rail) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	op := r.String() + " voltage"
	if _, ok := d.v.spec().rails[r]; !ok {
		return 0, d.unsupported(op)
	}
	if err := d.ready(op); err != nil {
		return 0, err
	}
	return d.c.rails[r], nil
}

func rangeMsg(rs railSpec, mV uint16) string {
	s := strconv.Itoa(int(mV)) + "mV"
	if rs.table != nil {
		return s + " is not a selectable step"
	}
	return s + " outside " + strconv.Itoa(int(rs.min)) + ".." + strconv.Itoa(int(rs.max)) + "mV"
}

// SetPowerOutput switches rail on or off. The switch register is read back
// after a short settle and must match what was written.
func (d *Device) SetPowerOutput(r Rail, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	op := "switch " + r.String()
	sp := d.v.spec()
	ob, ok := sp.outputs[r]
	if !ok {
		return d.unsupported(op)
	}
	if err := d.ready(op); err != nil {
		return err
	}
	if !on && ob.reg == regOutputCtl && bitx.IsSet(sp.forceOn, ob.bit) {
		return invalid(op, r.String()+" cannot be switched off")
	}
	v, err := d.readReg(ob.reg)
	if err != nil {
		return err
	}
	v = bitx.Put(v, ob.bit, on)
	if ob.reg == regOutputCtl {
		v |= sp.forceOn
	}
	if err := d.writeReg(ob.reg, v); err != nil {
		return err
	}
	time.Sleep(outputSettle)
	rb, err := d.readReg(ob.reg)
	if err != nil {
		return err
	}
	if rb != v {
		return errcode.New(errcode.IOError, "axp: "+op,
			"read back 0x"+strconv.FormatUint(uint64(rb), 16)+", wrote 0x"+strconv.FormatUint(uint64(v), 16))
	}
	d.c.outputs[ob.reg] = rb
	return nil
}

// PowerOutputEnabled reports the cached switch state of rail.
func (d *Device) PowerOutputEnabled(r Rail) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	op := r.String() + " enabled"
	ob, ok := d.v.spec().outputs[r]
	if !ok {
		return false, d.unsupported(op)
	}
	if err := d.ready(op); err != nil {
		return false, err
	}
	return bitx.IsSet(d.c.outputs[ob.reg], ob.bit), nil
}

// LDO3Mode selects what drives the AXP202 LDO3 pin.
type LDO3Mode uint8

const (
	LDO3ModeLDO  LDO3Mode = iota // regulated by the LDO3 setpoint
	LDO3ModeDCIn                 // passthrough from the DC input
)

func (d *Device) SetLDO3Mode(m LDO3Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.v.spec().ldo3Mode {
		return d.unsupported("set ldo3 mode")
	}
	if err := d.ready("set ldo3 mode"); err != nil {
		return err
	}
	if m > LDO3ModeDCIn {
		return invalid("set ldo3 mode", "unknown mode")
	}
	dcin := m == LDO3ModeDCIn
	if dcin == d.c.ldo3DCIn {
		return nil
	}
	if _, err := d.modifyReg(regLDO3Out, func(v byte) byte { return bitx.Put(v, ldo3DCInBit, dcin) }); err != nil {
		return err
	}
	d.c.ldo3DCIn = dcin
	return nil
}

func (d *Device) LDO3Mode() (LDO3Mode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.v.spec().ldo3Mode {
		return LDO3ModeLDO, d.unsupported("ldo3 mode")
	}
	if err := d.ready("ldo3 mode"); err != nil {
		return LDO3ModeLDO, err
	}
	if d.c.ldo3DCIn {
		return LDO3ModeDCIn, nil
	}
	return LDO3ModeLDO, nil
}
