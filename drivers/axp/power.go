package axp

import (
	"time"

	"axp-go/x/bitx"
	"axp-go/x/mathx"
)

// ---------------- PEK (power key) timing, 0x36 ----------------

var (
	longPressTimes = []time.Duration{time.Second, 1500 * time.Millisecond, 2 * time.Second, 2500 * time.Millisecond}
	shutdownTimes  = []time.Duration{4 * time.Second, 6 * time.Second, 8 * time.Second, 10 * time.Second}
)

const (
	pokLongPressKeep = 0xCF // bits 5:4
	pokShutdownKeep  = 0xFC // bits 1:0
	pokStartupKeep   = 0x3F // bits 7:6
	pokTimeoutOffBit = 3
)

func indexOf(tbl []time.Duration, v time.Duration) (byte, bool) {
	for i, t := range tbl {
		if t == v {
			return byte(i), true
		}
	}
	return 0, false
}

// setPOK embeds a field into the cached POK register and writes it through.
func (d *Device) setPOK(keep byte, shift uint8, f byte) error {
	nv := bitx.Embed(d.c.pok, keep, f, shift)
	if nv == d.c.pok {
		return nil
	}
	if err := d.writeReg(regPOKSet, nv); err != nil {
		return err
	}
	d.c.pok = nv
	return nil
}

// SetLongPressTime selects how long the power key must be held to raise the
// long-press interrupt: 1s, 1.5s, 2s or 2.5s.
func (d *Device) SetLongPressTime(t time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set long press"); err != nil {
		return err
	}
	f, ok := indexOf(longPressTimes, t)
	if !ok {
		return invalid("set long press", t.String()+" is not 1s, 1.5s, 2s or 2.5s")
	}
	return d.setPOK(pokLongPressKeep, 4, f)
}

func (d *Device) LongPressTime() (time.Duration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("long press"); err != nil {
		return 0, err
	}
	return longPressTimes[bitx.Field(d.c.pok, pokLongPressKeep, 4)], nil
}

// SetShutdownTime selects the hold time for a forced power off: 4s, 6s, 8s or 10s.
func (d *Device) SetShutdownTime(t time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set shutdown time"); err != nil {
		return err
	}
	f, ok := indexOf(shutdownTimes, t)
	if !ok {
		return invalid("set shutdown time", t.String()+" is not 4s, 6s, 8s or 10s")
	}
	return d.setPOK(pokShutdownKeep, 0, f)
}

func (d *Device) ShutdownTime() (time.Duration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("shutdown time"); err != nil {
		return 0, err
	}
	return shutdownTimes[bitx.Field(d.c.pok, pokShutdownKeep, 0)], nil
}

// SetTimeoutShutdown enables powering off once the shutdown hold time elapses.
func (d *Device) SetTimeoutShutdown(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set timeout shutdown"); err != nil {
		return err
	}
	var f byte
	if on {
		f = 1
	}
	return d.setPOK(^byte(1<<pokTimeoutOffBit), pokTimeoutOffBit, f)
}

func (d *Device) TimeoutShutdown() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("timeout shutdown"); err != nil {
		return false, err
	}
	return bitx.IsSet(d.c.pok, pokTimeoutOffBit), nil
}

// SetStartupTime selects the key hold time needed to power on. The legal
// values differ per chip; see StartupTimes.
func (d *Device) SetStartupTime(t time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tbl := d.v.spec().startup
	if tbl == nil {
		return d.unsupported("set startup time")
	}
	if err := d.ready("set startup time"); err != nil {
		return err
	}
	f, ok := indexOf(tbl, t)
	if !ok {
		return invalid("set startup time", t.String()+" is not a selectable startup time")
	}
	return d.setPOK(pokStartupKeep, 6, f)
}

func (d *Device) StartupTime() (time.Duration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tbl := d.v.spec().startup
	if tbl == nil {
		return 0, d.unsupported("startup time")
	}
	if err := d.ready("startup time"); err != nil {
		return 0, err
	}
	return tbl[bitx.Field(d.c.pok, pokStartupKeep, 6)], nil
}

// StartupTimes lists the selectable startup times, nil when fixed.
func (d *Device) StartupTimes() []time.Duration {
	return append([]time.Duration(nil), d.v.spec().startup...)
}

// ---------------- Charging, 0x33 ----------------

// Charge current steps in mA, indexed by the 4-bit field.
var chargeCurrents = []uint16{100, 190, 280, 360, 450, 550, 630, 700, 780, 880, 960, 1000, 1080, 1160, 1240, 1320}

// Charge target voltages in mV, indexed by bits 6:5.
var chargeTargets = []uint16{4100, 4150, 4200, 4360}

const (
	charge1EnableBit   = 7
	charge1TargetKeep  = 0x9F
	charge1CurrentKeep = 0xF0
)

func (d *Device) setCharge1(nv byte) error {
	if nv == d.c.charge1 {
		return nil
	}
	if err := d.writeReg(regCharge1, nv); err != nil {
		return err
	}
	d.c.charge1 = nv
	return nil
}

func (d *Device) SetChargingEnabled(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set charging"); err != nil {
		return err
	}
	return d.setCharge1(bitx.Put(d.c.charge1, charge1EnableBit, on))
}

func (d *Device) ChargingEnabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("charging enabled"); err != nil {
		return false, err
	}
	return bitx.IsSet(d.c.charge1, charge1EnableBit), nil
}

// SetChargeCurrent programs the constant-current charge limit. Requests above
// 1320mA are clamped to 1320mA; requests between steps round down. Requests
// below 100mA are rejected.
func (d *Device) SetChargeCurrent(mA uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set charge current"); err != nil {
		return err
	}
	if mA < chargeCurrents[0] {
		return invalid("set charge current", "minimum is 100mA")
	}
	mA = mathx.Min(mA, chargeCurrents[len(chargeCurrents)-1])
	var f byte
	for i, c := range chargeCurrents {
		if c <= mA {
			f = byte(i)
		}
	}
	return d.setCharge1(bitx.Embed(d.c.charge1, charge1CurrentKeep, f, 0))
}

func (d *Device) ChargeCurrent() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("charge current"); err != nil {
		return 0, err
	}
	return chargeCurrents[bitx.Field(d.c.charge1, charge1CurrentKeep, 0)], nil
}

// SetChargeTargetVoltage selects 4100, 4150, 4200 or 4360 mV.
func (d *Device) SetChargeTargetVoltage(mV uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set charge target"); err != nil {
		return err
	}
	for i, v := range chargeTargets {
		if v == mV {
			return d.setCharge1(bitx.Embed(d.c.charge1, charge1TargetKeep, byte(i), 5))
		}
	}
	return invalid("set charge target", "target must be 4100, 4150, 4200 or 4360mV")
}

func (d *Device) ChargeTargetVoltage() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("charge target"); err != nil {
		return 0, err
	}
	return chargeTargets[bitx.Field(d.c.charge1, charge1TargetKeep, 5)], nil
}

// ChargeLEDMode drives the CHGLED pin from register 0x32.
type ChargeLEDMode uint8

const (
	ChargeLEDOff ChargeLEDMode = iota
	ChargeLEDBlink1Hz
	ChargeLEDBlink4Hz
	ChargeLEDLow
)

const (
	offCtlLEDKeep   = 0xCF
	offCtlLEDManual = 3
	offCtlShutdown  = 7
)

func (d *Device) SetChargeLED(m ChargeLEDMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set charge led"); err != nil {
		return err
	}
	if m > ChargeLEDLow {
		return invalid("set charge led", "unknown mode")
	}
	_, err := d.modifyReg(regOffCtl, func(v byte) byte {
		return bitx.Set(bitx.Embed(v, offCtlLEDKeep, byte(m), 4), offCtlLEDManual)
	})
	return err
}

// Shutdown powers the PMIC off. Every rail drops; nothing after this returns.
func (d *Device) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("shutdown"); err != nil {
		return err
	}
	_, err := d.modifyReg(regOffCtl, func(v byte) byte { return bitx.Set(v, offCtlShutdown) })
	return err
}

// LimitingOff removes the VBUS input current limit.
func (d *Device) LimitingOff() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("limiting off"); err != nil {
		return err
	}
	return d.v.limitingOff(d)
}

// ---------------- Status, 0x00/0x01 ----------------

func (d *Device) statusBit(op string, reg, bit uint8) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(op); err != nil {
		return false, err
	}
	v, err := d.readReg(reg)
	if err != nil {
		return false, err
	}
	return bitx.IsSet(v, bit), nil
}

func (d *Device) IsVBusPlugged() (bool, error) {
	return d.statusBit("vbus status", regStatus, statusVBusPresent)
}

func (d *Device) IsACINPlugged() (bool, error) {
	return d.statusBit("acin status", regStatus, statusACINPresent)
}

// IsCharging reads the live charge indication.
func (d *Device) IsCharging() (bool, error) {
	return d.statusBit("charge status", regModeChgState, modeCharging)
}

func (d *Device) IsBatteryConnected() (bool, error) {
	return d.statusBit("battery status", regModeChgState, modeBattery)
}

// BatteryPercentage returns the AXP202 fuel gauge estimate, 0 when no battery
// is present or the gauge is not yet valid.
func (d *Device) BatteryPercentage() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.v.spec().batteryPercent {
		return 0, d.unsupported("battery percentage")
	}
	if err := d.ready("battery percentage"); err != nil {
		return 0, err
	}
	st, err := d.readReg(regModeChgState)
	if err != nil {
		return 0, err
	}
	if !bitx.IsSet(st, modeBattery) {
		return 0, nil
	}
	v, err := d.readReg(regBattPercent)
	if err != nil {
		return 0, err
	}
	if bitx.IsSet(v, 7) {
		return 0, nil
	}
	return v & 0x7F, nil
}

// ---------------- Timer, 0x8A ----------------

// SetTimer programs the countdown timer with minutes (0..63); 0 leaves it
// disarmed. Expiry raises the timer-timeout interrupt.
func (d *Device) SetTimer(minutes uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set timer"); err != nil {
		return err
	}
	if minutes > 63 {
		return invalid("set timer", "minutes must be 0..63")
	}
	return d.writeReg(regTimerCtl, minutes)
}

// OffTimer stops the timer and clears a pending timeout.
func (d *Device) OffTimer() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("off timer"); err != nil {
		return err
	}
	return d.writeReg(regTimerCtl, 0x80)
}

// ClearTimer acknowledges a timeout and keeps the programmed minutes.
func (d *Device) ClearTimer() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("clear timer"); err != nil {
		return err
	}
	v, err := d.readReg(regTimerCtl)
	if err != nil {
		return err
	}
	return d.writeReg(regTimerCtl, bitx.Set(v, 7))
}
