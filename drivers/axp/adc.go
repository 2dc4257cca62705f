package axp

import "axp-go/x/bitx"

// ADCChannel selects converter inputs. The low byte maps to ADC enable
// register 1 (0x82), the high byte to register 2 (0x83).
type ADCChannel uint16

const (
	ADCTSPin          ADCChannel = 1 << 0
	ADCAPSVoltage     ADCChannel = 1 << 1
	ADCVBusCurrent    ADCChannel = 1 << 2
	ADCVBusVoltage    ADCChannel = 1 << 3
	ADCAcinCurrent    ADCChannel = 1 << 4
	ADCAcinVoltage    ADCChannel = 1 << 5
	ADCBatteryCurrent ADCChannel = 1 << 6
	ADCBatteryVoltage ADCChannel = 1 << 7

	ADCGPIO1        ADCChannel = 1 << (8 + 2)
	ADCGPIO0        ADCChannel = 1 << (8 + 3)
	ADCInternalTemp ADCChannel = 1 << (8 + 7)
)

// EnableADC turns the channels in ch on or off, leaving the others alone.
func (d *Device) EnableADC(ch ADCChannel, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("enable adc"); err != nil {
		return err
	}
	for i, reg := range [2]uint8{regADCEn1, regADCEn2} {
		m := byte(ch >> (8 * i))
		if m == 0 {
			continue
		}
		set, clr := m, byte(0)
		if !on {
			set, clr = 0, m
		}
		if _, err := d.modifyBitmaskRegister(reg, set, clr); err != nil {
			return err
		}
	}
	return nil
}

// ADCEnabled returns the channels currently enabled.
func (d *Device) ADCEnabled() (ADCChannel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("adc enabled"); err != nil {
		return 0, err
	}
	var b [2]byte
	if err := d.readBytes(regADCEn1, b[:]); err != nil {
		return 0, err
	}
	return ADCChannel(b[0]) | ADCChannel(b[1])<<8, nil
}

// ---------------- ADC speed and TS pin, 0x84 ----------------

var adcRates = []uint16{25, 50, 100, 200}

// TSCurrent is the TS pin bias current.
type TSCurrent uint8

const (
	TSCurrent20uA TSCurrent = iota
	TSCurrent40uA
	TSCurrent60uA
	TSCurrent80uA
)

// TSFunction selects what the TS pin measures.
type TSFunction uint8

const (
	TSFunctionBatteryTemp TSFunction = iota
	TSFunctionExternalADC
)

// TSMode selects when the TS bias current flows.
type TSMode uint8

const (
	TSModeOff TSMode = iota
	TSModeCharging
	TSModeSampling
	TSModeAlways
)

func (d *Device) setADCSpeed(keep byte, f byte, shift uint8) error {
	nv := bitx.Embed(d.c.adcSpeed, keep, f, shift)
	if nv == d.c.adcSpeed {
		return nil
	}
	if err := d.writeReg(regADCSpeed, nv); err != nil {
		return err
	}
	d.c.adcSpeed = nv
	return nil
}

// SetADCSampleRate selects 25, 50, 100 or 200 Hz.
func (d *Device) SetADCSampleRate(hz uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set adc rate"); err != nil {
		return err
	}
	for i, r := range adcRates {
		if r == hz {
			return d.setADCSpeed(0x3F, byte(i), 6)
		}
	}
	return invalid("set adc rate", "rate must be 25, 50, 100 or 200Hz")
}

func (d *Device) ADCSampleRate() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("adc rate"); err != nil {
		return 0, err
	}
	return d.adcRate(), nil
}

func (d *Device) adcRate() uint16 { return adcRates[bitx.Field(d.c.adcSpeed, 0x3F, 6)] }

func (d *Device) SetTSCurrent(c TSCurrent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set ts current"); err != nil {
		return err
	}
	if c > TSCurrent80uA {
		return invalid("set ts current", "unknown current")
	}
	return d.setADCSpeed(0xCF, byte(c), 4)
}

func (d *Device) SetTSFunction(f TSFunction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set ts function"); err != nil {
		return err
	}
	if f > TSFunctionExternalADC {
		return invalid("set ts function", "unknown function")
	}
	return d.setADCSpeed(0xFB, byte(f), 2)
}

// SetTSMode also switches the TS channel of the ADC so that TSModeOff stops
// sampling the pin altogether.
func (d *Device) SetTSMode(m TSMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("set ts mode"); err != nil {
		return err
	}
	if m > TSModeAlways {
		return invalid("set ts mode", "unknown mode")
	}
	if err := d.setADCSpeed(0xFC, byte(m), 0); err != nil {
		return err
	}
	set, clr := byte(ADCTSPin), byte(0)
	if m == TSModeOff {
		set, clr = 0, byte(ADCTSPin)
	}
	_, err := d.modifyBitmaskRegister(regADCEn1, set, clr)
	return err
}

// ---------------- Coulomb counter, 0xB0..0xB8 ----------------

func (d *Device) setCoulombCtl(op string, v byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(op); err != nil {
		return err
	}
	if v == d.c.coulombCtl {
		return nil
	}
	if err := d.writeReg(regCoulombCtl, v); err != nil {
		return err
	}
	d.c.coulombCtl = v
	return nil
}

func (d *Device) EnableCoulombCounter() error  { return d.setCoulombCtl("enable coulomb", coulombEnable) }
func (d *Device) DisableCoulombCounter() error { return d.setCoulombCtl("disable coulomb", coulombDisable) }

// StopCoulombCounter pauses accumulation without clearing.
func (d *Device) StopCoulombCounter() error { return d.setCoulombCtl("stop coulomb", coulombStop) }

// ClearCoulombCounter zeroes both accumulators. The clear bit self-resets and
// the counter is left enabled.
func (d *Device) ClearCoulombCounter() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("clear coulomb"); err != nil {
		return err
	}
	if err := d.writeReg(regCoulombCtl, coulombClear); err != nil {
		return err
	}
	d.c.coulombCtl = coulombEnable
	return nil
}

// CoulombCounters returns the raw charge and discharge accumulators. Both are
// read in one transfer so neither can tear against a concurrent update.
func (d *Device) CoulombCounters() (charge, discharge uint32, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("coulomb counters"); err != nil {
		return 0, 0, err
	}
	var b [8]byte
	if err := d.readBytes(regCoulombChg, b[:]); err != nil {
		return 0, 0, err
	}
	return bitx.BE32(b[0:4]), bitx.BE32(b[4:8]), nil
}

// Coulomb_uAh returns the net charge (charged minus discharged) in µAh,
// scaled by the current ADC sample rate.
func (d *Device) Coulomb_uAh() (int64, error) {
	c, dc, err := d.CoulombCounters()
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	rate := int64(d.adcRate())
	d.mu.Unlock()
	// 65536 * 0.5mA * counts / 3600s / rate
	return 32_768_000 * (int64(c) - int64(dc)) / 3600 / rate, nil
}
