package axp

import "axp-go/x/bitx"

// Reading names an ADC measurement.
type Reading uint8

const (
	AcinVoltage Reading = iota + 1
	AcinCurrent
	VBusVoltage
	VBusCurrent
	InternalTemp
	TSVoltage
	GPIO0Voltage
	GPIO1Voltage
	BatteryVoltage
	BatteryChargeCurrent
	BatteryDischargeCurrent
	APSVoltage
)

// adcSpec converts a register pair: value = raw*num/den + off, in mV, mA or m°C.
type adcSpec struct {
	reg      uint8
	l5       bool // low register carries five bits instead of four
	num, den int32
	off      int32
}

// adcTable is the family-wide conversion table. chargeL5 selects the 13-bit
// charge current layout of the AXP173/AXP192.
//
// LSB weights: ACIN and VBUS voltage 1.7mV, ACIN current 0.625mA, VBUS
// current 0.375mA, internal temperature 0.1°C from -144.7°C, TS 0.8mV,
// GPIO0/1 0.5mV, battery voltage 1.1mV, battery currents 0.5mA, APS 1.4mV.
func adcTable(chargeL5 bool) map[Reading]adcSpec {
	return map[Reading]adcSpec{
		AcinVoltage:             {reg: regAcinVolH, num: 17, den: 10},
		AcinCurrent:             {reg: regAcinCurH, num: 625, den: 1000},
		VBusVoltage:             {reg: regVBusVolH, num: 17, den: 10},
		VBusCurrent:             {reg: regVBusCurH, num: 375, den: 1000},
		InternalTemp:            {reg: regInternalTmpH, num: 100, den: 1, off: -144700},
		TSVoltage:               {reg: regTSVolH, num: 8, den: 10},
		GPIO0Voltage:            {reg: regGPIO0VolH, num: 5, den: 10},
		GPIO1Voltage:            {reg: regGPIO1VolH, num: 5, den: 10},
		BatteryVoltage:          {reg: regBatVolH, num: 11, den: 10},
		BatteryChargeCurrent:    {reg: regBatChgCurH, l5: chargeL5, num: 5, den: 10},
		BatteryDischargeCurrent: {reg: regBatDchgCurH, l5: true, num: 5, den: 10},
		APSVoltage:              {reg: regAPSVolH, num: 14, den: 10},
	}
}

// Read returns r converted to mV, mA or m°C (InternalTemp).
func (d *Device) Read(r Reading) (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readADC(r)
}

func (d *Device) readADC(r Reading) (int32, error) {
	if err := d.ready("adc read"); err != nil {
		return 0, err
	}
	a, ok := d.v.spec().adc[r]
	if !ok {
		return 0, invalid("adc read", "unknown reading")
	}
	var b [2]byte
	if err := d.readBytes(a.reg, b[:]); err != nil {
		return 0, err
	}
	raw := bitx.H8L4(b[0], b[1])
	if a.l5 {
		raw = bitx.H8L5(b[0], b[1])
	}
	return int32(raw)*a.num/a.den + a.off, nil
}

func (d *Device) AcinVoltage_mV() (int32, error)      { return d.Read(AcinVoltage) }
func (d *Device) AcinCurrent_mA() (int32, error)      { return d.Read(AcinCurrent) }
func (d *Device) VBusVoltage_mV() (int32, error)      { return d.Read(VBusVoltage) }
func (d *Device) VBusCurrent_mA() (int32, error)      { return d.Read(VBusCurrent) }
func (d *Device) InternalTemp_mC() (int32, error)     { return d.Read(InternalTemp) }
func (d *Device) TSVoltage_mV() (int32, error)        { return d.Read(TSVoltage) }
func (d *Device) GPIO0Voltage_mV() (int32, error)     { return d.Read(GPIO0Voltage) }
func (d *Device) GPIO1Voltage_mV() (int32, error)     { return d.Read(GPIO1Voltage) }
func (d *Device) BatteryVoltage_mV() (int32, error)   { return d.Read(BatteryVoltage) }
func (d *Device) BatteryCharge_mA() (int32, error)    { return d.Read(BatteryChargeCurrent) }
func (d *Device) BatteryDischarge_mA() (int32, error) { return d.Read(BatteryDischargeCurrent) }
func (d *Device) APSVoltage_mV() (int32, error)       { return d.Read(APSVoltage) }

// BatteryPower_uW returns the instantaneous battery power from the 24-bit
// product register (2 * 1.1mV * 0.5mA per LSB).
func (d *Device) BatteryPower_uW() (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("battery power"); err != nil {
		return 0, err
	}
	var b [3]byte
	if err := d.readBytes(regBatPowerH, b[:]); err != nil {
		return 0, err
	}
	raw := int64(b[0])<<16 | int64(b[1])<<8 | int64(b[2])
	return raw * 11 / 10, nil
}
