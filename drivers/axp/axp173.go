package axp

import "axp-go/x/bitx"

// AXP173: no identity register, no DC-DC3, no GPIO, interrupt status bank
// not readable. DC-DC2 and EXTEN switch in 0x10 instead of 0x12.
type axp173 struct{}

var specAXP173 = chipSpec{
	chip: AXP173,
	id:   ChipIDAXP173,
	addr: AddressAXP173,
	rails: map[Rail]railSpec{
		DCDC1: {reg: regDC1Out, keep: 0x80, min: 700, max: 3500, step: 25},
		DCDC2: {reg: regDC2Out, keep: 0xC0, min: 700, max: 2275, step: 25},
		LDO2:  {reg: regLDO2x, keep: 0x0F, shift: 4, min: 1800, max: 3300, step: 100},
		LDO3:  {reg: regLDO2x, keep: 0xF0, min: 1800, max: 3300, step: 100},
		LDO4:  {reg: regDC3Out, keep: 0x80, min: 700, max: 3500, step: 25},
	},
	outputs: map[Rail]outputBit{
		DCDC1: {regOutputCtl, 0},
		LDO4:  {regOutputCtl, 1},
		LDO2:  {regOutputCtl, 2},
		LDO3:  {regOutputCtl, 3},
		DCDC2: {regExtenDC2Ctl, 0},
		EXTEN: {regExtenDC2Ctl, 2},
	},
	irqEnable: [5]uint8{regIntEn1, regIntEn2, regIntEn3, regIntEn4, regIntEn5192},
	adc:       adcTable(true),
}

func (axp173) spec() *chipSpec { return &specAXP173 }

// probe accepts any status byte other than an idle (0x00) or floating (0xFF) bus.
func (axp173) probe(d *Device) (byte, error) {
	v, err := d.readReg(regModeChgState)
	if err != nil {
		return 0, err
	}
	if v == 0x00 || v == 0xFF {
		return v, identityErr(AXP173, ChipIDAXP173, v)
	}
	return ChipIDAXP173, nil
}

func (axp173) seed(*Device) error { return nil }

// limitingOff clears the VBUS current-limit enable.
func (axp173) limitingOff(d *Device) error {
	_, err := d.modifyReg(regIPSSet, func(v byte) byte { return bitx.Clear(v, 1) })
	return err
}

func (axp173) writeGPIO(d *Device, _ uint8, _ bool) error { return d.unsupported("gpio write") }
