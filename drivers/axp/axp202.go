package axp

import (
	"time"

	"axp-go/x/bitx"
)

// AXP202: DC-DC3 is always forced on when the switch register is written,
// LDO3 doubles as a DC-in passthrough, LDO4 and LDO5 use voltage tables.
type axp202 struct{}

var (
	ldo4Table202 = []uint16{1250, 1300, 1400, 1500, 1600, 1700, 1800, 1900, 2000, 2500, 2700, 2800, 3000, 3100, 3200, 3300}
	ldo5Table202 = []uint16{1800, 2500, 2800, 3000, 3100, 3300, 3400, 3500}
)

var specAXP202 = chipSpec{
	chip: AXP202,
	id:   ChipIDAXP202,
	addr: AddressAXP202,
	rails: map[Rail]railSpec{
		DCDC2: {reg: regDC2Out, keep: 0xC0, min: 700, max: 2275, step: 25},
		DCDC3: {reg: regDC3Out, keep: 0x80, min: 700, max: 3500, step: 25},
		LDO2:  {reg: regLDO2x, keep: 0x0F, shift: 4, min: 1800, max: 3300, step: 100},
		LDO3:  {reg: regLDO3Out, keep: 0x80, min: 700, max: 1800, step: 25},
		LDO4:  {reg: regLDO2x, keep: 0xF0, table: ldo4Table202},
		LDO5:  {reg: regGPIO0Vol, keep: 0xF8, table: ldo5Table202},
	},
	outputs: map[Rail]outputBit{
		EXTEN: {regOutputCtl, 0},
		DCDC3: {regOutputCtl, 1},
		LDO2:  {regOutputCtl, 2},
		LDO4:  {regOutputCtl, 3},
		DCDC2: {regOutputCtl, 4},
		LDO3:  {regOutputCtl, 6},
	},
	forceOn:   1 << 1,
	irqEnable: [5]uint8{regIntEn1, regIntEn2, regIntEn3, regIntEn4, regIntEn5202},
	irqStatus: []uint8{regIntSts1202, regIntSts2202, regIntSts3202, regIntSts4202, regIntSts5202},
	adc:       adcTable(false),
	startup:   []time.Duration{128 * time.Millisecond, 3 * time.Second, time.Second, 2 * time.Second},
	gpio: []gpioPin{
		{ctl: regGPIO0Ctl, keep: 0xF8, modes: modes202GPIO0, in: outputBit{regGPIO012Sig, 4}, irq: true},
		{ctl: regGPIO1Ctl, keep: 0xF8, modes: modes202GPIO1, in: outputBit{regGPIO012Sig, 5}, irq: true},
		{ctl: regGPIO2Ctl, keep: 0xF8, modes: modes202GPIO2, in: outputBit{regGPIO012Sig, 6}, irq: true},
		{ctl: regGPIO3Ctl, keep: 0xFB, shift: 2, modes: modes202GPIO3, in: outputBit{regGPIO3Ctl, 0}, irq: true},
	},
	batteryPercent: true,
	ldo3Mode:       true,
}

var (
	modes202GPIO0 = map[GPIOMode]byte{GPIOOutputLow: 0, GPIOOutputHigh: 1, GPIOInput: 2, GPIOLDO: 3, GPIOADC: 4}
	modes202GPIO1 = map[GPIOMode]byte{GPIOOutputLow: 0, GPIOOutputHigh: 1, GPIOInput: 2, GPIOADC: 4}
	modes202GPIO2 = map[GPIOMode]byte{GPIOOutputLow: 0, GPIOFloating: 1, GPIOInput: 2}
	modes202GPIO3 = map[GPIOMode]byte{GPIOOpenDrain: 0, GPIOInput: 1}
)

const ldo3DCInBit = 7 // 0x29

func (axp202) spec() *chipSpec { return &specAXP202 }

func (axp202) probe(d *Device) (byte, error) { return probeID(d) }

func (axp202) seed(d *Device) error {
	v, err := d.readReg(regLDO3Out)
	if err != nil {
		return err
	}
	d.c.ldo3DCIn = bitx.IsSet(v, ldo3DCInBit)
	return nil
}

// limitingOff selects "no limit" for the VBUS input current.
func (axp202) limitingOff(d *Device) error {
	_, err := d.modifyReg(regIPSSet, func(v byte) byte { return v | 0x03 })
	return err
}

// writeGPIO: GPIO0/1 switch between output-low and output-high modes, GPIO2
// and GPIO3 can only be pulled low.
func (axp202) writeGPIO(d *Device, pin uint8, high bool) error {
	switch pin {
	case 0, 1:
		m := GPIOOutputLow
		if high {
			m = GPIOOutputHigh
		}
		return d.setGPIOMode(pin, m)
	case 2:
		if high {
			return invalid("gpio write", "gpio2 only drives low; use GPIOFloating to release")
		}
		return d.setGPIOMode(pin, GPIOOutputLow)
	default:
		if high {
			return invalid("gpio write", "gpio3 only drives low")
		}
		_, err := d.modifyReg(regGPIO3Ctl, func(v byte) byte { return bitx.Clear(v, 1) })
		return err
	}
}
