package axp

import (
	"time"

	"axp-go/x/bitx"
)

type axp192 struct{}

var specAXP192 = chipSpec{
	chip: AXP192,
	id:   ChipIDAXP192,
	addr: AddressAXP192,
	rails: map[Rail]railSpec{
		DCDC1: {reg: regDC1Out, keep: 0x80, min: 700, max: 3500, step: 25},
		DCDC2: {reg: regDC2Out, keep: 0xC0, min: 700, max: 2275, step: 25},
		DCDC3: {reg: regDC3Out, keep: 0x80, min: 700, max: 3500, step: 25},
		LDO2:  {reg: regLDO2x, keep: 0x0F, shift: 4, min: 1800, max: 3300, step: 100},
		LDO3:  {reg: regLDO2x, keep: 0xF0, min: 1800, max: 3300, step: 100},
		LDO5:  {reg: regGPIO0Vol, keep: 0x0F, shift: 4, min: 1800, max: 3300, step: 100},
	},
	outputs: map[Rail]outputBit{
		DCDC1: {regOutputCtl, 0},
		DCDC3: {regOutputCtl, 1},
		LDO2:  {regOutputCtl, 2},
		LDO3:  {regOutputCtl, 3},
		DCDC2: {regOutputCtl, 4},
		EXTEN: {regOutputCtl, 6},
	},
	irqEnable: [5]uint8{regIntEn1, regIntEn2, regIntEn3, regIntEn4, regIntEn5192},
	irqStatus: []uint8{regIntSts1192, regIntSts2192, regIntSts3192, regIntSts4192, regIntSts5192},
	adc:       adcTable(true),
	startup:   []time.Duration{128 * time.Millisecond, 512 * time.Millisecond, time.Second, 2 * time.Second},
	gpio: []gpioPin{
		{ctl: regGPIO0Ctl, keep: 0xF8, modes: modes192GPIO0, in: outputBit{regGPIO012Sig, 4}, out: outputBit{regGPIO012Sig, 0}},
		{ctl: regGPIO1Ctl, keep: 0xF8, modes: modes192GPIO12, in: outputBit{regGPIO012Sig, 5}, out: outputBit{regGPIO012Sig, 1}},
		{ctl: regGPIO2Ctl, keep: 0xF8, modes: modes192GPIO12, in: outputBit{regGPIO012Sig, 6}, out: outputBit{regGPIO012Sig, 2}},
		{ctl: regGPIO3Ctl, keep: 0xFC, enable: 0x80, modes: modes192GPIO3, in: outputBit{regGPIO34Sig, 4}, out: outputBit{regGPIO34Sig, 0}},
		{ctl: regGPIO3Ctl, keep: 0xF3, shift: 2, enable: 0x80, modes: modes192GPIO4, in: outputBit{regGPIO34Sig, 5}, out: outputBit{regGPIO34Sig, 1}},
	},
}

var (
	modes192GPIO0 = map[GPIOMode]byte{
		GPIOOpenDrain: 0b000, GPIOInput: 0b001, GPIOLDO: 0b010, GPIOADC: 0b100,
		GPIOOutputLow: 0b101, GPIOFloating: 0b110,
	}
	modes192GPIO12 = map[GPIOMode]byte{
		GPIOOpenDrain: 0b000, GPIOInput: 0b001, GPIOPWM: 0b010, GPIOADC: 0b100,
		GPIOOutputLow: 0b101, GPIOFloating: 0b110,
	}
	modes192GPIO3 = map[GPIOMode]byte{GPIOOpenDrain: 0b01, GPIOInput: 0b10, GPIOADC: 0b11}
	modes192GPIO4 = map[GPIOMode]byte{GPIOOpenDrain: 0b01, GPIOInput: 0b10}
)

func (axp192) spec() *chipSpec { return &specAXP192 }

func (axp192) probe(d *Device) (byte, error) { return probeID(d) }

func (axp192) seed(*Device) error { return nil }

func (axp192) limitingOff(d *Device) error {
	_, err := d.modifyReg(regIPSSet, func(v byte) byte { return bitx.Clear(v, 1) })
	return err
}

// writeGPIO drives the open-drain output latch of the pin.
func (axp192) writeGPIO(d *Device, pin uint8, high bool) error {
	o := specAXP192.gpio[pin].out
	_, err := d.modifyReg(o.reg, func(v byte) byte { return bitx.Put(v, o.bit, high) })
	return err
}
