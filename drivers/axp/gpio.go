package axp

import (
	"strconv"

	"axp-go/x/bitx"
	"axp-go/x/mathx"
)

// GPIOMode is a pin function. Which modes a pin accepts depends on the chip
// and the pin.
type GPIOMode uint8

const (
	GPIOOutputLow GPIOMode = iota
	GPIOOutputHigh
	GPIOInput
	GPIOLDO
	GPIOADC
	GPIOFloating
	GPIOOpenDrain
	GPIOPWM
)

// GPIOEdge selects which input edges raise the pin interrupt.
type GPIOEdge uint8

const (
	GPIOEdgeNone GPIOEdge = iota
	GPIOEdgeRising
	GPIOEdgeFalling
	GPIOEdgeBoth
)

type gpioPin struct {
	ctl    uint8 // control register
	keep   byte
	shift  uint8
	enable byte // ORed into ctl on every mode write
	modes  map[GPIOMode]byte
	in     outputBit
	out    outputBit
	irq    bool // edge selection in ctl bits 7:6
}

// GPIOCount returns the number of pins the chip exposes.
func (d *Device) GPIOCount() int { return len(d.v.spec().gpio) }

// checkPin validates pin for op. ok is false when the caller must return err
// as is, including the inert nil of a pinless chip before Initialize.
// Callers hold d.mu.
func (d *Device) checkPin(op string, pin uint8) (p gpioPin, ok bool, err error) {
	pins := d.v.spec().gpio
	if len(pins) == 0 {
		return gpioPin{}, false, d.unsupported(op)
	}
	if err := d.ready(op); err != nil {
		return gpioPin{}, false, err
	}
	if !mathx.Between(int(pin), 0, len(pins)-1) {
		return gpioPin{}, false, invalid(op, "no gpio"+strconv.Itoa(int(pin)))
	}
	return pins[pin], true, nil
}

func (d *Device) SetGPIOMode(pin uint8, m GPIOMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok, err := d.checkPin("gpio mode", pin); !ok {
		return err
	}
	return d.setGPIOMode(pin, m)
}

// setGPIOMode expects d.mu held and pin validated.
func (d *Device) setGPIOMode(pin uint8, m GPIOMode) error {
	p := d.v.spec().gpio[pin]
	f, ok := p.modes[m]
	if !ok {
		return invalid("gpio mode", "gpio"+strconv.Itoa(int(pin))+" does not support mode "+strconv.Itoa(int(m)))
	}
	_, err := d.modifyReg(p.ctl, func(v byte) byte { return bitx.Embed(v, p.keep, f, p.shift) | p.enable })
	return err
}

// GPIORead returns the input level of pin.
func (d *Device) GPIORead(pin uint8) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok, err := d.checkPin("gpio read", pin)
	if !ok {
		return false, err
	}
	v, err := d.readReg(p.in.reg)
	if err != nil {
		return false, err
	}
	return bitx.IsSet(v, p.in.bit), nil
}

// GPIOWrite drives pin. Pins that can only sink current reject high.
func (d *Device) GPIOWrite(pin uint8, high bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok, err := d.checkPin("gpio write", pin); !ok {
		return err
	}
	return d.v.writeGPIO(d, pin, high)
}

// SetGPIOIRQ selects the interrupt edges of pin.
func (d *Device) SetGPIOIRQ(pin uint8, e GPIOEdge) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok, err := d.checkPin("gpio irq", pin)
	if !ok {
		return err
	}
	if !p.irq {
		return d.unsupported("gpio irq")
	}
	if e > GPIOEdgeBoth {
		return invalid("gpio irq", "unknown edge")
	}
	var f byte
	switch e {
	case GPIOEdgeRising:
		f = 0b10
	case GPIOEdgeFalling:
		f = 0b01
	case GPIOEdgeBoth:
		f = 0b11
	}
	_, err = d.modifyReg(p.ctl, func(v byte) byte { return bitx.Embed(v, 0x3F, f, 6) })
	return err
}
