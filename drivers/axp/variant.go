package axp

import (
	"time"

	"axp-go/errcode"

	"tinygo.org/x/drivers"
)

// Rail names a regulated output or output switch.
type Rail uint8

const (
	DCDC1 Rail = iota + 1
	DCDC2
	DCDC3
	LDO2
	LDO3
	LDO4
	LDO5 // LDOIO0 on GPIO0
	EXTEN
	numRails
)

var railNames = [numRails]string{"", "dcdc1", "dcdc2", "dcdc3", "ldo2", "ldo3", "ldo4", "ldo5", "exten"}

func (r Rail) String() string {
	if r == 0 || r >= numRails {
		return "rail?"
	}
	return railNames[r]
}

// ParseRail is the inverse of Rail.String.
func ParseRail(s string) (Rail, bool) {
	for r := Rail(1); r < numRails; r++ {
		if railNames[r] == s {
			return r, true
		}
	}
	return 0, false
}

// railSpec locates a rail voltage field. Linear rails encode
// (mV-min)/step; table rails encode the index into table.
type railSpec struct {
	reg   uint8
	keep  byte // bits outside the field
	shift uint8
	min   uint16
	max   uint16
	step  uint16
	table []uint16
}

// field validates mV and returns the field value to embed.
func (r railSpec) field(mV uint16) (byte, bool) {
	if r.table != nil {
		for i, v := range r.table {
			if v == mV {
				return byte(i), true
			}
		}
		return 0, false
	}
	if mV < r.min || mV > r.max {
		return 0, false
	}
	return byte((mV - r.min) / r.step), true
}

// millivolts decodes the rail from a raw register value.
func (r railSpec) millivolts(reg byte) uint16 {
	f := (reg &^ r.keep) >> r.shift
	if r.table != nil {
		if int(f) < len(r.table) {
			return r.table[f]
		}
		return 0
	}
	mV := r.min + uint16(f)*r.step
	if mV > r.max {
		return r.max
	}
	return mV
}

// outputBit locates a rail enable switch.
type outputBit struct {
	reg uint8
	bit uint8
}

// chipSpec is the declarative half of a variant: register placement, legal
// ranges and capability flags.
type chipSpec struct {
	chip    Chip
	id      byte
	addr    uint16
	rails   map[Rail]railSpec
	outputs map[Rail]outputBit
	forceOn byte // bits always set when writing regOutputCtl

	irqEnable [5]uint8
	irqStatus []uint8 // nil when the interrupt status bank is not readable

	adc     map[Reading]adcSpec
	startup []time.Duration // PEK startup times by field value, nil if fixed
	gpio    []gpioPin

	batteryPercent bool
	ldo3Mode       bool
}

// chipVariant is the behavioural half. The set is closed: axp173, axp192 and axp202.
type chipVariant interface {
	spec() *chipSpec
	probe(d *Device) (byte, error)
	seed(d *Device) error
	limitingOff(d *Device) error
	writeGPIO(d *Device, pin uint8, high bool) error
}

func variantFor(c Chip) chipVariant {
	switch c {
	case AXP173:
		return axp173{}
	case AXP192:
		return axp192{}
	case AXP202:
		return axp202{}
	}
	return nil
}

// probeID checks the identity register against the variant's expected value.
func probeID(d *Device) (byte, error) {
	sp := d.v.spec()
	id, err := d.readReg(regICType)
	if err != nil {
		return 0, err
	}
	if id != sp.id {
		return id, identityErr(sp.chip, sp.id, id)
	}
	return id, nil
}

// Detect identifies the chip at addr by its identity register, falling back
// to the AXP173 status plausibility check. It performs raw reads and does not
// need an initialized Device.
func Detect(bus drivers.I2C, addr uint16) (Chip, error) {
	var w [1]byte
	var r [1]byte
	w[0] = regICType
	if err := bus.Tx(addr, w[:], r[:]); err != nil {
		return ChipUnknown, errcode.Wrap(errcode.IOError, "axp: detect", err)
	}
	switch r[0] {
	case ChipIDAXP202:
		return AXP202, nil
	case ChipIDAXP192:
		return AXP192, nil
	}
	w[0] = regModeChgState
	if err := bus.Tx(addr, w[:], r[:]); err != nil {
		return ChipUnknown, errcode.Wrap(errcode.IOError, "axp: detect", err)
	}
	if r[0] != 0x00 && r[0] != 0xFF {
		return AXP173, nil
	}
	return ChipUnknown, errcode.New(errcode.IdentityMismatch, "axp: detect", "no AXP173/192/202 at address")
}
