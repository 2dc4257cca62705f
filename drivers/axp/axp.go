// Package axp drives the X-Powers AXP173, AXP192 and AXP202 power management
// ICs over I2C: rail voltages and switches, charging, coulomb counter, ADC
// telemetry, GPIO and the interrupt banks.
//
// A Device is created for one chip variant and must be initialized before
// use. Initialize probes the chip identity and seeds the cached settings from
// hardware. Interrupt and status changes are turned into events by a Watcher.
package axp

import (
	"strconv"
	"strings"
	"sync"

	"axp-go/errcode"

	"tinygo.org/x/drivers"
)

// Chip identifies a supported variant.
type Chip uint8

const (
	ChipUnknown Chip = iota
	AXP173
	AXP192
	AXP202
)

func (c Chip) String() string {
	switch c {
	case AXP173:
		return "axp173"
	case AXP192:
		return "axp192"
	case AXP202:
		return "axp202"
	default:
		return "unknown"
	}
}

// ParseChip accepts the names produced by Chip.String, case-insensitively.
func ParseChip(s string) (Chip, error) {
	switch strings.ToLower(s) {
	case "axp173":
		return AXP173, nil
	case "axp192":
		return AXP192, nil
	case "axp202":
		return AXP202, nil
	}
	return ChipUnknown, errcode.New(errcode.InvalidParams, "axp: parse chip", "unknown chip "+strconv.Quote(s))
}

// Config selects the variant and bus address.
type Config struct {
	Chip    Chip
	Address uint16 // 0 selects the variant default
}

// DefaultConfig returns the config for chip at its default address.
func DefaultConfig(chip Chip) Config {
	c := Config{Chip: chip}
	if v := variantFor(chip); v != nil {
		c.Address = v.spec().addr
	}
	return c
}

// Validate checks the chip is one this package drives.
func (c Config) Validate() error {
	if variantFor(c.Chip) == nil {
		return errcode.New(errcode.InvalidParams, "axp: config", "unsupported chip "+c.Chip.String())
	}
	if c.Address > 0x7F {
		return errcode.New(errcode.InvalidParams, "axp: config", "address must be 7-bit")
	}
	return nil
}

type lifecycle uint8

const (
	stateNew lifecycle = iota
	stateInitializing
	stateReady
)

// Device represents one AXP chip. All methods are safe for concurrent use;
// register traffic from the watcher and from callers is serialized.
type Device struct {
	conn        Conn
	read, write TransferFunc // injected transport, nil on the direct path
	v           chipVariant

	mu     sync.Mutex // guards everything below and every register transfer
	state  lifecycle
	chipID byte
	c      settings
	irq    irqState
}

// settings caches values seeded at Initialize and kept in step by setters.
type settings struct {
	rails      [numRails]uint16 // mV
	outputs    map[uint8]byte   // output switch registers by address
	coulombCtl byte
	adcSpeed   byte
	pok        byte
	charge1    byte
	ldo3DCIn   bool
}

// New constructs a Device that drives bus directly.
func New(bus drivers.I2C, cfg Config) (*Device, error) {
	if bus == nil {
		return nil, errcode.New(errcode.InvalidParams, "axp: new", "nil bus")
	}
	return newDevice(Conn{Bus: bus}, nil, nil, cfg)
}

// NewWithTransport constructs a Device whose register transfers go through
// read and write. Both must be non-nil.
func NewWithTransport(read, write TransferFunc, cfg Config) (*Device, error) {
	if read == nil || write == nil {
		return nil, errcode.New(errcode.InvalidParams, "axp: new", "read and write callbacks are required")
	}
	return newDevice(Conn{}, read, write, cfg)
}

func newDevice(c Conn, read, write TransferFunc, cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v := variantFor(cfg.Chip)
	c.Addr = cfg.Address
	if c.Addr == 0 {
		c.Addr = v.spec().addr
	}
	return &Device{conn: c, read: read, write: write, v: v}, nil
}

// Initialize probes the chip identity and seeds the cached settings from
// hardware. A second call fails with already_initialized. On failure the
// device stays uninitialized.
func (d *Device) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateNew {
		return errcode.New(errcode.AlreadyInitialized, "axp: initialize", "device already initialized")
	}
	d.state = stateInitializing
	if err := d.initialize(); err != nil {
		d.state = stateNew
		return err
	}
	d.state = stateReady
	return nil
}

func (d *Device) initialize() error {
	id, err := d.v.probe(d)
	if err != nil {
		return err
	}
	d.chipID = id
	d.c = settings{outputs: make(map[uint8]byte, 2)}

	if d.c.coulombCtl, err = d.readReg(regCoulombCtl); err != nil {
		return err
	}
	if d.c.adcSpeed, err = d.readReg(regADCSpeed); err != nil {
		return err
	}
	if d.c.pok, err = d.readReg(regPOKSet); err != nil {
		return err
	}
	if d.c.charge1, err = d.readReg(regCharge1); err != nil {
		return err
	}

	sp := d.v.spec()
	for r := Rail(1); r < numRails; r++ {
		rs, ok := sp.rails[r]
		if !ok {
			continue
		}
		v, err := d.readReg(rs.reg)
		if err != nil {
			return err
		}
		d.c.rails[r] = rs.millivolts(v)
	}
	for _, o := range sp.outputs {
		if _, seen := d.c.outputs[o.reg]; seen {
			continue
		}
		v, err := d.readReg(o.reg)
		if err != nil {
			return err
		}
		d.c.outputs[o.reg] = v
	}
	return d.v.seed(d)
}

// Chip returns the configured variant.
func (d *Device) Chip() Chip { return d.v.spec().chip }

// Address returns the 7-bit bus address.
func (d *Device) Address() uint16 { return d.conn.Addr }

// ChipID returns the identity read at Initialize, zero before.
func (d *Device) ChipID() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chipID
}

// Initialized reports whether Initialize completed.
func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == stateReady
}

// Capabilities describes what the variant supports.
type Capabilities struct {
	Chip     Chip
	Rails    []Rail // rails with a voltage setter
	Outputs  []Rail // rails with an enable switch
	IRQRead  bool
	IRQClear bool
	GPIOs    int
}

func (d *Device) Capabilities() Capabilities {
	sp := d.v.spec()
	c := Capabilities{Chip: sp.chip, IRQRead: sp.irqStatus != nil, IRQClear: sp.irqStatus != nil, GPIOs: len(sp.gpio)}
	for r := Rail(1); r < numRails; r++ {
		if _, ok := sp.rails[r]; ok {
			c.Rails = append(c.Rails, r)
		}
		if _, ok := sp.outputs[r]; ok {
			c.Outputs = append(c.Outputs, r)
		}
	}
	return c
}

// ready gates every public operation. Callers hold d.mu.
func (d *Device) ready(op string) error {
	if d.state != stateReady {
		return errcode.New(errcode.NotInitialized, "axp: "+op, "device not initialized")
	}
	return nil
}

// unsupported is inert before Initialize and an error after it. Callers hold d.mu.
func (d *Device) unsupported(op string) error {
	if d.state != stateReady {
		return nil
	}
	return errcode.New(errcode.Unsupported, "axp: "+op, "not supported on "+d.v.spec().chip.String())
}

func invalid(op, msg string) error {
	return errcode.New(errcode.InvalidParams, "axp: "+op, msg)
}

// IdentityError reports a probe that found a different chip.
type IdentityError struct {
	Chip     Chip
	Expected byte
	Actual   byte
}

func (e *IdentityError) Error() string {
	return e.Chip.String() + " identity mismatch: expected 0x" + strconv.FormatUint(uint64(e.Expected), 16) +
		", read 0x" + strconv.FormatUint(uint64(e.Actual), 16)
}

func identityErr(chip Chip, want, got byte) error {
	return &errcode.E{C: errcode.IdentityMismatch, Op: "axp: probe", Err: &IdentityError{Chip: chip, Expected: want, Actual: got}}
}
