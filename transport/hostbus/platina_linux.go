//go:build linux

package hostbus

import (
	"github.com/platinasystems/i2c"
	"golang.org/x/xerrors"
)

type platinaIO struct {
	bus  *i2c.Bus
	addr int // slave address currently forced, -1 for none
}

func (p *platinaIO) target(addr uint8) error {
	if p.addr == int(addr) {
		return nil
	}
	if err := p.bus.ForceSlaveAddress(int(addr)); err != nil {
		p.addr = -1
		return err
	}
	p.addr = int(addr)
	return nil
}

func (p *platinaIO) readByte(addr, reg uint8) (byte, error) {
	if err := p.target(addr); err != nil {
		return 0, err
	}
	var sd i2c.SMBusData
	if err := p.bus.Do(i2c.Read, reg, i2c.ByteData, &sd); err != nil {
		return 0, err
	}
	return sd[0], nil
}

func (p *platinaIO) writeByte(addr, reg uint8, v byte) error {
	if err := p.target(addr); err != nil {
		return err
	}
	var sd i2c.SMBusData
	sd[0] = v
	return p.bus.Do(i2c.Write, reg, i2c.ByteData, &sd)
}

func (p *platinaIO) close() error { return p.bus.Close() }

// OpenPlatina opens /dev/i2c-<bus> through platinasystems/i2c.
func OpenPlatina(bus int) (*Transport, error) {
	b := new(i2c.Bus)
	if err := b.Open(bus); err != nil {
		return nil, xerrors.Errorf("hostbus: could not open i2c-%d: %w", bus, err)
	}
	return newTransport(&platinaIO{bus: b, addr: -1}), nil
}
