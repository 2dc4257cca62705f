//go:build linux

package hostbus

import (
	"github.com/go-daq/smbus"
	"golang.org/x/xerrors"
)

type smbusIO struct{ c *smbus.Conn }

func (s smbusIO) readByte(addr, reg uint8) (byte, error) { return s.c.ReadReg(addr, reg) }
func (s smbusIO) writeByte(addr, reg uint8, v byte) error { return s.c.WriteReg(addr, reg, v) }
func (s smbusIO) close() error                            { return s.c.Close() }

// OpenSMBus opens /dev/i2c-<bus> through go-daq/smbus with addr as the
// initial target.
func OpenSMBus(bus int, addr uint8) (*Transport, error) {
	c, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, xerrors.Errorf("hostbus: could not open i2c-%d: %w", bus, err)
	}
	return newTransport(smbusIO{c: c}), nil
}
