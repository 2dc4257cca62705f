// Package bitx holds the byte-level bit helpers shared by the register drivers.
// Bits are numbered from the least-significant bit.
package bitx

// IsSet reports whether bit n of v is 1.
func IsSet(v byte, n uint8) bool { return v&(1<<n) != 0 }

// Set returns v with bit n forced to 1.
func Set(v byte, n uint8) byte { return v | 1<<n }

// Clear returns v with bit n forced to 0.
func Clear(v byte, n uint8) byte { return v &^ (1 << n) }

// Put sets or clears bit n depending on on.
func Put(v byte, n uint8, on bool) byte {
	if on {
		return Set(v, n)
	}
	return Clear(v, n)
}

// Embed keeps the bits of v selected by keep and ORs in field shifted left by
// shift. Field bits that would land inside keep are discarded.
//
//	Embed(0b1010_0101, 0x0F, 0x3, 4) == 0b0011_0101
func Embed(v, keep, field byte, shift uint8) byte {
	return v&keep | (field<<shift)&^keep
}

// Field extracts the bits of v outside keep, shifted down by shift.
// It is the inverse of Embed for the same keep/shift pair.
func Field(v, keep byte, shift uint8) byte {
	return (v &^ keep) >> shift
}

// Split40 breaks a 40-bit value into five bytes, least-significant first.
func Split40(v uint64) [5]byte {
	var b [5]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// BE32 assembles a big-endian uint32 from the first four bytes of b.
func BE32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// H8L4 combines a high byte with the low nibble of the next register.
func H8L4(h, l byte) uint16 { return uint16(h)<<4 | uint16(l&0x0F) }

// H8L5 combines a high byte with the low five bits of the next register.
func H8L5(h, l byte) uint16 { return uint16(h)<<5 | uint16(l&0x1F) }
