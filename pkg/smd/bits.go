// ABOUTME: LSB-first bit cursor over a byte slice
// ABOUTME: Used for nibbles, bitmap selectors and packed index selectors alike
package smd

// bitCursor reads and writes fixed-width unsigned fields at an absolute bit
// position. Bit k of the field stream is bit k%8 of byte k/8, which matches
// LSB-first packing into little-endian 32-bit words.
type bitCursor struct {
	buf []byte
	pos int
}

func newBitCursor(buf []byte, byteOffset int) bitCursor {
	return bitCursor{buf: buf, pos: byteOffset * 8}
}

// Skip advances the cursor by n bits.
func (c *bitCursor) Skip(n int) {
	c.pos += n
}

// WriteBits stores the low n bits of v (n <= 32) and advances.
// Bits outside the field are left untouched.
func (c *bitCursor) WriteBits(v uint32, n int) {
	for n > 0 {
		idx, shift := c.pos>>3, uint(c.pos&7)
		k := min(8-int(shift), n)
		mask := byte(1<<k-1) << shift
		c.buf[idx] = c.buf[idx]&^mask | byte(v<<shift)&mask
		v >>= uint(k)
		n -= k
		c.pos += k
	}
}

// ReadBits loads an n-bit field (n <= 32) and advances.
func (c *bitCursor) ReadBits(n int) uint32 {
	var v uint32
	for got := 0; got < n; {
		idx, shift := c.pos>>3, uint(c.pos&7)
		k := min(8-int(shift), n-got)
		field := uint32(c.buf[idx]>>shift) & (1<<k - 1)
		v |= field << uint(got)
		got += k
		c.pos += k
	}
	return v
}

// readNibble returns the low (which == 0) or high (which == 1) nibble of buf[offset].
func readNibble(buf []byte, offset, which int) uint8 {
	c := bitCursor{buf: buf, pos: offset*8 + (which&1)*4}
	return uint8(c.ReadBits(4))
}

// writeNibble replaces one nibble of buf[offset] and keeps the other.
func writeNibble(buf []byte, offset, which int, value uint8) {
	c := bitCursor{buf: buf, pos: offset*8 + (which&1)*4}
	c.WriteBits(uint32(value), 4)
}
