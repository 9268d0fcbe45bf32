package ttf

import (
	"errors"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Byte segments ---------------------------------------------------------

// binarySegm is a segment of byte data. Every access is checked against the
// segment's bounds; a failed check returns errBufferBounds.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset > len(b) || n > len(b)-offset {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u8 returns the byte in b at offset i.
func (b binarySegm) u8(i int) (uint8, error) {
	if i < 0 || i >= len(b) {
		return 0, errBufferBounds
	}
	return b[i], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// --- Sequential reading ----------------------------------------------------

// cursor reads sequentially from a byte segment. The first failing read
// is remembered in err; all subsequent reads return zero values. Clients
// check err after a sequence of reads.
type cursor struct {
	data binarySegm
	pos  int
	err  error
}

func newCursor(b binarySegm, pos int) *cursor {
	return &cursor{data: b, pos: pos}
}

func (c *cursor) skip(n int) {
	if c.err != nil {
		return
	}
	if _, c.err = c.data.view(c.pos, n); c.err == nil {
		c.pos += n
	}
}

func (c *cursor) u8() uint8 {
	if c.err != nil {
		return 0
	}
	var n uint8
	if n, c.err = c.data.u8(c.pos); c.err == nil {
		c.pos++
	}
	return n
}

func (c *cursor) u16() uint16 {
	if c.err != nil {
		return 0
	}
	var n uint16
	if n, c.err = c.data.u16(c.pos); c.err == nil {
		c.pos += 2
	}
	return n
}

func (c *cursor) i16() int16 {
	return int16(c.u16())
}

func (c *cursor) u32() uint32 {
	if c.err != nil {
		return 0
	}
	var n uint32
	if n, c.err = c.data.u32(c.pos); c.err == nil {
		c.pos += 4
	}
	return n
}
