// Package fieldbuf collects fixed width protocol fields one byte at a time.
package fieldbuf

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOverflow is returned when a byte is added to a Buffer that
// already holds its declared number of bytes.
var ErrOverflow = errors.New("wsframe: frame size overflow")

// Buffer accumulates exactly n bytes across any number of AddByte calls.
// It never grows past n and never drops a byte silently.
type Buffer struct {
	b []byte
	n int
}

// New returns an empty Buffer that fills up after n bytes.
func New(n int) *Buffer {
	b := &Buffer{}
	b.Reset(n)
	return b
}

// Reset discards the buffered bytes and sets the capacity to n.
// The backing array is reused when it is large enough.
func (b *Buffer) Reset(n int) {
	if n < 0 {
		panic(fmt.Sprintf("fieldbuf: negative capacity %v", n))
	}
	if cap(b.b) < n {
		b.b = make([]byte, 0, n)
	}
	b.b = b.b[:0]
	b.n = n
}

// AddByte appends c and reports whether the buffer is now full.
// Adding to a full buffer returns ErrOverflow and leaves the buffer untouched.
func (b *Buffer) AddByte(c byte) (full bool, err error) {
	if len(b.b) >= b.n {
		return true, fmt.Errorf("%w: field of %v bytes is already full", ErrOverflow, b.n)
	}
	b.b = append(b.b, c)
	return len(b.b) == b.n, nil
}

// Bytes returns the bytes added so far. It aliases the buffer until the next Reset.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Len returns the number of bytes added so far.
func (b *Buffer) Len() int {
	return len(b.b)
}

// Cap returns the declared field width.
func (b *Buffer) Cap() int {
	return b.n
}

// Full reports whether all Cap bytes have been added.
func (b *Buffer) Full() bool {
	return len(b.b) == b.n
}

// Uint16 decodes a full 2 byte buffer as big endian.
func (b *Buffer) Uint16() uint16 {
	return binary.BigEndian.Uint16(b.b)
}

// Uint64 decodes a full 8 byte buffer as big endian.
func (b *Buffer) Uint64() uint64 {
	return binary.BigEndian.Uint64(b.b)
}

// Uint32LE decodes a full 4 byte buffer with the first byte
// as the least significant one.
func (b *Buffer) Uint32LE() uint32 {
	return binary.LittleEndian.Uint32(b.b)
}
