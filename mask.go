package wsframe

import (
	"encoding/binary"
	"math/bits"
)

// Mask applies the WebSocket masking algorithm to b in place.
// Applying it twice with the same key restores b.
// See https://tools.ietf.org/html/rfc6455#section-5.3
//
// key holds the four key bytes with the first byte on the wire
// as the least significant one, as parsed into Descriptor.MaskKey.
func Mask(key uint32, b []byte) {
	MaskAt(key, 0, b)
}

// MaskAt is like Mask but starts at byte pos&3 of the key.
// It returns the key position of the byte following b so that a
// payload can be masked in several pieces:
//
//	pos := MaskAt(key, 0, p[:n])
//	MaskAt(key, pos, p[n:])
func MaskAt(key uint32, pos int, b []byte) int {
	next := (pos + len(b)) & 3
	key = bits.RotateLeft32(key, -8*(pos&3))

	if len(b) >= 8 {
		key64 := uint64(key)<<32 | uint64(key)

		// See https://github.com/golang/go/issues/31586
		for len(b) >= 64 {
			xor64(b[0:8], key64)
			xor64(b[8:16], key64)
			xor64(b[16:24], key64)
			xor64(b[24:32], key64)
			xor64(b[32:40], key64)
			xor64(b[40:48], key64)
			xor64(b[48:56], key64)
			xor64(b[56:64], key64)
			b = b[64:]
		}

		for len(b) >= 8 {
			xor64(b, key64)
			b = b[8:]
		}
	}

	if len(b) >= 4 {
		v := binary.LittleEndian.Uint32(b)
		binary.LittleEndian.PutUint32(b, v^key)
		b = b[4:]
	}

	for i := range b {
		b[i] ^= byte(key)
		key = bits.RotateLeft32(key, -8)
	}

	return next
}

func xor64(b []byte, key64 uint64) {
	v := binary.LittleEndian.Uint64(b)
	binary.LittleEndian.PutUint64(b, v^key64)
}
