package wsframe

import (
	"encoding/binary"
	"math"
)

// Values of the 7 bit payload length field that announce an extension.
const (
	payloadLen16 = 126
	payloadLen64 = 127
)

// MaxControlPayload is the maximum length of a control frame payload.
// See https://tools.ietf.org/html/rfc6455#section-5.5.
const MaxControlPayload = 125

// First byte contains fin, rsv1, rsv2, rsv3 and the opcode.
// Second byte contains the mask flag and the payload len.
// Next 8 bytes are the maximum extended payload length.
// Last 4 bytes are the mask key.
// https://tools.ietf.org/html/rfc6455#section-5.2
const MaxHeaderSize = 1 + 1 + 8 + 4

// Header holds the first two bytes of a frame.
// See https://tools.ietf.org/html/rfc6455#section-5.2.
type Header struct {
	Fin    bool
	RSV1   bool
	RSV2   bool
	RSV3   bool
	Opcode Opcode

	Masked bool
	// PayloadLenField is the raw 7 bit length. 126 and 127 mean the
	// real length follows in a 16 or 64 bit extension.
	PayloadLenField uint8
}

// Descriptor is a fully decoded frame header. It never owns payload bytes.
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-------+-+-------------+-------------------------------+
//	|F|R|R|R| opcode|M| Payload len |    Extended payload length    |
//	|I|S|S|S|  (4)  |A|     (7)     |             (16/64)           |
//	|N|V|V|V|       |S|             |   (if payload len==126/127)   |
//	| |1|2|3|       |K|             |                               |
//	+-+-+-+-+-------+-+-------------+ - - - - - - - - - - - - - - - +
//	|     Extended payload length continued, if payload len == 127  |
//	+ - - - - - - - - - - - - - - - +-------------------------------+
//	|                               |Masking-key, if MASK set to 1  |
//	+-------------------------------+-------------------------------+
type Descriptor struct {
	Header Header

	// ExtendedLength is only meaningful when Header.PayloadLenField
	// is 126 or 127. It is 0 otherwise.
	ExtendedLength uint64

	// MaskKey holds the four key bytes with the first byte on the
	// wire as the least significant one. It is 0 unless Header.Masked.
	MaskKey uint32
}

// DefaultDescriptor returns the descriptor a parser starts from:
// a final continuation frame with no payload.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Header: Header{
			Fin: true,
		},
	}
}

// NewDescriptor returns an unmasked descriptor for a frame of n payload bytes
// using the narrowest length encoding that fits n.
func NewDescriptor(fin bool, op Opcode, n uint64) Descriptor {
	d := DefaultDescriptor()
	d.Header.Fin = fin
	d.Header.Opcode = op

	switch {
	case n < payloadLen16:
		d.Header.PayloadLenField = uint8(n)
	case n <= math.MaxUint16:
		d.Header.PayloadLenField = payloadLen16
		d.ExtendedLength = n
	default:
		d.Header.PayloadLenField = payloadLen64
		d.ExtendedLength = n
	}
	return d
}

// PayloadLength returns the number of payload bytes that follow the header.
func (d Descriptor) PayloadLength() uint64 {
	switch d.Header.PayloadLenField {
	case payloadLen16, payloadLen64:
		return d.ExtendedLength
	default:
		return uint64(d.Header.PayloadLenField)
	}
}

// extensionSize returns the width of the extended length field.
func (d Descriptor) extensionSize() int {
	switch d.Header.PayloadLenField & 0x7f {
	case payloadLen16:
		return 2
	case payloadLen64:
		return 8
	default:
		return 0
	}
}

// HeaderSize returns the number of bytes the header occupies on the wire,
// including the masking key when the frame is masked.
func (d Descriptor) HeaderSize() int {
	n := 2 + d.extensionSize()
	if d.Header.Masked {
		n += 4
	}
	return n
}

// MaskKeyBytes returns the masking key in wire order.
func (d Descriptor) MaskKeyBytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], d.MaskKey)
	return b
}

// SetMaskKey marks the frame as masked with key.
func (d *Descriptor) SetMaskKey(key uint32) {
	d.Header.Masked = true
	d.MaskKey = key
}
