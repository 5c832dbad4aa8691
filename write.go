package wsframe

import (
	"encoding/binary"
	"fmt"
)

// WriteHeader returns the wire bytes of d's header: the two fixed bytes
// and the extended length, if any. The masking key is not included;
// a caller sending a masked frame appends it, or uses AppendFrame.
// See https://tools.ietf.org/html/rfc6455#section-5.2
func WriteHeader(d Descriptor) []byte {
	return AppendHeader(make([]byte, 0, MaxHeaderSize), d)
}

// AppendHeader appends the header bytes WriteHeader returns to dst.
// Only the low 4 bits of the opcode and the low 7 bits of the
// length field are encoded.
func AppendHeader(dst []byte, d Descriptor) []byte {
	h := d.Header

	var b0 byte
	if h.Fin {
		b0 |= 1 << 7
	}
	if h.RSV1 {
		b0 |= 1 << 6
	}
	if h.RSV2 {
		b0 |= 1 << 5
	}
	if h.RSV3 {
		b0 |= 1 << 4
	}
	b0 |= byte(h.Opcode) & 0xf

	b1 := h.PayloadLenField & 0x7f
	if h.Masked {
		b1 |= 1 << 7
	}

	dst = append(dst, b0, b1)

	switch d.extensionSize() {
	case 2:
		dst = binary.BigEndian.AppendUint16(dst, uint16(d.ExtendedLength))
	case 8:
		dst = binary.BigEndian.AppendUint64(dst, d.ExtendedLength)
	}
	return dst
}

// AppendFrame appends a complete frame to dst: the header, the masking key
// when d is masked and payload, masked with that key. payload itself is
// left untouched. It must be exactly d.PayloadLength() bytes long.
func AppendFrame(dst []byte, d Descriptor, payload []byte) ([]byte, error) {
	if uint64(len(payload)) != d.PayloadLength() {
		return dst, fmt.Errorf("%w: descriptor says %v bytes but got %v", ErrPayloadLength, d.PayloadLength(), len(payload))
	}

	dst = AppendHeader(dst, d)
	if d.Header.Masked {
		dst = binary.LittleEndian.AppendUint32(dst, d.MaskKey)
	}

	start := len(dst)
	dst = append(dst, payload...)
	if d.Header.Masked {
		Mask(d.MaskKey, dst[start:])
	}
	return dst, nil
}
