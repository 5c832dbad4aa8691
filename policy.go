package wsframe

import (
	"fmt"
	"math"
)

// RSV bit masks as they appear in the first header byte.
const (
	RSV1Bit = 1 << 6
	RSV2Bit = 1 << 5
	RSV3Bit = 1 << 4
)

// Policy configures the validation a Parser applies on top of the
// structural decoding. The zero value accepts every header that
// can be decoded, which is what the codec does without a policy.
type Policy struct {
	// RequireMinimalLength rejects extended lengths that would have fit
	// a narrower encoding and 64 bit lengths with the most significant bit set.
	RequireMinimalLength bool

	// RejectReservedOpcodes rejects opcodes 3-7 and 11-15.
	RejectReservedOpcodes bool

	// RejectReservedBits rejects frames with an RSV bit set
	// unless the bit is included in AllowedRSV.
	RejectReservedBits bool

	// AllowedRSV is a mask of RSV1Bit, RSV2Bit and RSV3Bit for
	// bits claimed by negotiated extensions.
	AllowedRSV byte

	// RejectControlViolations rejects fragmented control frames and
	// control frames longer than MaxControlPayload.
	RejectControlViolations bool

	// MaxPayloadLength limits the payload length. 0 means no limit.
	MaxPayloadLength uint64
}

// Check validates a complete descriptor.
func (p Policy) Check(d Descriptor) error {
	err := p.checkFirstByte(d.Header)
	if err != nil {
		return err
	}
	return p.checkLength(d)
}

// checkFirstByte validates what the first header byte carries.
func (p Policy) checkFirstByte(h Header) error {
	if p.RejectReservedBits {
		var rsv byte
		if h.RSV1 {
			rsv |= RSV1Bit
		}
		if h.RSV2 {
			rsv |= RSV2Bit
		}
		if h.RSV3 {
			rsv |= RSV3Bit
		}
		if rsv&^p.AllowedRSV != 0 {
			return fmt.Errorf("%w: %#x", ErrReservedBits, rsv)
		}
	}
	if p.RejectReservedOpcodes && h.Opcode.Reserved() {
		return fmt.Errorf("%w: %v", ErrReservedOpcode, uint8(h.Opcode))
	}
	if p.RejectControlViolations && h.Opcode.Control() && !h.Fin {
		return fmt.Errorf("%w: fragmented %v frame", ErrControlFrame, h.Opcode)
	}
	return nil
}

// checkLength validates the payload length once it is fully known.
func (p Policy) checkLength(d Descriptor) error {
	if p.RequireMinimalLength {
		switch d.Header.PayloadLenField {
		case payloadLen16:
			if d.ExtendedLength < payloadLen16 {
				return fmt.Errorf("%w: %v in 16 bits", ErrNonMinimalLength, d.ExtendedLength)
			}
		case payloadLen64:
			if d.ExtendedLength <= math.MaxUint16 {
				return fmt.Errorf("%w: %v in 64 bits", ErrNonMinimalLength, d.ExtendedLength)
			}
			if d.ExtendedLength > math.MaxInt64 {
				return fmt.Errorf("%w: most significant bit set in %#x", ErrNonMinimalLength, d.ExtendedLength)
			}
		}
	}

	n := d.PayloadLength()
	if p.RejectControlViolations && d.Header.Opcode.Control() && n > MaxControlPayload {
		return fmt.Errorf("%w: %v frame with %v byte payload", ErrControlFrame, d.Header.Opcode, n)
	}
	if p.MaxPayloadLength > 0 && n > p.MaxPayloadLength {
		return fmt.Errorf("%w: %v > %v", ErrPayloadTooLarge, n, p.MaxPayloadLength)
	}
	return nil
}
