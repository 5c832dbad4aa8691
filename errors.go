package wsframe

import (
	"errors"

	"nhooyr.io/wsframe/internal/fieldbuf"
)

var (
	// ErrFrameSizeOverflow means a header field received more bytes than its
	// declared width. It is fatal to the parse cycle; the parser must be Reset.
	ErrFrameSizeOverflow = fieldbuf.ErrOverflow

	// ErrNonMinimalLength means an extended payload length could have been
	// encoded in fewer bytes, or a 64 bit length has its most significant bit set.
	ErrNonMinimalLength = errors.New("wsframe: non minimal payload length encoding")

	// ErrReservedOpcode means the frame uses an opcode RFC 6455 reserves.
	ErrReservedOpcode = errors.New("wsframe: reserved opcode")

	// ErrReservedBits means an RSV bit is set without a negotiated extension.
	ErrReservedBits = errors.New("wsframe: reserved bits set")

	// ErrControlFrame means a control frame is fragmented or too long.
	ErrControlFrame = errors.New("wsframe: invalid control frame")

	// ErrPayloadTooLarge means the payload length exceeds the configured limit.
	ErrPayloadTooLarge = errors.New("wsframe: payload too large")

	// ErrPayloadLength means a payload does not match the length in its descriptor.
	ErrPayloadLength = errors.New("wsframe: payload length mismatch")
)
