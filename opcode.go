package wsframe

import "strconv"

// Opcode represents a WebSocket Opcode.
// Only the low 4 bits are ever put on the wire.
type Opcode uint8

// https://tools.ietf.org/html/rfc6455#section-11.8.
const (
	OpContinuation Opcode = iota
	OpText
	OpBinary
	// 3 - 7 are reserved for further non-control frames.
	_
	_
	_
	_
	_
	OpClose
	OpPing
	OpPong
	// 11-15 are reserved for further control frames.
)

var opcodeNames = [...]string{
	OpContinuation: "continuation",
	OpText:         "text",
	OpBinary:       "binary",
	OpClose:        "close",
	OpPing:         "ping",
	OpPong:         "pong",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) && opcodeNames[o] != "" {
		return opcodeNames[o]
	}
	return "reserved(" + strconv.Itoa(int(o)) + ")"
}

// Control reports whether o is in the control frame range 8-15.
func (o Opcode) Control() bool {
	return o&0x8 != 0
}

// Data reports whether o carries message data.
func (o Opcode) Data() bool {
	switch o {
	case OpText, OpBinary:
		return true
	}
	return false
}

// Reserved reports whether o has no meaning assigned by RFC 6455.
func (o Opcode) Reserved() bool {
	switch o {
	case OpContinuation, OpText, OpBinary, OpClose, OpPing, OpPong:
		return false
	}
	return true
}
