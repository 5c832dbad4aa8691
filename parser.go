package wsframe

import (
	"fmt"

	"nhooyr.io/wsframe/internal/fieldbuf"
)

type parserState int

const (
	stateFirstByte parserState = iota
	stateSecondByte
	stateExtendedLength
	stateMaskKey
	stateComplete
	stateFailed
)

func (s parserState) String() string {
	switch s {
	case stateFirstByte:
		return "first byte"
	case stateSecondByte:
		return "second byte"
	case stateExtendedLength:
		return "extended length"
	case stateMaskKey:
		return "mask key"
	case stateComplete:
		return "complete"
	default:
		return "failed"
	}
}

// Parser decodes one frame header at a time from a byte stream
// delivered in chunks of any size. It only ever consumes header bytes;
// the payload is left to the caller.
//
// A Parser belongs to a single connection and must not be used
// from multiple goroutines at once. Create one with NewParser.
type Parser struct {
	policy Policy

	state parserState
	d     Descriptor
	field fieldbuf.Buffer
	err   error
}

// NewParser returns a Parser waiting for the first header byte.
// A nil policy applies no validation beyond decoding.
func NewParser(policy *Policy) *Parser {
	p := &Parser{}
	if policy != nil {
		p.policy = *policy
	}
	p.Reset()
	return p
}

// Reset abandons the current parse cycle, including a failed one,
// and waits for the first byte of a new header.
func (p *Parser) Reset() {
	p.state = stateFirstByte
	p.d = DefaultDescriptor()
	p.field.Reset(0)
	p.err = nil
}

// HeaderParsed reports whether a complete header has been decoded.
func (p *Parser) HeaderParsed() bool {
	return p.state == stateComplete
}

// Descriptor returns the header decoded so far. Fields that have not
// been reached yet hold their DefaultDescriptor values.
func (p *Parser) Descriptor() Descriptor {
	return p.d
}

// Err returns the error that failed the current parse cycle, if any.
func (p *Parser) Err() error {
	return p.err
}

// Execute feeds b to the parser and returns how many bytes it consumed.
// It stops at the end of the header, so n is less than len(b) whenever b
// also holds payload or later frames. Once the header is complete Execute
// consumes nothing until Reset.
//
// An error fails the parse cycle. n then counts the bytes consumed before
// the error: a byte that overflows a field is not consumed, a byte that
// violates the policy is. Every later call returns the same error until Reset.
func (p *Parser) Execute(b []byte) (n int, err error) {
	if p.state == stateFailed {
		return 0, p.err
	}

	for n < len(b) && p.state != stateComplete {
		consumed, err := p.step(b[n])
		if consumed {
			n++
		}
		if err != nil {
			p.state = stateFailed
			p.err = fmt.Errorf("failed to parse frame header: %w", err)
			return n, p.err
		}
	}
	return n, nil
}

// step advances the state machine by one byte.
func (p *Parser) step(c byte) (consumed bool, err error) {
	switch p.state {
	case stateFirstByte:
		h := &p.d.Header
		h.Fin = c&(1<<7) != 0
		h.RSV1 = c&(1<<6) != 0
		h.RSV2 = c&(1<<5) != 0
		h.RSV3 = c&(1<<4) != 0
		h.Opcode = Opcode(c & 0xf)

		p.state = stateSecondByte
		return true, p.policy.checkFirstByte(*h)
	case stateSecondByte:
		p.d.Header.Masked = c&(1<<7) != 0
		p.d.Header.PayloadLenField = c &^ (1 << 7)

		if w := p.d.extensionSize(); w > 0 {
			p.field.Reset(w)
			p.state = stateExtendedLength
			return true, nil
		}
		return true, p.lengthDone()
	case stateExtendedLength:
		full, err := p.field.AddByte(c)
		if err != nil {
			return false, err
		}
		if !full {
			return true, nil
		}
		if p.field.Cap() == 2 {
			p.d.ExtendedLength = uint64(p.field.Uint16())
		} else {
			p.d.ExtendedLength = p.field.Uint64()
		}
		return true, p.lengthDone()
	case stateMaskKey:
		full, err := p.field.AddByte(c)
		if err != nil {
			return false, err
		}
		if full {
			p.d.MaskKey = p.field.Uint32LE()
			p.state = stateComplete
		}
		return true, nil
	default:
		return false, fmt.Errorf("unexpected parser state: %v", p.state)
	}
}

// lengthDone moves on to the mask key, if any, once the payload length is known.
func (p *Parser) lengthDone() error {
	if p.d.Header.Masked {
		p.field.Reset(4)
		p.state = stateMaskKey
	} else {
		p.state = stateComplete
	}
	return p.policy.checkLength(p.d)
}
