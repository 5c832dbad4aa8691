package wsstream

import (
	"fmt"
	"math"

	"github.com/eapache/queue"

	"nhooyr.io/wsframe"
)

// Frame is a complete frame with its payload unmasked.
type Frame struct {
	wsframe.Descriptor
	Payload []byte
}

// Splitter turns bytes pushed by an event loop into complete frames.
// Feed never blocks; frames become available through Pop in the order
// they were completed.
//
// Splitter buffers whole payloads. Bound them with Policy.MaxPayloadLength
// when the peer is not trusted.
type Splitter struct {
	p      *wsframe.Parser
	frames *queue.Queue

	cur     Frame
	need    uint64
	payload bool
	partial bool

	err error
}

// NewSplitter returns a Splitter that validates headers with policy.
func NewSplitter(policy *wsframe.Policy) *Splitter {
	return &Splitter{
		p:      wsframe.NewParser(policy),
		frames: queue.New(),
	}
}

// Feed consumes all of b. Once Feed returns an error the stream is out of
// sync; every later call returns the same error until Reset.
func (s *Splitter) Feed(b []byte) error {
	if s.err != nil {
		return s.err
	}

	for len(b) > 0 {
		if !s.payload {
			n, err := s.p.Execute(b)
			b = b[n:]
			if n > 0 {
				s.partial = true
			}
			if err != nil {
				s.err = err
				return err
			}
			if !s.p.HeaderParsed() {
				return nil
			}
			err = s.startPayload(s.p.Descriptor())
			if err != nil {
				s.err = err
				return err
			}
			continue
		}

		take := min(uint64(len(b)), s.need-uint64(len(s.cur.Payload)))
		s.cur.Payload = append(s.cur.Payload, b[:take]...)
		b = b[take:]
		if uint64(len(s.cur.Payload)) == s.need {
			s.finish()
		}
	}
	return nil
}

func (s *Splitter) startPayload(d wsframe.Descriptor) error {
	s.p.Reset()

	n := d.PayloadLength()
	if n > math.MaxInt {
		return fmt.Errorf("%w: %v byte payload cannot be buffered", wsframe.ErrPayloadTooLarge, n)
	}

	s.cur = Frame{
		Descriptor: d,
		Payload:    make([]byte, 0, min(n, 64<<10)),
	}
	s.need = n
	s.payload = true
	if n == 0 {
		s.finish()
	}
	return nil
}

func (s *Splitter) finish() {
	if s.cur.Header.Masked {
		wsframe.Mask(s.cur.MaskKey, s.cur.Payload)
	}
	s.frames.Add(s.cur)
	s.cur = Frame{}
	s.need = 0
	s.payload = false
	s.partial = false
}

// Pending reports whether part of a frame has been fed but not completed.
func (s *Splitter) Pending() bool {
	return s.partial
}

// Len returns the number of frames waiting to be popped.
func (s *Splitter) Len() int {
	return s.frames.Length()
}

// Pop removes and returns the oldest complete frame.
func (s *Splitter) Pop() (Frame, bool) {
	if s.frames.Length() == 0 {
		return Frame{}, false
	}
	return s.frames.Remove().(Frame), true
}

// Reset drops the partially received frame and any error so the Splitter
// can be fed from a new frame boundary. Complete frames stay queued.
func (s *Splitter) Reset() {
	s.p.Reset()
	s.cur = Frame{}
	s.need = 0
	s.payload = false
	s.partial = false
	s.err = nil
}
