// Package wsstream connects the wsframe codec to byte sources and sinks.
//
// Reader pulls frames from an io.Reader, Writer pushes them to an
// io.Writer and Splitter accepts bytes from an event loop and queues
// every frame they complete.
//
// None of them assemble messages or answer control frames; that is
// left to the caller.
package wsstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"nhooyr.io/wsframe"
)

// Reader reads frames from an io.Reader. Payloads come out unmasked.
// After Next or Read return an error other than io.EOF the stream is
// out of sync and the Reader must not be used again.
type Reader struct {
	br *bufio.Reader
	p  *wsframe.Parser

	d      wsframe.Descriptor
	left   uint64
	keyPos int
}

// NewReader returns a Reader decoding frames from r.
// policy is applied to every header; nil accepts every header.
func NewReader(r io.Reader, policy *wsframe.Policy) *Reader {
	return &Reader{
		br: bufio.NewReader(r),
		p:  wsframe.NewParser(policy),
	}
}

// Next reads the header of the next frame, discarding whatever is left
// of the current frame's payload. It returns io.EOF if the stream ends
// cleanly between frames and io.ErrUnexpectedEOF if it ends inside one.
func (r *Reader) Next() (wsframe.Descriptor, error) {
	err := r.discardPayload()
	if err != nil {
		return wsframe.Descriptor{}, err
	}

	r.p.Reset()
	consumed := 0
	for !r.p.HeaderParsed() {
		// Peek blocks until at least one byte is buffered.
		_, err := r.br.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if consumed == 0 {
					return wsframe.Descriptor{}, io.EOF
				}
				err = io.ErrUnexpectedEOF
			}
			return wsframe.Descriptor{}, fmt.Errorf("failed to read frame header: %w", err)
		}

		b, _ := r.br.Peek(r.br.Buffered())
		n, err := r.p.Execute(b)
		r.br.Discard(n)
		consumed += n
		if err != nil {
			return wsframe.Descriptor{}, err
		}
	}

	r.d = r.p.Descriptor()
	r.left = r.d.PayloadLength()
	r.keyPos = 0
	return r.d, nil
}

// Descriptor returns the header of the current frame.
func (r *Reader) Descriptor() wsframe.Descriptor {
	return r.d
}

// Remaining returns how many payload bytes of the current frame are unread.
func (r *Reader) Remaining() uint64 {
	return r.left
}

// Read reads the current frame's payload. It returns io.EOF once
// the payload is exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	if r.left == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > r.left {
		p = p[:r.left]
	}

	n, err := r.br.Read(p)
	r.left -= uint64(n)
	if r.d.Header.Masked {
		r.keyPos = wsframe.MaskAt(r.d.MaskKey, r.keyPos, p[:n])
	}

	if errors.Is(err, io.EOF) {
		if r.left > 0 {
			return n, fmt.Errorf("failed to read frame payload: %w", io.ErrUnexpectedEOF)
		}
		err = nil
	}
	return n, err
}

func (r *Reader) discardPayload() error {
	for r.left > 0 {
		n := int(min(r.left, 1<<20))
		d, err := r.br.Discard(n)
		r.left -= uint64(d)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("failed to discard frame payload: %w", err)
		}
	}
	return nil
}
