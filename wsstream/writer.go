package wsstream

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"nhooyr.io/wsframe"
	"nhooyr.io/wsframe/internal/bufpool"
	"nhooyr.io/wsframe/internal/errd"
)

// WriterOptions represents the options available to a Writer.
type WriterOptions struct {
	// Mask masks every frame with a fresh key as RFC 6455 requires of clients.
	Mask bool

	// KeySource supplies the masking keys.
	// Defaults to crypto/rand.Reader.
	KeySource io.Reader
}

// Writer writes frames to an io.Writer, one Write call per frame.
type Writer struct {
	w    io.Writer
	opts WriterOptions
}

// NewWriter returns a Writer framing onto w.
func NewWriter(w io.Writer, opts *WriterOptions) *Writer {
	if opts == nil {
		opts = &WriterOptions{}
	}
	o := *opts
	if o.KeySource == nil {
		o.KeySource = rand.Reader
	}
	return &Writer{
		w:    w,
		opts: o,
	}
}

// WriteFrame writes a single frame carrying payload.
// payload is not modified even when the frame is masked.
func (w *Writer) WriteFrame(fin bool, op wsframe.Opcode, payload []byte) (err error) {
	defer errd.Wrap(&err, "failed to write %v frame", op)

	d := wsframe.NewDescriptor(fin, op, uint64(len(payload)))
	if w.opts.Mask {
		var key [4]byte
		_, err = io.ReadFull(w.opts.KeySource, key[:])
		if err != nil {
			return err
		}
		d.SetMaskKey(binary.LittleEndian.Uint32(key[:]))
	}

	buf := bufpool.Get()
	defer bufpool.Put(buf)

	buf.Grow(d.HeaderSize() + len(payload))
	b, err := wsframe.AppendFrame(buf.AvailableBuffer(), d, payload)
	if err != nil {
		return err
	}

	_, err = w.w.Write(b)
	return err
}
