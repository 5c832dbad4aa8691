// Package wspb provides helpers for protobuf messages carried in single binary frames.
package wspb

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	"nhooyr.io/wsframe"
	"nhooyr.io/wsframe/internal/bufpool"
	"nhooyr.io/wsframe/internal/errd"
	"nhooyr.io/wsframe/wsstream"
)

// MaxMessageSize is the largest payload Read accepts.
const MaxMessageSize = 32768

// Read reads the next frame from r and unmarshals its payload into v.
// The frame must be a final binary frame of at most MaxMessageSize bytes.
func Read(r *wsstream.Reader, v proto.Message) (err error) {
	defer errd.Wrap(&err, "failed to read protobuf")

	d, err := r.Next()
	if err != nil {
		return err
	}

	switch {
	case d.Header.Opcode != wsframe.OpBinary:
		return fmt.Errorf("unexpected frame type for protobuf (expected %v): %v", wsframe.OpBinary, d.Header.Opcode)
	case !d.Header.Fin:
		return errors.New("fragmented protobuf messages are not supported")
	case d.PayloadLength() > MaxMessageSize:
		return fmt.Errorf("%w: %v bytes", wsframe.ErrPayloadTooLarge, d.PayloadLength())
	}

	b := bufpool.Get()
	defer bufpool.Put(b)

	_, err = b.ReadFrom(r)
	if err != nil {
		return err
	}

	err = proto.Unmarshal(b.Bytes(), v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal protobuf: %w", err)
	}
	return nil
}

// Write marshals v and writes it to w as one final binary frame.
func Write(w *wsstream.Writer, v proto.Message) (err error) {
	defer errd.Wrap(&err, "failed to write protobuf")

	b, err := proto.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal protobuf: %w", err)
	}

	return w.WriteFrame(true, wsframe.OpBinary, b)
}
