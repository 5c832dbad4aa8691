// Package wsjson provides helpers for JSON messages carried in single text frames.
package wsjson

import (
	"encoding/json"
	"errors"
	"fmt"

	"nhooyr.io/wsframe"
	"nhooyr.io/wsframe/internal/bufpool"
	"nhooyr.io/wsframe/internal/errd"
	"nhooyr.io/wsframe/wsstream"
)

// MaxMessageSize is the largest payload Read accepts.
const MaxMessageSize = 32768

// Read reads the next frame from r and decodes its JSON payload into v.
// The frame must be a final text frame of at most MaxMessageSize bytes.
func Read(r *wsstream.Reader, v interface{}) (err error) {
	defer errd.Wrap(&err, "failed to read json")

	d, err := r.Next()
	if err != nil {
		return err
	}

	switch {
	case d.Header.Opcode != wsframe.OpText:
		return fmt.Errorf("unexpected frame type for json (expected %v): %v", wsframe.OpText, d.Header.Opcode)
	case !d.Header.Fin:
		return errors.New("fragmented json messages are not supported")
	case d.PayloadLength() > MaxMessageSize:
		return fmt.Errorf("%w: %v bytes", wsframe.ErrPayloadTooLarge, d.PayloadLength())
	}

	b := bufpool.Get()
	defer bufpool.Put(b)

	_, err = b.ReadFrom(r)
	if err != nil {
		return err
	}

	err = json.Unmarshal(b.Bytes(), v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal json: %w", err)
	}
	return nil
}

// Write encodes v as JSON and writes it to w as one final text frame.
func Write(w *wsstream.Writer, v interface{}) (err error) {
	defer errd.Wrap(&err, "failed to write json")

	b := bufpool.Get()
	defer bufpool.Put(b)

	err = json.NewEncoder(b).Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	return w.WriteFrame(true, wsframe.OpText, b.Bytes())
}

