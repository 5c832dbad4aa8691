package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"nhooyr.io/wsframe"
	"nhooyr.io/wsframe/internal/errd"
	"nhooyr.io/wsframe/wsstream"
)

// frameRecord is how a decoded frame is printed.
type frameRecord struct {
	Fin     bool   `yaml:"fin" json:"fin"`
	RSV1    bool   `yaml:"rsv1,omitempty" json:"rsv1,omitempty"`
	RSV2    bool   `yaml:"rsv2,omitempty" json:"rsv2,omitempty"`
	RSV3    bool   `yaml:"rsv3,omitempty" json:"rsv3,omitempty"`
	Opcode  string `yaml:"opcode" json:"opcode"`
	Masked  bool   `yaml:"masked" json:"masked"`
	MaskKey string `yaml:"mask_key,omitempty" json:"mask_key,omitempty"`
	Length  uint64 `yaml:"length" json:"length"`
	Text    string `yaml:"text,omitempty" json:"text,omitempty"`
	Hex     string `yaml:"hex,omitempty" json:"hex,omitempty"`
}

func newFrameRecord(f wsstream.Frame) frameRecord {
	r := frameRecord{
		Fin:    f.Header.Fin,
		RSV1:   f.Header.RSV1,
		RSV2:   f.Header.RSV2,
		RSV3:   f.Header.RSV3,
		Opcode: f.Header.Opcode.String(),
		Masked: f.Header.Masked,
		Length: f.PayloadLength(),
	}
	if f.Header.Masked {
		key := f.MaskKeyBytes()
		r.MaskKey = hex.EncodeToString(key[:])
	}
	if !f.Header.Opcode.Control() && f.Header.Opcode != wsframe.OpBinary && utf8.Valid(f.Payload) {
		r.Text = string(f.Payload)
	} else {
		r.Hex = hex.EncodeToString(f.Payload)
	}
	return r
}

type recordEncoder interface {
	Encode(v interface{}) error
}

type decodeOptions struct {
	chunk  int
	rate   float64
	format string
	policy string
}

func decodeCmd(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts decodeOptions
	fs.IntVar(&opts.chunk, "chunk", 4096, "bytes fed to the parser at a time")
	fs.Float64Var(&opts.rate, "rate", 0, "maximum chunks per second, 0 for no limit")
	fs.StringVar(&opts.format, "format", "yaml", "output format, yaml or json")
	fs.StringVar(&opts.policy, "config", "", "YAML policy file")
	verbose := fs.Bool("v", false, "log every chunk")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return errors.New("decode takes at most one file")
	}

	l := newLogger(stderr, *verbose)
	defer l.Sync()

	in := stdin
	if fs.NArg() == 1 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	return decode(ctx, l, in, stdout, opts)
}

func decode(ctx context.Context, l *zap.Logger, in io.Reader, out io.Writer, opts decodeOptions) (err error) {
	defer errd.Wrap(&err, "failed to decode")

	if opts.chunk <= 0 {
		return fmt.Errorf("invalid chunk size %v", opts.chunk)
	}

	var enc recordEncoder
	switch opts.format {
	case "yaml":
		ye := yaml.NewEncoder(out)
		ye.SetIndent(2)
		defer func() {
			closeErr := ye.Close()
			if err == nil {
				err = closeErr
			}
		}()
		enc = ye
	case "json":
		enc = json.NewEncoder(out)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	policy, err := loadPolicy(opts.policy)
	if err != nil {
		return err
	}

	limit := rate.Inf
	if opts.rate > 0 {
		limit = rate.Limit(opts.rate)
	}
	lim := rate.NewLimiter(limit, 1)

	s := wsstream.NewSplitter(policy)
	b := make([]byte, opts.chunk)
	var offset int64
	frames := 0
	for {
		err = lim.Wait(ctx)
		if err != nil {
			return err
		}

		n, readErr := io.ReadFull(in, b)
		if n > 0 {
			l.Debug("feeding chunk", zap.Int64("offset", offset), zap.Int("size", n))
			err = s.Feed(b[:n])
			if err != nil {
				return fmt.Errorf("at offset %v: %w", offset, err)
			}
			offset += int64(n)

			for {
				f, ok := s.Pop()
				if !ok {
					break
				}
				frames++
				l.Debug("frame complete",
					zap.Stringer("opcode", f.Header.Opcode),
					zap.Uint64("length", f.PayloadLength()),
				)
				err = enc.Encode(newFrameRecord(f))
				if err != nil {
					return err
				}
			}
		}

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			if s.Pending() {
				return fmt.Errorf("at offset %v: %w", offset, io.ErrUnexpectedEOF)
			}
			l.Info("decoded stream", zap.Int("frames", frames), zap.Int64("bytes", offset))
			return nil
		default:
			return readErr
		}
	}
}
