package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"nhooyr.io/wsframe"
)

func encodeCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)

	op := fs.String("op", "text", "opcode name or number")
	fin := fs.Bool("fin", true, "set the FIN bit")
	mask := fs.String("mask", "", "masking key with the first wire byte least significant, 0x3d21fa37 sends 37 fa 21 3d")
	asHex := fs.Bool("hex", false, "print the frame as hex")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("encode takes exactly one payload")
	}

	o, err := parseOpcode(*op)
	if err != nil {
		return err
	}

	payload := []byte(fs.Arg(0))
	d := wsframe.NewDescriptor(*fin, o, uint64(len(payload)))
	if *mask != "" {
		key, err := strconv.ParseUint(*mask, 0, 32)
		if err != nil {
			return fmt.Errorf("invalid mask key %q: %w", *mask, err)
		}
		d.SetMaskKey(uint32(key))
	}

	b, err := wsframe.AppendFrame(nil, d, payload)
	if err != nil {
		return err
	}

	if *asHex {
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(b))
		return err
	}
	_, err = stdout.Write(b)
	return err
}

// parseOpcode accepts an opcode name as printed by Opcode.String or
// its number.
func parseOpcode(s string) (wsframe.Opcode, error) {
	for o := wsframe.Opcode(0); o < 16; o++ {
		if !o.Reserved() && o.String() == s {
			return o, nil
		}
	}
	n, err := strconv.ParseUint(s, 0, 4)
	if err != nil {
		return 0, fmt.Errorf("invalid opcode %q", s)
	}
	return wsframe.Opcode(n), nil
}
