// Command wsframe decodes and encodes raw WebSocket frames.
//
//	wsframe decode [-chunk N] [-rate R] [-format yaml|json] [-config policy.yaml] [-v] [file]
//	wsframe encode [-op text] [-fin=true] [-mask 0x...] [-hex] payload
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "wsframe: %v\n", err)
		}
		os.Exit(2)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "decode":
		return decodeCmd(ctx, args[1:], stdin, stdout, stderr)
	case "encode":
		return encodeCmd(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

const usage = `usage:
  wsframe decode [-chunk N] [-rate R] [-format yaml|json] [-config policy.yaml] [-v] [file]
  wsframe encode [-op text] [-fin=true] [-mask 0x...] [-hex] payload
`

// newLogger returns a JSON logger writing to w. Debug output is only
// enabled when verbose is set.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		lvl.SetLevel(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core).Named("wsframe")
}
