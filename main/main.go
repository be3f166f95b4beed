// tagwire-inspect prints the header of a tagwire frame file: format
// version, compression, schema digest, sizes, checksum status and the type
// id of the root value.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rawbytedev/tagwire/pkg/frame"
	"github.com/rawbytedev/tagwire/pkg/wire"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		dump       bool
		verbose    bool
		cpuProfile string
		memProfile string
	)
	flagSet := pflag.NewFlagSet("tagwire-inspect", pflag.ContinueOnError)
	flagSet.BoolVar(&dump, "dump", false, "hex dump the decoded payload")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log decoding steps to stderr")
	flagSet.StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	flagSet.StringVar(&memProfile, "memprofile", "", "write a heap profile to this file on exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(out, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(out, flagSet)
		return nil
	}
	if flagSet.NArg() != 1 {
		printHelp(out, flagSet)
		return fmt.Errorf("expected exactly one frame file")
	}

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	}
	defer logger.Sync()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if memProfile != "" {
		defer writeHeapProfile(memProfile, logger)
	}

	path := flagSet.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	logger.Debug("read frame", zap.String("path", path), zap.Int("bytes", len(data)))
	return inspect(out, data, dump, logger)
}

func inspect(out io.Writer, data []byte, dump bool, logger *zap.Logger) error {
	h, body, err := frame.ReadHeader(data)
	if errors.Is(err, frame.ErrChecksum) {
		fmt.Fprintf(out, "crc:         MISMATCH\n")
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "version:     %d\n", h.Version)
	fmt.Fprintf(out, "compression: %s\n", h.Compression)
	fmt.Fprintf(out, "digest:      %s\n", hex.EncodeToString(h.Digest))
	fmt.Fprintf(out, "size:        %d bytes (%d stored)\n", h.Size, len(body))
	fmt.Fprintf(out, "crc:         %08x ok\n", h.CRC)

	_, payload, err := frame.Decode(data)
	if err != nil {
		return err
	}
	logger.Debug("decoded payload", zap.Stringer("compression", h.Compression), zap.Int("bytes", len(payload)))
	id, n := wire.ConsumeVarInt(payload)
	switch {
	case n == 0:
		fmt.Fprintf(out, "root:        <empty>\n")
	case id == 0:
		fmt.Fprintf(out, "root:        nil\n")
	default:
		fmt.Fprintf(out, "root:        type id %d\n", id)
	}
	if dump {
		fmt.Fprint(out, hex.Dump(payload))
	}
	return nil
}

func writeHeapProfile(path string, logger *zap.Logger) {
	f, err := os.Create(path)
	if err != nil {
		logger.Warn("heap profile", zap.Error(err))
		return
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		logger.Warn("heap profile", zap.Error(err))
	}
}

func printHelp(out io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(out, "usage: tagwire-inspect [flags] FILE\n\n")
	fmt.Fprint(out, flagSet.FlagUsages())
}
