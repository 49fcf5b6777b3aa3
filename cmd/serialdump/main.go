// serialdump converts between serial payloads and readable documents using
// a YAML record layout.
//
// decode reads a payload and prints its records as YAML, JSON or CBOR.
// encode reads records in one of those formats and writes the payload.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/oy3o/serial/internal/schema"
)

type options struct {
	schemaPath string
	format     string
	order      string
	maxLength  int
	hex        bool
	output     string
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("serialdump", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.schemaPath, "schema", "s", "", "path to the YAML record layout (required)")
	flagSet.StringVarP(&opts.format, "format", "f", "yaml", "document format: "+strings.Join(schema.Formats, ", "))
	flagSet.StringVar(&opts.order, "order", "", "override the layout's byte order: big or little")
	flagSet.IntVar(&opts.maxLength, "max-length", 0, "override the layout's cap on decoded length prefixes")
	flagSet.BoolVarP(&opts.hex, "hex", "x", false, "read or write the payload as hex text")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flagSet.Usage = func() { printHelp(flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(flagSet)
		return errors.New("missing command: decode or encode")
	}
	if rest[0] != "decode" && rest[0] != "encode" {
		return fmt.Errorf("unknown command %q", rest[0])
	}
	if opts.schemaPath == "" {
		return errors.New("--schema is required")
	}
	if len(rest) > 2 {
		return fmt.Errorf("unexpected argument: %s", rest[2])
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	s, err := schema.Load(opts.schemaPath)
	if err != nil {
		return err
	}
	if opts.order != "" {
		s.Order = opts.order
		if err := s.Compile(); err != nil {
			return err
		}
	}
	if opts.maxLength > 0 {
		s.MaxLength = opts.maxLength
	}
	logger.Debug("schema loaded",
		zap.String("name", s.Name),
		zap.Int("fields", len(s.Fields)),
		zap.Stringer("type", s.Type()))

	input, err := readInput(rest[1:], stdin)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if rest[0] == "decode" {
		err = decode(logger, s, &opts, input, &out)
	} else {
		err = encode(logger, s, &opts, input, &out)
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err = out.WriteTo(stdout)
	return err
}

func decode(logger *zap.Logger, s *schema.Schema, opts *options, input []byte, out io.Writer) error {
	if opts.hex {
		raw, err := decodeHexInput(input)
		if err != nil {
			return err
		}
		input = raw
	}
	records, err := s.Decode(input)
	if err != nil {
		logger.Warn("decode stopped", zap.Int("records", len(records)), zap.Error(err))
		return err
	}
	logger.Info("decoded",
		zap.Int("records", len(records)),
		zap.Int("bytes", len(input)),
		zap.String("format", opts.format))
	return schema.Render(out, opts.format, records)
}

func encode(logger *zap.Logger, s *schema.Schema, opts *options, input []byte, out io.Writer) error {
	records, err := s.ParseValues(opts.format, input)
	if err != nil {
		return err
	}
	payload, err := s.Encode(records)
	if err != nil {
		return err
	}
	logger.Info("encoded",
		zap.Int("records", len(records)),
		zap.Int("bytes", len(payload)),
		zap.String("format", opts.format))

	if opts.hex {
		_, err = fmt.Fprintln(out, hex.EncodeToString(payload))
		return err
	}
	_, err = out.Write(payload)
	return err
}

func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// decodeHexInput strips whitespace from hex text and decodes it.
// "00 00 00 01" and "00000001" are the same payload.
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `serialdump converts between serial payloads and readable documents.

Usage:
  serialdump decode --schema FILE [flags] [INPUT]
  serialdump encode --schema FILE [flags] [INPUT]

INPUT defaults to stdin. A layout file looks like:

  name: reading
  fields:
    - {name: id, type: int32}
    - {name: tags, type: "seq<string>"}
    - {name: parent, type: "opt<int64>"}

Types: bool char int8 uint8 int16 uint16 int32 uint32 int64 uint64 int uint
float32 float64 string bytes seq<T> map<K,V> pair<A,B> opt<T>

Examples:
  # Print a payload as JSON
  serialdump decode -s reading.yaml -f json payload.bin

  # Build a payload from YAML and show it as hex
  serialdump encode -s reading.yaml --hex values.yaml

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
