package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/lexconv/codec"
	"github.com/wippyai/lexconv/conformance"
	"github.com/wippyai/lexconv/converter"
	"github.com/wippyai/lexconv/engine"
	"github.com/wippyai/lexconv/internal/ledger"
	"github.com/wippyai/lexconv/stream"
)

// byteOrder reads and appends fixed-width integers.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type options struct {
	codec    string
	width    int
	endian   string
	in       string
	out      string
	block    int
	utf8     bool
	wasm     bool
	verify   bool
	fixtures string
	seeds    int
	db       string
}

func main() {
	var (
		o           options
		interactive = flag.Bool("i", false, "Interactive mode with TUI (with -verify)")
		verbose     = flag.Bool("v", false, "Debug logging")
		list        = flag.Bool("list", false, "List built-in codecs and exit")
	)
	flag.StringVar(&o.codec, "codec", "UTF8", "Source encoding (see -list, or any IANA single-byte charset)")
	flag.IntVar(&o.width, "width", 32, "Lexatom width in bits: 8, 16 or 32")
	flag.StringVar(&o.endian, "endian", "le", "Byte order of written lexatoms: le or be")
	flag.StringVar(&o.in, "in", "-", "Input file, - for stdin")
	flag.StringVar(&o.out, "out", "-", "Output file, - for stdout")
	flag.IntVar(&o.block, "block", 0, "Bytes read per block (0 = default)")
	flag.BoolVar(&o.utf8, "utf8", false, "Write UTF-8 text instead of lexatoms")
	flag.BoolVar(&o.wasm, "wasm", false, "Convert inside WebAssembly guest memory")
	flag.BoolVar(&o.verify, "verify", false, "Run the conformance suite")
	flag.StringVar(&o.fixtures, "fixtures", "conformance/testdata", "Fixture directory for -verify")
	flag.IntVar(&o.seeds, "seeds", 8, "Random call patterns per fixture for -verify")
	flag.StringVar(&o.db, "db", "", "Ledger database for -verify checksum history")
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	converter.SetLogger(log.Named("converter"))
	engine.SetLogger(log.Named("engine"))
	conformance.SetLogger(log.Named("conformance"))

	switch {
	case *list:
		for _, name := range codec.Names() {
			fmt.Println(name)
		}
	case o.verify && *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			log.Warn("stdout is not a terminal, running without TUI")
			err = verify(context.Background(), o, log)
		} else {
			err = runInteractive(o, log)
		}
	case o.verify:
		err = verify(context.Background(), o, log)
	default:
		err = convert(context.Background(), o)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func convert(ctx context.Context, o options) error {
	cd, err := codec.Lookup(o.codec)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if o.in != "-" {
		f, err := os.Open(o.in)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	out := io.Writer(os.Stdout)
	if o.out != "-" {
		f, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	if o.utf8 {
		if _, err := io.Copy(w, stream.NewReader(in, cd)); err != nil {
			return err
		}
		return w.Flush()
	}

	var order byteOrder
	switch o.endian {
	case "le":
		order = binary.LittleEndian
	case "be":
		order = binary.BigEndian
	default:
		return fmt.Errorf("unknown byte order %q", o.endian)
	}

	switch o.width {
	case 8:
		err = convertTo[uint8](ctx, o, cd, in, w, order)
	case 16:
		err = convertTo[uint16](ctx, o, cd, in, w, order)
	case 32:
		err = convertTo[uint32](ctx, o, cd, in, w, order)
	default:
		return fmt.Errorf("unsupported width %d", o.width)
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

func convertTo[T converter.Lexatom](ctx context.Context, o options, cd codec.Codec, in io.Reader, w io.Writer, order byteOrder) error {
	if o.wasm {
		return convertInGuest[T](ctx, cd, in, w, order, o.width)
	}

	lr := stream.NewLexatomReader[T](in, cd, stream.Options{BlockSize: o.block})
	atoms := make([]T, 4096)
	var buf []byte
	for {
		n, err := lr.Read(atoms)
		if n > 0 {
			buf = appendAtoms(buf[:0], atoms[:n], order, o.width)
			if _, werr := w.Write(buf); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// convertInGuest loads the whole input into guest memory and converts it
// there.
func convertInGuest[T converter.Lexatom](ctx context.Context, cd codec.Codec, in io.Reader, w io.Writer, order byteOrder, bits int) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	size := uint32(bits / 8)
	dstStart := (uint32(len(data)) + 7) &^ 7
	need := uint64(dstStart) + uint64(len(data))*uint64(size)
	pages := uint32(need/65536) + 1

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return err
	}
	defer eng.Close(ctx)
	mem, err := eng.NewMemory(ctx, pages)
	if err != nil {
		return err
	}
	if err := mem.Write(0, data); err != nil {
		return err
	}

	src := &engine.Range{Offset: 0, End: uint32(len(data))}
	dst := &engine.Range{Offset: dstStart, End: dstStart + uint32(len(data))*size}
	conv := converter.New[T](cd)
	if _, err := engine.Convert(conv, mem, src, dst); err != nil {
		return err
	}
	if err := conv.Finish(); err != nil {
		return err
	}

	raw, err := mem.Read(dstStart, dst.Offset-dstStart)
	if err != nil {
		return err
	}
	if order == binary.LittleEndian || size == 1 {
		_, err = w.Write(raw)
		return err
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i += int(size) {
		if size == 2 {
			out = order.AppendUint16(out, binary.LittleEndian.Uint16(raw[i:]))
		} else {
			out = order.AppendUint32(out, binary.LittleEndian.Uint32(raw[i:]))
		}
	}
	_, err = w.Write(out)
	return err
}

func appendAtoms[T converter.Lexatom](b []byte, atoms []T, order byteOrder, bits int) []byte {
	for _, a := range atoms {
		switch bits {
		case 8:
			b = append(b, byte(a))
		case 16:
			b = order.AppendUint16(b, uint16(a))
		default:
			b = order.AppendUint32(b, uint32(a))
		}
	}
	return b
}

func (o options) suite(log *zap.Logger) *conformance.Suite {
	return &conformance.Suite{
		Dir:    o.fixtures,
		Seeds:  o.seeds,
		Logger: log.Named("suite"),
	}
}

func verify(ctx context.Context, o options, log *zap.Logger) error {
	reports, err := o.suite(log).Run(ctx)
	if err != nil {
		return err
	}
	for _, r := range reports {
		fmt.Printf("%-32s %-24s atoms=%-5d calls=%-6d checksum=%d\n",
			r.Key(), r.ReferenceFile, r.AtomCount, r.Calls, r.Checksum)
	}
	fmt.Printf("\n%d runs passed\n", len(reports))
	return record(ctx, o, reports)
}

// record stores reports in the ledger, if one is configured, and fails on
// checksum changes against the previous run.
func record(ctx context.Context, o options, reports []conformance.Report) error {
	if o.db == "" {
		return nil
	}
	l, err := ledger.Open(func(c *ledger.Config) { c.File(o.db) })
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	defer l.Close()

	regs, err := l.Regressions(ctx, reports)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := l.Record(ctx, reports...); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	for _, r := range regs {
		fmt.Printf("checksum changed: %s %d -> %d\n", r.Key, r.Previous, r.Current)
	}
	if len(regs) > 0 {
		return fmt.Errorf("%d checksum regression(s)", len(regs))
	}
	return nil
}
