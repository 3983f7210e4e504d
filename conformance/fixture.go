package conformance

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sys/cpu"

	"github.com/wippyai/lexconv/codec"
	"github.com/wippyai/lexconv/errors"
)

// Case names an input file, the codec it is encoded in and the lexatom
// widths it can be converted to.
type Case struct {
	Encoding string
	Input    string
	Stem     string
	Widths   []int
}

// Cases is the built-in fixture table.
var Cases = []Case{
	{Encoding: "ASCII", Input: "festgemauert.dat", Stem: "festgemauert", Widths: []int{8, 16, 32}},
	{Encoding: "UTF8", Input: "languages.utf8", Stem: "languages", Widths: []int{32}},
	{Encoding: "UTF16BE", Input: "small.utf16-be", Stem: "small", Widths: []int{16, 32}},
	{Encoding: "UCS4BE", Input: "languages.ucs4-be", Stem: "languages", Widths: []int{32}},
	{Encoding: "UTF16LE", Input: "languages.utf16-le", Stem: "languages", Widths: []int{32}},
	{Encoding: "ISO-8859-1", Input: "glocke.iso8859-1", Stem: "glocke", Widths: []int{8, 16, 32}},
}

// Supports reports whether the case can be converted to bits-wide lexatoms.
func (c Case) Supports(bits int) bool {
	return slices.Contains(c.Widths, bits)
}

// ReferenceName returns the reference file name of stem for bits-wide
// lexatoms in the given byte order.
func ReferenceName(stem string, bits int, bigEndian bool) string {
	if bits == 8 {
		return stem + ".dat"
	}
	endian := "le"
	if bigEndian {
		endian = "be"
	}
	return fmt.Sprintf("%s-%d-%s.dat", stem, bits, endian)
}

// Fixture is a loaded case at one lexatom width.
type Fixture struct {
	Case
	Codec         codec.Codec
	Bits          int
	ReferenceFile string
	Source        []byte
	Reference     []uint32
}

// LoadFixture reads the input and the host byte order reference of c from
// dir.
func LoadFixture(dir string, c Case, bits int) (*Fixture, error) {
	if !c.Supports(bits) {
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Codec(c.Encoding).
			Detail("%d-bit lexatoms not covered by %s", bits, c.Input).
			Build()
	}
	cd, err := codec.Lookup(c.Encoding)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(filepath.Join(dir, c.Input))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read input "+c.Input)
	}

	name := ReferenceName(c.Stem, bits, cpu.IsBigEndian)
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read reference "+name)
	}
	ref, err := decodeReference(raw, bits, hostOrder())
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", name, err)
	}

	return &Fixture{
		Case:          c,
		Codec:         cd,
		Bits:          bits,
		ReferenceFile: name,
		Source:        src,
		Reference:     ref,
	}, nil
}

func hostOrder() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func decodeReference(raw []byte, bits int, order binary.ByteOrder) ([]uint32, error) {
	size := bits / 8
	if len(raw)%size != 0 {
		return nil, errors.New(errors.PhaseLoad, errors.KindMalformed).
			Detail("%d bytes is not a whole number of %d-bit lexatoms", len(raw), bits).
			Build()
	}
	out := make([]uint32, len(raw)/size)
	for i := range out {
		p := raw[i*size:]
		switch size {
		case 1:
			out[i] = uint32(p[0])
		case 2:
			out[i] = uint32(order.Uint16(p))
		default:
			out[i] = order.Uint32(p)
		}
	}
	return out, nil
}
