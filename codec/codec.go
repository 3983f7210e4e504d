package codec

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/wippyai/lexconv/errors"
)

// Status is the result class of a single Decode call.
type Status uint8

const (
	// OK means one code point was decoded.
	OK Status = iota
	// Short means the window is a valid but incomplete prefix.
	Short
	// Invalid means the leading bytes form no code point.
	Invalid
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Short:
		return "short"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Codec is the per-encoding rule set mapping byte sequences to code points.
type Codec interface {
	// Name returns the canonical name of the encoding.
	Name() string

	// MaxSequenceLength returns the upper bound on bytes needed for one
	// code point. It is at least 1.
	MaxSequenceLength() int

	// Decode inspects p, which starts at a sequence boundary.
	//
	// With OK, r is the code point and n in [1, len(p)] the bytes it uses.
	// With Short, p is a proper prefix of a sequence (len(p) is below
	// MaxSequenceLength) and n is 0.
	// With Invalid, n in [1, len(p)] is the length of the offending bytes.
	Decode(p []byte) (r rune, n int, st Status)
}

// Stateless reports whether c never needs more than one byte per code point,
// in which case a converter never holds residue for it.
func Stateless(c Codec) bool {
	return c.MaxSequenceLength() == 1
}

var builtin = map[string]Codec{}

func register(c Codec, aliases ...string) {
	builtin[normalize(c.Name())] = c
	for _, a := range aliases {
		builtin[normalize(a)] = c
	}
}

func init() {
	register(ASCII, "US-ASCII", "ANSI_X3.4-1968")
	register(Latin1, "Latin1", "ISO8859-1", "ISO_8859-1")
	register(UTF8)
	register(UTF16BE)
	register(UTF16LE)
	register(UCS2BE)
	register(UCS2LE)
	register(UCS4BE, "UTF32BE")
	register(UCS4LE, "UTF32LE")
}

func normalize(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

// Lookup returns the codec registered under name. Names outside the built-in
// set are resolved through the IANA index; single-byte table encodings are
// served by a Charmap codec.
func Lookup(name string) (Codec, error) {
	if c, ok := builtin[normalize(name)]; ok {
		return c, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		nf := errors.NotFound(errors.PhaseConfig, "unknown codec "+strconv.Quote(name))
		nf.Cause = err
		return nil, nf
	}
	cm, ok := enc.(*charmap.Charmap)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseConfig, "codec "+name+" is not a single-byte table")
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil || canonical == "" {
		canonical = strings.ToUpper(name)
	}
	return NewCharmap(canonical, cm), nil
}

// MustLookup is like Lookup but panics on error.
func MustLookup(name string) Codec {
	c, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns the canonical names of the built-in codecs, sorted.
func Names() []string {
	seen := make(map[string]bool, len(builtin))
	names := make([]string, 0, len(builtin))
	for _, c := range builtin {
		if !seen[c.Name()] {
			seen[c.Name()] = true
			names = append(names, c.Name())
		}
	}
	sort.Strings(names)
	return names
}
