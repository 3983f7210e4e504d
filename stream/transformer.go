package stream

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/transform"

	"github.com/wippyai/lexconv/codec"
	"github.com/wippyai/lexconv/converter"
)

// Transformer decodes an encoded byte stream to UTF-8.
type Transformer struct {
	conv    *converter.Converter[uint32]
	pending []byte
	buf     [utf8.UTFMax]byte
	spill   [utf8.UTFMax]byte
}

var _ transform.Transformer = (*Transformer)(nil)

// NewTransformer returns a Transformer for streams encoded with c.
func NewTransformer(c codec.Codec) *Transformer {
	return &Transformer{conv: converter.New[uint32](c)}
}

// Transform implements transform.Transformer. Source bytes of an incomplete
// sequence are consumed into the converter's residue; at EOF a pending
// residue is reported as a truncated stream.
func (t *Transformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if len(t.pending) > 0 {
		nDst = copy(dst, t.pending)
		t.pending = t.pending[nDst:]
		if len(t.pending) > 0 {
			return nDst, 0, transform.ErrShortDst
		}
	}

	var atom [1]uint32
	for {
		n, m, out, err := t.conv.Convert(atom[:], src[nSrc:])
		nSrc += m
		if err != nil {
			return nDst, nSrc, err
		}
		if n == 1 {
			size := utf8.EncodeRune(t.buf[:], rune(atom[0]))
			c := copy(dst[nDst:], t.buf[:size])
			nDst += c
			if c < size {
				t.pending = append(t.spill[:0], t.buf[c:size]...)
				return nDst, nSrc, transform.ErrShortDst
			}
		}

		switch out {
		case converter.Complete:
			return nDst, nSrc, nil
		case converter.SourceExhausted:
			if atEOF {
				return nDst, nSrc, t.conv.Finish()
			}
			return nDst, nSrc, transform.ErrShortSrc
		}
	}
}

// Reset implements transform.Transformer's optional Reset.
func (t *Transformer) Reset() {
	t.conv.Reset()
	t.pending = nil
}

// NewReader returns a reader yielding the UTF-8 form of r, which is encoded
// with c.
func NewReader(r io.Reader, c codec.Codec) io.Reader {
	return transform.NewReader(r, NewTransformer(c))
}
