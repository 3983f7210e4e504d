package stream

import (
	"io"

	"github.com/wippyai/lexconv/codec"
	"github.com/wippyai/lexconv/converter"
)

// Options holds configurable parameters for a Reader.
type Options struct {
	// BlockSize is the number of bytes to read at a time.
	//
	// Default is 4096.
	BlockSize int
}

// Reader reads lexatoms of type T from an encoded byte stream.
type Reader[T converter.Lexatom] struct {
	// r is the byte stream to read.
	r io.Reader

	// conv holds the residue between blocks.
	conv *converter.Converter[T]

	// block is reused for every read from r.
	block []byte

	// b is the slice of block not yet handed to conv.
	b []byte

	// err is the sticky error from r or conv.
	err error
}

// NewLexatomReader constructs a Reader for r, which is encoded with c.
func NewLexatomReader[T converter.Lexatom](r io.Reader, c codec.Codec, o Options) *Reader[T] {
	bs := o.BlockSize
	if bs < 0 {
		panic("BlockSize < 0")
	}
	if bs == 0 {
		bs = 4096
	}
	return &Reader[T]{
		r:     r,
		conv:  converter.New[T](c),
		block: make([]byte, bs),
	}
}

// Read fills p with lexatoms. It returns io.EOF only once the underlying
// stream is exhausted and no partial sequence is pending; a stream that ends
// inside a sequence yields a truncated error instead.
func (lr *Reader[T]) Read(p []T) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	for {
		if len(lr.b) > 0 {
			nDst, nSrc, _, err := lr.conv.Convert(p[n:], lr.b)
			n += nDst
			lr.b = lr.b[nSrc:]
			if err != nil {
				lr.err = err
				return n, err
			}
		}
		if n > 0 {
			return n, nil
		}
		if lr.err != nil {
			if lr.err == io.EOF {
				if err := lr.conv.Finish(); err != nil {
					lr.err = err
				}
			}
			return 0, lr.err
		}

		m, err := lr.r.Read(lr.block)
		lr.b = lr.block[:m]
		if err != nil {
			lr.err = err
		}
	}
}

// Converter returns the underlying converter, e.g. for Stats.
func (lr *Reader[T]) Converter() *converter.Converter[T] {
	return lr.conv
}

// ReadAll reads lexatoms until EOF.
func ReadAll[T converter.Lexatom](lr *Reader[T]) ([]T, error) {
	out := make([]T, 0, 512)
	for {
		if len(out) == cap(out) {
			out = append(out, 0)[:len(out)]
		}
		n, err := lr.Read(out[len(out):cap(out)])
		out = out[:len(out)+n]
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
