package converter

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/lexconv/codec"
	"github.com/wippyai/lexconv/errors"
)

// Lexatom is the set of fixed-width element types a stream converts into.
type Lexatom interface {
	~uint8 | ~uint16 | ~uint32
}

// NoResidue is reported by ResidueLen for codecs that never hold residue.
const NoResidue = -1

// Stats counts the work done on the current stream.
type Stats struct {
	Calls    int64 // Convert invocations
	Consumed int64 // source bytes taken from callers
	Emitted  int64 // lexatoms written
}

// Option configures a Converter.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for conversion diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// Converter converts one stream from an external encoding into lexatoms of
// type T.
type Converter[T Lexatom] struct {
	codec   codec.Codec
	log     *zap.Logger
	stomach []byte
	window  []byte
	maxAtom uint64
	offset  int64
	stats   Stats
	max     int
	bits    int
}

// New creates a Converter for streams encoded with c.
func New[T Lexatom](c codec.Codec, opts ...Option) *Converter[T] {
	if c == nil {
		panic("converter: nil codec")
	}
	maxLen := c.MaxSequenceLength()
	if maxLen < 1 {
		panic("converter: codec returned MaxSequenceLength() < 1")
	}

	o := options{log: Logger()}
	for _, fn := range opts {
		fn(&o)
	}

	var zero T
	return &Converter[T]{
		codec:   c,
		log:     o.log.With(zap.String("codec", c.Name())),
		stomach: make([]byte, 0, maxLen-1),
		window:  make([]byte, 0, maxLen),
		maxAtom: uint64(^zero),
		max:     maxLen,
		bits:    int(unsafe.Sizeof(zero)) * 8,
	}
}

// Codec returns the codec of the stream.
func (c *Converter[T]) Codec() codec.Codec {
	return c.codec
}

// Bits returns the lexatom width in bits.
func (c *Converter[T]) Bits() int {
	return c.bits
}

// Convert decodes as much of src into dst as both allow. See the package
// documentation for the meaning of the results.
//
// When err is non-nil, dst[:nDst] still holds valid lexatoms and src[:nSrc]
// was consumed; the offending sequence starts at Offset().
func (c *Converter[T]) Convert(dst []T, src []byte) (nDst, nSrc int, out Outcome, err error) {
	if overlaps(dst, src) {
		panic("converter: destination overlaps source")
	}
	c.stats.Calls++
	defer func() {
		c.stats.Consumed += int64(nSrc)
		c.stats.Emitted += int64(nDst)
	}()

	for {
		var (
			r    rune
			n    int
			st   codec.Status
			used int // bytes of src, beyond the residue, in this sequence
		)

		if k := len(c.stomach); k > 0 {
			take := min(c.max-k, len(src)-nSrc)
			w := append(c.window[:0], c.stomach...)
			w = append(w, src[nSrc:nSrc+take]...)

			r, n, st = c.codec.Decode(w)
			switch {
			case st == codec.Short && len(w) < c.max:
				c.stomach = append(c.stomach, src[nSrc:nSrc+take]...)
				return nDst, nSrc + take, SourceExhausted, nil
			case st == codec.Short, st == codec.Invalid, n <= k:
				return nDst, nSrc, out, c.malformed(w, n)
			}
			used = n - k
		} else {
			if nSrc == len(src) {
				return nDst, nSrc, Complete, nil
			}
			rest := src[nSrc:]

			r, n, st = c.codec.Decode(rest)
			switch {
			case st == codec.Short && len(rest) < c.max:
				c.stomach = append(c.stomach, rest...)
				return nDst, len(src), SourceExhausted, nil
			case st != codec.OK:
				return nDst, nSrc, out, c.malformed(rest, n)
			}
			used = n
		}

		if uint64(r) > c.maxAtom {
			err := errors.Overflow(c.codec.Name(), c.offset, r, c.bits)
			c.log.Debug("code point overflows lexatom",
				zap.Int64("offset", c.offset), zap.Int32("rune", r), zap.Int("bits", c.bits))
			return nDst, nSrc, out, err
		}
		if nDst == len(dst) {
			return nDst, nSrc, DestinationFull, nil
		}

		dst[nDst] = T(r)
		nDst++
		nSrc += used
		c.offset += int64(n)
		c.stomach = c.stomach[:0]
	}
}

func (c *Converter[T]) malformed(w []byte, n int) error {
	if n < 1 || n > len(w) {
		n = min(len(w), c.max)
	}
	err := errors.Malformed(c.codec.Name(), c.offset, w[:n])
	c.log.Debug("malformed sequence",
		zap.Int64("offset", c.offset), zap.Binary("found", err.Found))
	return err
}

// ResidueLen returns the number of bytes held from an incomplete sequence,
// or NoResidue when the codec never needs more than one byte.
func (c *Converter[T]) ResidueLen() int {
	if codec.Stateless(c.codec) {
		return NoResidue
	}
	return len(c.stomach)
}

// ClearResidue drops any pending partial sequence. Lexatoms already written
// are not affected.
func (c *Converter[T]) ClearResidue() {
	c.offset += int64(len(c.stomach))
	c.stomach = c.stomach[:0]
}

// Reset prepares the converter for a new, unrelated stream.
func (c *Converter[T]) Reset() {
	c.stomach = c.stomach[:0]
	c.offset = 0
	c.stats = Stats{}
}

// Finish reports whether the stream may end here. It returns a truncated
// error when a partial sequence is still pending.
func (c *Converter[T]) Finish() error {
	if k := len(c.stomach); k > 0 {
		return errors.Truncated(c.codec.Name(), c.offset, k)
	}
	return nil
}

// Offset returns the stream offset of the first byte not yet decoded into a
// lexatom. Residue bytes lie at and after this offset.
func (c *Converter[T]) Offset() int64 {
	return c.offset
}

// Stats returns the counters of the current stream.
func (c *Converter[T]) Stats() Stats {
	return c.stats
}

func overlaps[T Lexatom](dst []T, src []byte) bool {
	if len(dst) == 0 || len(src) == 0 {
		return false
	}
	var zero T
	d0 := uintptr(unsafe.Pointer(unsafe.SliceData(dst)))
	d1 := d0 + uintptr(len(dst))*unsafe.Sizeof(zero)
	s0 := uintptr(unsafe.Pointer(unsafe.SliceData(src)))
	s1 := s0 + uintptr(len(src))
	return d0 < s1 && s0 < d1
}
