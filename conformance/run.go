package conformance

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/lexconv/converter"
	"github.com/wippyai/lexconv/errors"
)

// Repetitions is how often Run converts a fixture with the same converter.
const Repetitions = 3

// poisonByte fills destination buffers so stray writes show up.
const poisonByte = 0x5A

// Report summarizes a successful run.
type Report struct {
	Codec         string
	Width         int
	Pattern       string
	ReferenceFile string
	AtomCount     int
	Calls         int
	Checksum      uint32
}

// Key identifies the fixture, width and pattern a report belongs to.
func (r Report) Key() string {
	return fmt.Sprintf("%s/%d/%s", r.Codec, r.Width, r.Pattern)
}

// Checksum folds lexatoms into a short fingerprint.
func Checksum[T converter.Lexatom](atoms []T) uint32 {
	var c uint32
	for _, a := range atoms {
		c = (c<<5)%997 + uint32(a)
	}
	return c
}

// Run converts fx under pattern p, Repetitions times with conv, and checks
// every intermediate state. conv must match the fixture's width and codec.
func Run[T converter.Lexatom](conv *converter.Converter[T], fx *Fixture, p Pattern) (Report, error) {
	if conv.Bits() != fx.Bits {
		return Report{}, errors.InvalidInput(errors.PhaseVerify,
			fmt.Sprintf("converter has %d-bit lexatoms, fixture %d-bit", conv.Bits(), fx.Bits))
	}

	want := make([]T, len(fx.Reference))
	for i, a := range fx.Reference {
		want[i] = T(a)
	}

	rep := Report{
		Codec:         conv.Codec().Name(),
		Width:         fx.Bits,
		Pattern:       p.Name,
		ReferenceFile: fx.ReferenceFile,
		AtomCount:     len(want),
	}

	for i := range Repetitions {
		r := &repetition[T]{
			conv:    conv,
			fx:      fx,
			pattern: p,
			index:   i,
			want:    want,
		}
		calls, err := r.run()
		rep.Calls += calls
		if err != nil {
			Logger().Debug("conformance run failed",
				zap.String("key", rep.Key()), zap.Int("repetition", i), zap.Error(err))
			return rep, err
		}
		sum := Checksum(r.drain)
		if i > 0 && sum != rep.Checksum {
			return rep, r.fail(errors.NoOffset, "checksum %d differs from first repetition %d", sum, rep.Checksum)
		}
		rep.Checksum = sum
	}
	return rep, nil
}

type repetition[T converter.Lexatom] struct {
	conv    *converter.Converter[T]
	fx      *Fixture
	pattern Pattern
	index   int
	want    []T
	drain   []T
	calls   int
}

func poison[T converter.Lexatom](bits int) T {
	var v uint64
	for range bits / 8 {
		v = v<<8 | poisonByte
	}
	return T(v)
}

func (r *repetition[T]) fail(offset int64, format string, args ...any) error {
	return r.annotate(errors.New(errors.PhaseVerify, errors.KindMismatch).
		Offset(offset).
		Detail(format, args...).
		Build())
}

// annotate names the codec and the call a verification error happened in.
func (r *repetition[T]) annotate(err *errors.Error) error {
	err.Codec = r.conv.Codec().Name()
	err.Detail = fmt.Sprintf("%s, %s repetition %d, call %d: %s",
		r.fx.Input, r.pattern.Name, r.index, r.calls, err.Detail)
	return err
}

func (r *repetition[T]) run() (int, error) {
	conv := r.conv
	maxSeq := conv.Codec().MaxSequenceLength()
	src := bytes.Clone(r.fx.Source)
	r.drain = make([]T, len(r.want))
	pv := poison[T](conv.Bits())
	for i := range r.drain {
		r.drain[i] = pv
	}

	step := r.pattern.stepper()
	base := conv.Offset()
	limit := 4*(len(src)+len(r.want)) + 16
	var srcPos, srcEnd, dstPos, dstEnd int

	for {
		if r.calls >= limit {
			return r.calls, r.fail(int64(srcPos), "no progress")
		}
		s, d := step(maxSeq)
		srcEnd = grow(srcEnd, s, len(src))
		dstEnd = grow(dstEnd, d, len(r.drain))

		nDst, nSrc, out, err := conv.Convert(r.drain[dstPos:dstEnd], src[srcPos:srcEnd])
		r.calls++
		if err != nil {
			return r.calls, fmt.Errorf("%s %s: %w", r.fx.Input, r.pattern.Name, err)
		}

		if nDst < 0 || dstPos+nDst > dstEnd || nSrc < 0 || srcPos+nSrc > srcEnd {
			return r.calls, r.fail(int64(srcPos), "cursor out of window: nDst=%d nSrc=%d", nDst, nSrc)
		}
		if !bytes.Equal(src, r.fx.Source) {
			return r.calls, r.fail(int64(srcPos), "source buffer modified")
		}
		for i := dstPos; i < dstPos+nDst; i++ {
			if r.drain[i] != r.want[i] {
				return r.calls, r.annotate(errors.Mismatch(errors.PhaseVerify, int64(i), r.want[i], r.drain[i]))
			}
		}
		for i := dstPos + nDst; i < dstEnd; i++ {
			if r.drain[i] != pv {
				return r.calls, r.fail(int64(i), "write beyond reported output at lexatom %d", i)
			}
		}
		srcPos += nSrc
		dstPos += nDst

		residue := conv.ResidueLen()
		switch {
		case maxSeq == 1 && residue != converter.NoResidue:
			return r.calls, r.fail(int64(srcPos), "stateless codec reports residue %d", residue)
		case maxSeq > 1 && (residue < 0 || residue >= maxSeq):
			return r.calls, r.fail(int64(srcPos), "residue %d not below %d", residue, maxSeq)
		}
		pending := max(residue, 0)
		if srcPos-pending < 0 {
			return r.calls, r.fail(int64(srcPos), "residue %d exceeds consumed bytes", pending)
		}
		if got := conv.Offset() - base; got != int64(srcPos-pending) {
			return r.calls, r.fail(int64(srcPos), "stream offset %d, want %d", got, srcPos-pending)
		}

		switch out {
		case converter.Complete:
			if srcPos != srcEnd || pending != 0 {
				return r.calls, r.fail(int64(srcPos), "complete with %d bytes left and residue %d", srcEnd-srcPos, pending)
			}
		case converter.DestinationFull:
			if dstPos != dstEnd || srcPos == srcEnd {
				return r.calls, r.fail(int64(srcPos), "destination-full with room %d and %d bytes left", dstEnd-dstPos, srcEnd-srcPos)
			}
			if dstEnd == len(r.drain) {
				return r.calls, r.fail(int64(dstPos), "more lexatoms than the %d in %s", len(r.want), r.fx.ReferenceFile)
			}
		case converter.SourceExhausted:
			if srcPos != srcEnd || pending == 0 {
				return r.calls, r.fail(int64(srcPos), "source-exhausted with %d bytes left and residue %d", srcEnd-srcPos, pending)
			}
			if srcEnd == len(src) {
				return r.calls, fmt.Errorf("%s %s: %w", r.fx.Input, r.pattern.Name, conv.Finish())
			}
		}

		if out == converter.Complete && srcPos == len(src) {
			break
		}
	}

	if dstPos != len(r.want) {
		return r.calls, r.fail(int64(dstPos), "emitted %d of %d lexatoms", dstPos, len(r.want))
	}
	if err := conv.Finish(); err != nil {
		return r.calls, err
	}

	conv.ClearResidue()
	if nDst, nSrc, out, err := conv.Convert(r.drain[len(r.drain):], nil); err != nil || nDst != 0 || nSrc != 0 || out != converter.Complete {
		return r.calls, r.fail(int64(srcPos), "clearing an empty residue changed the converter: %d %d %v %v", nDst, nSrc, out, err)
	}
	if conv.ResidueLen() > 0 {
		return r.calls, r.fail(int64(srcPos), "residue after clearing")
	}
	return r.calls, nil
}
