package engine

import (
	"encoding/binary"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/lexconv"
	"github.com/wippyai/lexconv/converter"
	"github.com/wippyai/lexconv/errors"
)

// chunkAtoms bounds the lexatoms converted per round trip to memory.
const chunkAtoms = 256

// Range is a byte range [Offset, End) of a linear memory. Offset is the
// cursor; Convert moves it forward.
type Range struct {
	Offset uint32
	End    uint32
}

// Len returns the bytes between cursor and end.
func (r *Range) Len() uint32 {
	return r.End - r.Offset
}

func (r *Range) overlaps(o *Range) bool {
	return r.Offset < o.End && o.Offset < r.End
}

// Convert converts the encoded bytes of src into lexatoms stored at dst, both
// ranges of mem. Only whole lexatoms are written; a trailing part of dst
// smaller than one lexatom is left untouched.
func Convert[T converter.Lexatom](conv *converter.Converter[T], mem lexconv.Memory, src, dst *Range) (converter.Outcome, error) {
	if src.Offset > src.End || dst.Offset > dst.End {
		panic("engine: cursor beyond end of range")
	}
	if src.Len() > 0 && dst.Len() > 0 && src.overlaps(dst) {
		panic("engine: destination range overlaps source range")
	}

	if sizer, ok := mem.(lexconv.MemorySizer); ok {
		size := int64(sizer.Size())
		for _, r := range []*Range{src, dst} {
			if int64(r.End) > size {
				return converter.Complete, errors.OutOfBounds(errors.PhaseRuntime, int64(r.End), size)
			}
		}
	}

	srcBytes, err := mem.Read(src.Offset, src.Len())
	if err != nil {
		return converter.Complete, errors.Wrap(errors.PhaseRuntime, errors.KindOutOfBounds, err, "read source range")
	}

	var zero T
	width := uint32(unsafe.Sizeof(zero))
	var scratch [chunkAtoms]T
	buf := getBuf()
	defer putBuf(buf)

	for {
		room := dst.Len() / width
		chunk := scratch[:min(room, chunkAtoms)]

		nDst, nSrc, out, cerr := conv.Convert(chunk, srcBytes)
		if nDst > 0 {
			*buf = appendLE((*buf)[:0], chunk[:nDst])
			if err := mem.Write(dst.Offset, *buf); err != nil {
				return out, errors.Wrap(errors.PhaseRuntime, errors.KindOutOfBounds, err, "write lexatoms")
			}
			dst.Offset += uint32(nDst) * width
		}
		src.Offset += uint32(nSrc)
		srcBytes = srcBytes[nSrc:]

		if cerr != nil {
			Logger().Debug("conversion in guest memory failed",
				zap.Uint32("src_offset", src.Offset), zap.Error(cerr))
			return out, cerr
		}
		if out == converter.DestinationFull && room > uint32(len(chunk)) {
			continue
		}
		return out, nil
	}
}

func appendLE[T converter.Lexatom](b []byte, atoms []T) []byte {
	var zero T
	switch unsafe.Sizeof(zero) {
	case 1:
		for _, a := range atoms {
			b = append(b, byte(a))
		}
	case 2:
		for _, a := range atoms {
			b = binary.LittleEndian.AppendUint16(b, uint16(a))
		}
	default:
		for _, a := range atoms {
			b = binary.LittleEndian.AppendUint32(b, uint32(a))
		}
	}
	return b
}
