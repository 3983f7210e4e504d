package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/lexconv/codec"
	"github.com/wippyai/lexconv/converter"
	"github.com/wippyai/lexconv/errors"
)

const text = "Fest gemauert in der Erden, ñandú, 日本語, 😀🎉"

func newMemory(t *testing.T, pages uint32) *WazeroMemory {
	t.Helper()
	ctx := context.Background()
	e, err := New(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })
	mem, err := e.NewMemory(ctx, pages)
	require.NoError(t, err)
	return mem
}

func readAtoms32(t *testing.T, mem *WazeroMemory, from, to uint32) []rune {
	t.Helper()
	b, err := mem.Read(from, to-from)
	require.NoError(t, err)
	out := make([]rune, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		out = append(out, rune(binary.LittleEndian.Uint32(b[i:])))
	}
	return out
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		cfg  *Config
		name string
	}{
		{nil, "nil config"},
		{&Config{}, "default config"},
		{&Config{MemoryLimitPages: 256}, "16MB limit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := New(ctx, tc.cfg)
			require.NoError(t, err)
			defer e.Close(ctx)
			require.NotNil(t, e.runtime)
		})
	}
}

func TestNewMemory(t *testing.T) {
	mem := newMemory(t, 2)
	require.Equal(t, uint32(2*65536), mem.Size())

	require.NoError(t, mem.Write(8, []byte{0x00, 0xF6, 0x01, 0x00}))
	b, err := mem.Read(8, 4)
	require.NoError(t, err)
	require.Equal(t, uint32(0x0001F600), binary.LittleEndian.Uint32(b))

	_, err = mem.Read(mem.Size()-1, 2)
	require.Error(t, err)
	require.Error(t, mem.Write(mem.Size(), []byte{1}))
}

func TestNewMemory_DefaultPages(t *testing.T) {
	mem := newMemory(t, 0)
	require.Equal(t, uint32(DefaultPages*65536), mem.Size())
}

func TestNewMemory_Limit(t *testing.T) {
	ctx := context.Background()
	e, err := New(ctx, &Config{MemoryLimitPages: 1})
	require.NoError(t, err)
	defer e.Close(ctx)

	_, err = e.NewMemory(ctx, 4)
	require.Error(t, err)
}

func TestConvert_OneBeat(t *testing.T) {
	mem := newMemory(t, 1)
	require.NoError(t, mem.Write(0, []byte(text)))

	src := &Range{Offset: 0, End: uint32(len(text))}
	dst := &Range{Offset: 4096, End: 8192}
	conv := converter.New[uint32](codec.UTF8)

	out, err := Convert(conv, mem, src, dst)
	require.NoError(t, err)
	require.Equal(t, converter.Complete, out)
	require.Equal(t, src.End, src.Offset)
	require.Equal(t, []rune(text), readAtoms32(t, mem, 4096, dst.Offset))
}

func TestConvert_LargerThanChunk(t *testing.T) {
	mem := newMemory(t, 1)
	n := chunkAtoms*3 + 7
	src := make([]byte, n)
	for i := range src {
		src[i] = byte('a' + i%26)
	}
	require.NoError(t, mem.Write(0, src))

	sr := &Range{Offset: 0, End: uint32(n)}
	dr := &Range{Offset: 8192, End: 8192 + uint32(4*n)}
	out, err := Convert(converter.New[uint32](codec.ASCII), mem, sr, dr)
	require.NoError(t, err)
	require.Equal(t, converter.Complete, out)
	require.Equal(t, dr.End, dr.Offset)

	got := readAtoms32(t, mem, 8192, dr.Offset)
	require.Len(t, got, n)
	require.Equal(t, rune('a'+(n-1)%26), got[n-1])
}

func TestConvert_StepwiseDrain(t *testing.T) {
	mem := newMemory(t, 1)
	require.NoError(t, mem.Write(0, []byte(text)))

	src := &Range{Offset: 0, End: uint32(len(text))}
	base := uint32(4096)
	dst := &Range{Offset: base, End: base}
	conv := converter.New[uint32](codec.UTF8)

	for calls := 0; ; calls++ {
		require.Less(t, calls, 200)
		dst.End += 4 * 3
		out, err := Convert(conv, mem, src, dst)
		require.NoError(t, err)
		if out == converter.Complete {
			break
		}
		require.Equal(t, converter.DestinationFull, out)
	}
	require.Equal(t, []rune(text), readAtoms32(t, mem, base, dst.Offset))
}

func TestConvert_StepwiseSource(t *testing.T) {
	mem := newMemory(t, 1)
	require.NoError(t, mem.Write(0, []byte(text)))

	src := &Range{Offset: 0, End: 0}
	base := uint32(4096)
	dst := &Range{Offset: base, End: 8192}
	conv := converter.New[uint32](codec.UTF8)

	sawResidue := false
	for src.End < uint32(len(text)) {
		src.End++
		out, err := Convert(conv, mem, src, dst)
		require.NoError(t, err)
		require.Equal(t, src.End, src.Offset, "every supplied byte is consumed")
		if out == converter.SourceExhausted {
			sawResidue = true
			require.Positive(t, conv.ResidueLen())
		}
	}
	require.True(t, sawResidue)
	require.NoError(t, conv.Finish())
	require.Equal(t, []rune(text), readAtoms32(t, mem, base, dst.Offset))
}

func TestConvert_Uint16(t *testing.T) {
	mem := newMemory(t, 1)
	units := []byte{0x00, 0x41, 0x00, 0xE9, 0x65, 0xE5}
	require.NoError(t, mem.Write(0, units))

	src := &Range{Offset: 0, End: uint32(len(units))}
	dst := &Range{Offset: 64, End: 64 + 7} // one odd byte stays untouched
	out, err := Convert(converter.New[uint16](codec.UTF16BE), mem, src, dst)
	require.NoError(t, err)
	require.Equal(t, converter.Complete, out)
	require.Equal(t, uint32(70), dst.Offset)

	b, err := mem.Read(64, 6)
	require.NoError(t, err)
	require.Equal(t, []byte{0x41, 0x00, 0xE9, 0x00, 0xE5, 0x65}, b)
}

func TestConvert_Malformed(t *testing.T) {
	mem := newMemory(t, 1)
	require.NoError(t, mem.Write(0, []byte{'o', 'k', 0xFF, 'x'}))

	src := &Range{Offset: 0, End: 4}
	dst := &Range{Offset: 64, End: 128}
	_, err := Convert(converter.New[uint32](codec.UTF8), mem, src, dst)
	require.Error(t, err)

	var lerr *errors.Error
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, errors.KindMalformed, lerr.Kind)
	require.Equal(t, int64(2), lerr.Offset)
	require.Equal(t, uint32(2), src.Offset)
	require.Equal(t, uint32(72), dst.Offset)
}

func TestConvert_OutOfBounds(t *testing.T) {
	mem := newMemory(t, 1)
	src := &Range{Offset: 0, End: 16}
	dst := &Range{Offset: mem.Size() - 8, End: mem.Size() + 8}

	_, err := Convert(converter.New[uint32](codec.ASCII), mem, src, dst)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds})
}

func TestConvert_Panics(t *testing.T) {
	mem := newMemory(t, 1)
	conv := converter.New[uint32](codec.ASCII)

	require.Panics(t, func() {
		_, _ = Convert(conv, mem, &Range{Offset: 10, End: 5}, &Range{Offset: 100, End: 200})
	})
	require.Panics(t, func() {
		_, _ = Convert(conv, mem, &Range{Offset: 0, End: 100}, &Range{Offset: 50, End: 200})
	})
}

// sliceMemory is a Memory without a size, so range checks fall to Read and
// Write.
type sliceMemory []byte

func (m sliceMemory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(m)) {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return m[offset : offset+length], nil
}

func (m sliceMemory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m)) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	copy(m[offset:], data)
	return nil
}

func TestConvert_PlainMemory(t *testing.T) {
	mem := make(sliceMemory, 64)
	copy(mem, "héllo")

	src := &Range{Offset: 0, End: 6}
	dst := &Range{Offset: 16, End: 26}
	out, err := Convert(converter.New[uint16](codec.UTF8), mem, src, dst)
	require.NoError(t, err)
	require.Equal(t, converter.Complete, out)
	require.Equal(t, uint32(26), dst.Offset)
	require.Equal(t, []byte{'h', 0, 0xE9, 0, 'l', 0, 'l', 0, 'o', 0}, []byte(mem[16:26]))

	_, err = Convert(converter.New[uint16](codec.UTF8), mem, &Range{Offset: 60, End: 70}, &Range{Offset: 0, End: 8})
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds})

	_, err = Convert(converter.New[uint16](codec.UTF8), mem, &Range{Offset: 0, End: 6}, &Range{Offset: 60, End: 72})
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds})
}

func TestMemoryModule(t *testing.T) {
	m := memoryModule(3)
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, m[:8])
	require.Equal(t, []byte{0x05, 0x03, 0x01, 0x00, 0x03}, m[8:13])
	require.Equal(t, byte(0x07), m[13])
}
