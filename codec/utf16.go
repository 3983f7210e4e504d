package codec

import (
	"encoding/binary"
	"unicode"
	"unicode/utf16"
)

// lowSurrogate is the first code unit of the low surrogate range.
const lowSurrogate = 0xdc00

type utf16Codec struct {
	order binary.ByteOrder
	name  string
}

var (
	// UTF16BE is big-endian UTF-16 with surrogate pairs.
	UTF16BE Codec = utf16Codec{order: binary.BigEndian, name: "UTF16BE"}
	// UTF16LE is little-endian UTF-16 with surrogate pairs.
	UTF16LE Codec = utf16Codec{order: binary.LittleEndian, name: "UTF16LE"}
)

func (c utf16Codec) Name() string         { return c.name }
func (utf16Codec) MaxSequenceLength() int { return 4 }

func (c utf16Codec) Decode(p []byte) (rune, int, Status) {
	if len(p) < 2 {
		return 0, 0, Short
	}
	r1 := rune(c.order.Uint16(p))
	switch {
	case !utf16.IsSurrogate(r1):
		return r1, 2, OK
	case r1 >= lowSurrogate:
		// low surrogate without a preceding high one
		return 0, 2, Invalid
	}
	if len(p) < 4 {
		return 0, 0, Short
	}
	r := utf16.DecodeRune(r1, rune(c.order.Uint16(p[2:])))
	if r == unicode.ReplacementChar {
		return 0, 2, Invalid
	}
	return r, 4, OK
}

type ucs2Codec struct {
	order binary.ByteOrder
	name  string
}

var (
	// UCS2BE is big-endian UCS-2: one 16-bit unit per code point.
	UCS2BE Codec = ucs2Codec{order: binary.BigEndian, name: "UCS2BE"}
	// UCS2LE is little-endian UCS-2.
	UCS2LE Codec = ucs2Codec{order: binary.LittleEndian, name: "UCS2LE"}
)

func (c ucs2Codec) Name() string         { return c.name }
func (ucs2Codec) MaxSequenceLength() int { return 2 }

func (c ucs2Codec) Decode(p []byte) (rune, int, Status) {
	if len(p) < 2 {
		return 0, 0, Short
	}
	r := rune(c.order.Uint16(p))
	if utf16.IsSurrogate(r) {
		return 0, 2, Invalid
	}
	return r, 2, OK
}
