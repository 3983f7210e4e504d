package codec

import (
	"encoding/binary"
	"unicode/utf8"
)

// Surrogate code point range [surr1, surr3), as in unicode/utf16.
const (
	surr1 = 0xd800
	surr3 = 0xe000
)

type ucs4Codec struct {
	order binary.ByteOrder
	name  string
}

var (
	// UCS4BE is big-endian UCS-4 (UTF-32BE).
	UCS4BE Codec = ucs4Codec{order: binary.BigEndian, name: "UCS4BE"}
	// UCS4LE is little-endian UCS-4 (UTF-32LE).
	UCS4LE Codec = ucs4Codec{order: binary.LittleEndian, name: "UCS4LE"}
)

func (c ucs4Codec) Name() string         { return c.name }
func (ucs4Codec) MaxSequenceLength() int { return 4 }

func (c ucs4Codec) Decode(p []byte) (rune, int, Status) {
	if len(p) < 4 {
		return 0, 0, Short
	}
	v := c.order.Uint32(p)
	if v > utf8.MaxRune || (surr1 <= v && v < surr3) {
		return 0, 4, Invalid
	}
	return rune(v), 4, OK
}
