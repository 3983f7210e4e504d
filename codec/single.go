package codec

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

type ascii struct{}

// ASCII is the 7-bit US-ASCII codec.
var ASCII Codec = ascii{}

func (ascii) Name() string           { return "ASCII" }
func (ascii) MaxSequenceLength() int { return 1 }

func (ascii) Decode(p []byte) (rune, int, Status) {
	if len(p) == 0 {
		return 0, 0, Short
	}
	if p[0] >= utf8.RuneSelf {
		return 0, 1, Invalid
	}
	return rune(p[0]), 1, OK
}

type latin1 struct{}

// Latin1 is ISO-8859-1, mapping every byte onto U+0000..U+00FF.
var Latin1 Codec = latin1{}

func (latin1) Name() string           { return "ISO-8859-1" }
func (latin1) MaxSequenceLength() int { return 1 }

func (latin1) Decode(p []byte) (rune, int, Status) {
	if len(p) == 0 {
		return 0, 0, Short
	}
	return rune(p[0]), 1, OK
}

// Charmap adapts a single-byte table from golang.org/x/text/encoding/charmap.
// Bytes the table leaves undefined are invalid.
type Charmap struct {
	name  string
	table [256]rune
}

// NewCharmap builds a codec from cm. The table is expanded once so Decode is
// a plain array lookup.
func NewCharmap(name string, cm *charmap.Charmap) *Charmap {
	c := &Charmap{name: name}
	for i := range c.table {
		r := cm.DecodeByte(byte(i))
		// U+FFFD is the table's marker for an undefined byte.
		if r == utf8.RuneError {
			r = -1
		}
		c.table[i] = r
	}
	return c
}

func (c *Charmap) Name() string         { return c.name }
func (*Charmap) MaxSequenceLength() int { return 1 }

func (c *Charmap) Decode(p []byte) (rune, int, Status) {
	if len(p) == 0 {
		return 0, 0, Short
	}
	r := c.table[p[0]]
	if r < 0 {
		return 0, 1, Invalid
	}
	return r, 1, OK
}
