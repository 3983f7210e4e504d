package codec

import "unicode/utf8"

type utf8Codec struct{}

// UTF8 is the strict UTF-8 codec.
var UTF8 Codec = utf8Codec{}

func (utf8Codec) Name() string           { return "UTF8" }
func (utf8Codec) MaxSequenceLength() int { return utf8.UTFMax }

func (utf8Codec) Decode(p []byte) (rune, int, Status) {
	if len(p) == 0 || !utf8.FullRune(p) {
		return 0, 0, Short
	}
	if p[0] < utf8.RuneSelf {
		return rune(p[0]), 1, OK
	}
	r, n := utf8.DecodeRune(p)
	// DecodeRune reports every ill-formed sequence as (RuneError, 1); a
	// genuine U+FFFD is three bytes long.
	if r == utf8.RuneError && n == 1 {
		return 0, 1, Invalid
	}
	return r, n, OK
}
