// Package codec defines the per-encoding plug-in contract consumed by the
// converter package, together with the closed set of supported encodings.
//
// A Codec is pure: given a byte window that starts at a sequence boundary it
// reports exactly one of
//
//	OK       one code point and the number of bytes it occupies
//	Short    the window is a valid prefix, more bytes are needed
//	Invalid  the leading bytes form no code point under this encoding
//
// and it never retains state between calls. Buffer-boundary bookkeeping
// (residue, cursors, capacity) belongs to the converter.
//
// # Encodings
//
//	Name        Max  Notes
//	─────────────────────────────────────────────────────────
//	ASCII       1    bytes >= 0x80 are invalid
//	ISO-8859-1  1    identity mapping onto U+0000..U+00FF
//	UTF8        4    strict: overlong forms and surrogates are invalid
//	UTF16BE/LE  4    surrogate pairs, unpaired surrogates are invalid
//	UCS2BE/LE   2    BMP only, surrogate code units are invalid
//	UCS4BE/LE   4    values above U+10FFFF and surrogates are invalid
//	<charmap>   1    single-byte tables from golang.org/x/text
//
// Lookup resolves names case-insensitively and ignores '-' and '_', so
// "UTF-16BE", "utf16be" and "UTF_16BE" name the same codec. Names unknown
// to the built-in set are resolved through the IANA registry and served by
// a Charmap codec when the encoding is a single-byte table.
package codec
