package codec

import (
	"errors"
	"strings"
	"testing"

	lcerrors "github.com/wippyai/lexconv/errors"
)

type decodeCase struct {
	name  string
	codec Codec
	in    []byte
	r     rune
	n     int
	st    Status
}

func TestDecode(t *testing.T) {
	tests := []decodeCase{
		{"ascii letter", ASCII, []byte("A"), 'A', 1, OK},
		{"ascii high bit", ASCII, []byte{0x80}, 0, 1, Invalid},
		{"ascii empty", ASCII, nil, 0, 0, Short},
		{"latin1 umlaut", Latin1, []byte{0xfc}, 'ü', 1, OK},

		{"utf8 ascii", UTF8, []byte("z"), 'z', 1, OK},
		{"utf8 two byte", UTF8, []byte("ñ"), 'ñ', 2, OK},
		{"utf8 three byte", UTF8, []byte("日本"), '日', 3, OK},
		{"utf8 four byte", UTF8, []byte("😀"), '😀', 4, OK},
		{"utf8 genuine replacement char", UTF8, []byte("�"), 0xFFFD, 3, OK},
		{"utf8 short lead", UTF8, []byte{0xe6}, 0, 0, Short},
		{"utf8 short two of four", UTF8, []byte{0xf0, 0x9f}, 0, 0, Short},
		{"utf8 short three of four", UTF8, []byte{0xf0, 0x9f, 0x98}, 0, 0, Short},
		{"utf8 stray continuation", UTF8, []byte{0x80, 0x41}, 0, 1, Invalid},
		{"utf8 bad continuation", UTF8, []byte{0xc3, 0x28}, 0, 1, Invalid},
		{"utf8 overlong", UTF8, []byte{0xc0, 0xaf}, 0, 1, Invalid},
		{"utf8 surrogate", UTF8, []byte{0xed, 0xa0, 0x80}, 0, 1, Invalid},
		{"utf8 beyond max rune", UTF8, []byte{0xf4, 0x90, 0x80, 0x80}, 0, 1, Invalid},

		{"utf16be bmp", UTF16BE, []byte{0x00, 0x41}, 'A', 2, OK},
		{"utf16le bmp", UTF16LE, []byte{0x41, 0x00}, 'A', 2, OK},
		{"utf16be pair", UTF16BE, []byte{0xd8, 0x3d, 0xde, 0x00}, '😀', 4, OK},
		{"utf16le pair", UTF16LE, []byte{0x3d, 0xd8, 0x00, 0xde}, '😀', 4, OK},
		{"utf16be one byte", UTF16BE, []byte{0xd8}, 0, 0, Short},
		{"utf16be high surrogate alone", UTF16BE, []byte{0xd8, 0x3d}, 0, 0, Short},
		{"utf16be high surrogate plus one", UTF16BE, []byte{0xd8, 0x3d, 0xde}, 0, 0, Short},
		{"utf16be unpaired high", UTF16BE, []byte{0xd8, 0x3d, 0x00, 0x41}, 0, 2, Invalid},
		{"utf16be lone low", UTF16BE, []byte{0xde, 0x00}, 0, 2, Invalid},
		{"utf16be high after high", UTF16BE, []byte{0xd8, 0x3d, 0xd8, 0x3d}, 0, 2, Invalid},
		{"utf16le replacement char", UTF16LE, []byte{0xfd, 0xff}, '\uFFFD', 2, OK},
		{"utf16be last pair", UTF16BE, []byte{0xdb, 0xff, 0xdf, 0xff}, 0x10FFFF, 4, OK},
		{"ucs2be private use", UCS2BE, []byte{0xe0, 0x00}, 0xE000, 2, OK},

		{"ucs2be bmp", UCS2BE, []byte{0x30, 0x42}, 'あ', 2, OK},
		{"ucs2le surrogate", UCS2LE, []byte{0x3d, 0xd8}, 0, 2, Invalid},

		{"ucs4be", UCS4BE, []byte{0x00, 0x01, 0xf6, 0x00}, '😀', 4, OK},
		{"ucs4le", UCS4LE, []byte{0x00, 0xf6, 0x01, 0x00}, '😀', 4, OK},
		{"ucs4be short", UCS4BE, []byte{0x00, 0x00, 0x00}, 0, 0, Short},
		{"ucs4be too large", UCS4BE, []byte{0x00, 0x11, 0x00, 0x00}, 0, 4, Invalid},
		{"ucs4be surrogate", UCS4BE, []byte{0x00, 0x00, 0xd8, 0x00}, 0, 4, Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, n, st := tt.codec.Decode(tt.in)
			if st != tt.st {
				t.Fatalf("status = %v, want %v", st, tt.st)
			}
			if n != tt.n {
				t.Errorf("n = %d, want %d", n, tt.n)
			}
			if st == OK && r != tt.r {
				t.Errorf("r = %U, want %U", r, tt.r)
			}
		})
	}
}

// A Short verdict must only be given for windows shorter than the maximum
// sequence length, otherwise a converter could never make progress.
func TestShortIsBounded(t *testing.T) {
	prefixes := map[Codec][][]byte{
		UTF8:    {{0xf0}, {0xf0, 0x9f}, {0xf0, 0x9f, 0x98}},
		UTF16BE: {{0xd8}, {0xd8, 0x3d}, {0xd8, 0x3d, 0xde}},
		UTF16LE: {{0x3d}, {0x3d, 0xd8}, {0x3d, 0xd8, 0x00}},
		UCS2BE:  {{0x30}},
		UCS4BE:  {{0x00}, {0x00, 0x01}, {0x00, 0x01, 0xf6}},
	}
	for c, list := range prefixes {
		for _, p := range list {
			_, _, st := c.Decode(p)
			if st != Short {
				t.Errorf("%s: % x => %v, want short", c.Name(), p, st)
			}
			if len(p) >= c.MaxSequenceLength() {
				t.Errorf("%s: short prefix % x reaches max length", c.Name(), p)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"ASCII", "ASCII"},
		{"us-ascii", "ASCII"},
		{"UTF8", "UTF8"},
		{"utf-8", "UTF8"},
		{"UTF16BE", "UTF16BE"},
		{"UTF-16LE", "UTF16LE"},
		{"UCS-4BE", "UCS4BE"},
		{"ucs_4le", "UCS4LE"},
		{"UTF-32BE", "UCS4BE"},
		{"latin1", "ISO-8859-1"},
		{"ISO-8859-1", "ISO-8859-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.name, err)
			}
			if c.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", c.Name(), tt.want)
			}
		})
	}
}

func TestLookup_Charmap(t *testing.T) {
	c, err := Lookup("windows-1252")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if c.MaxSequenceLength() != 1 || !Stateless(c) {
		t.Errorf("charmap codec must be stateless")
	}

	r, n, st := c.Decode([]byte{0x80})
	if st != OK || n != 1 || r != '€' {
		t.Errorf("0x80 => %U/%d/%v, want U+20AC/1/ok", r, n, st)
	}

	// 0x81 is undefined in windows-1252
	_, n, st = c.Decode([]byte{0x81})
	if st != Invalid || n != 1 {
		t.Errorf("0x81 => %d/%v, want 1/invalid", n, st)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("no-such-encoding")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, &lcerrors.Error{Phase: lcerrors.PhaseConfig, Kind: lcerrors.KindNotFound}) {
		t.Errorf("error = %v, want config/not_found", err)
	}
	var lerr *lcerrors.Error
	if !errors.As(err, &lerr) || !strings.Contains(lerr.Detail, `"no-such-encoding"`) || lerr.Cause == nil {
		t.Errorf("error = %#v, want quoted name and index cause", lerr)
	}
}

func TestLookup_NotSingleByte(t *testing.T) {
	_, err := Lookup("Shift_JIS")
	if err == nil {
		t.Fatal("expected error for multi-byte table encoding")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"ASCII", "ISO-8859-1", "UCS2BE", "UCS2LE", "UCS4BE", "UCS4LE", "UTF16BE", "UTF16LE", "UTF8"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
