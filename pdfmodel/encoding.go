package pdfmodel

import "golang.org/x/text/encoding/charmap"

// ReplacementChar stands in for a code this engine cannot map to
// Unicode, per spec.md §9's explicit preference for "an explicit
// ReplacementChar policy" over guessing at a Latin-1 cast.
const ReplacementChar = '�'

// DecodeSimpleByte maps one content-stream byte to Unicode through a
// simple font's encoding chain (spec.md §4.5 rule 3): /Differences
// first, then the declared BaseEncoding, defaulting to WinAnsiEncoding
// for TrueType fonts and StandardEncoding for the others when the font
// names none.
//
// WinAnsiEncoding and MacRomanEncoding are the two PDF base encodings
// that coincide, byte-for-byte, with a well-known 8-bit charset
// (Windows-1252 and traditional Mac OS Roman, respectively); this engine
// reuses golang.org/x/text/encoding/charmap's tables for them instead of
// hand-transcribing the 256-entry glyph-name tables the teacher
// generates from poppler (fonts/simpleencodings), since that specific
// generated data file is not part of this corpus. StandardEncoding and
// MacExpertEncoding (rare outside legacy Type1 fonts) fall back to
// ASCII for the common range and ReplacementChar above it — a
// documented scope cut, not a silent wrong answer.
func (f *Font) DecodeSimpleByte(code int) rune {
	if f.Differences != nil {
		if name, ok := f.Differences[code]; ok {
			return runeForGlyphName(name)
		}
	}
	if code < 0 || code > 255 {
		return ReplacementChar
	}
	base := f.BaseEncoding
	if base == "" {
		// spec.md §4.5 rule 3 default, mirrored from the teacher's priority
		// list in fonts/encoding.go: "TrueType --> WinAnsiEncoding, others
		// --> StandardEncoding".
		if f.Subtype == "TrueType" {
			base = EncodingWinAnsi
		} else {
			base = EncodingStandard
		}
	}
	switch base {
	case EncodingMacRoman:
		return decodeCharmapByte(charmap.Macintosh, byte(code))
	case EncodingWinAnsi:
		return decodeCharmapByte(charmap.Windows1252, byte(code))
	case EncodingStandard, EncodingMacExpert:
		if code < 0x80 {
			return rune(code)
		}
		return ReplacementChar
	default:
		return decodeCharmapByte(charmap.Windows1252, byte(code))
	}
}

func decodeCharmapByte(cm *charmap.Charmap, b byte) rune {
	r := cm.DecodeByte(b)
	if r == 0 && b != 0 {
		return ReplacementChar
	}
	return r
}
