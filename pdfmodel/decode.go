package pdfmodel

import "github.com/corvuspdf/engine/cmap"

// Glyph is one decoded character code from a shown string, carrying
// everything content.ExtractText needs for spec.md §4.5's displacement
// formula and text-extraction decode chain in one pass: the raw code
// and its byte width (for the word-spacing rule), its glyph-space
// width (for advance), and its decoded text.
type Glyph struct {
	Code     int
	NumBytes int
	Width    float64 // glyph-space units, 1000 to the em
	Text     string
}

// Glyphs decodes raw content-stream string bytes (the operand of
// Tj/TJ/'/") into one Glyph per character code, through this font's
// resolution chain (spec.md §4.5 "Decode bytes through the font's
// resolution chain").
func (f *Font) Glyphs(data []byte) []Glyph {
	if f.Subtype == "Type0" {
		return f.glyphsType0(data)
	}
	out := make([]Glyph, len(data))
	for i, b := range data {
		code := int(b)
		out[i] = Glyph{Code: code, NumBytes: 1, Width: f.RuneWidth(code), Text: string(f.decodeSimpleText(code))}
	}
	return out
}

// decodeSimpleText prefers ToUnicode (spec.md §4.5 rule 1, "authoritative"
// even for a simple font whose encoding would otherwise resolve it)
// before falling back to the encoding/Differences chain (rule 3).
func (f *Font) decodeSimpleText(code int) rune {
	if f.ToUnicode != nil {
		if s := f.ToUnicode.ToUnicode([]byte{byte(code)}); s != "" {
			return []rune(s)[0]
		}
	}
	return f.DecodeSimpleByte(code)
}

// glyphsType0 implements spec.md §4.5 rule 2: map bytes to CIDs via the
// font's own /Encoding CMap (custom embedded, or identity for
// Identity-H/Identity-V), look up each CID's width from the descendant
// CID font's /W table, and decode text via ToUnicode when present or
// else fall through using the CID value as the Unicode code point
// (spec.md: "Identity-H falls through when no ToUnicode is available").
func (f *Font) glyphsType0(data []byte) []Glyph {
	cm := f.EncodingCMap
	if cm == nil {
		cm = cmap.Identity("Identity-H")
	}
	entries := cm.CodeEntries(data)
	out := make([]Glyph, len(entries))
	for i, e := range entries {
		cid := cm.ToCID(e.Code)
		width := 1000.0
		if f.DescendantFont != nil {
			width = f.DescendantFont.RuneWidth(int(cid))
		}
		var text string
		if f.ToUnicode != nil {
			raw := codeBytes(e.Code, e.NumBytes)
			text = f.ToUnicode.ToUnicode(raw)
		} else {
			text = string(rune(cid))
		}
		out[i] = Glyph{Code: int(e.Code), NumBytes: e.NumBytes, Width: width, Text: text}
	}
	return out
}

func codeBytes(code cmap.CharCode, numBytes int) []byte {
	b := make([]byte, numBytes)
	for i := numBytes - 1; i >= 0; i-- {
		b[i] = byte(code)
		code >>= 8
	}
	return b
}

// DecodeText is a convenience wrapper around Glyphs for callers that
// only want the concatenated decoded text, not per-glyph advances.
func (f *Font) DecodeText(data []byte) string {
	glyphs := f.Glyphs(data)
	var out []byte
	for _, g := range glyphs {
		out = append(out, g.Text...)
	}
	return string(out)
}

// RuneWidth returns the displacement width (glyph-space units, 1000 to
// the em) used for a decoded character code, per spec.md §4.5's
// "width_in_glyph_space/1000" displacement formula. Falls back to
// MissingWidth when code has no entry in WidthsByCode.
func (f *Font) RuneWidth(code int) float64 {
	if w, ok := f.Metrics.WidthsByCode[code]; ok {
		return w
	}
	if f.Metrics.MissingWidth != 0 {
		return f.Metrics.MissingWidth
	}
	return 500 // PDF 1.7 default MissingWidth when the descriptor omits one
}

// IsSpaceCode reports whether code is the single-byte code 32 (the only
// code word spacing applies to, per PDF 1.7 §9.3.3: "word spacing ...
// shall be applied to every occurrence of the single-byte character
// code 32").
func (f *Font) IsSpaceCode(code int, numBytes int) bool {
	return numBytes == 1 && code == 32
}
