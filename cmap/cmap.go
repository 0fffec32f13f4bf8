// Package cmap implements the CMap mapping engine spec.md §3 describes:
// codespace ranges that pick a byte-code length (1..4 bytes), and
// bfchar/bfrange or CID-range tables mapping those codes onward, either
// to Unicode runes (ToUnicode CMaps) or to CIDs (embedded CID CMaps for
// Type0 fonts).
//
// Grounded on the teacher's fonts/cmaps package (cmap.go, parser.go,
// lexer.go, to_unicode.go, utils.go), generalized into a single engine
// that serves both ToUnicode and CID-range lookups instead of two
// parallel parser states.
package cmap

import "fmt"

// CharCode is a decoded 1-4 byte character code, big-endian.
type CharCode uint32

// CID is a character identifier, the target of a CID CMap.
type CID uint32

// MissingCodeRune replaces a code with no mapping; U+FFFD.
const MissingCodeRune = '�'

// Codespace is one codespace range: every code in [Low, High] is read
// using NumBytes bytes.
type Codespace struct {
	NumBytes int
	Low, High CharCode
}

func (c Codespace) contains(code CharCode, numBytes int) bool {
	return numBytes == c.NumBytes && c.Low <= code && code <= c.High
}

// bfEntry is one bfchar or collapsed bfrange mapping: codes in
// [From, To] map to consecutive runes starting at Dest (From==To for a
// plain bfchar).
type bfEntry struct {
	From, To CharCode
	Dest     []rune // len 1 when To==From and a single-rune target
}

// CIDRange maps a contiguous run of character codes to a contiguous run
// of CIDs starting at CIDStart.
type CIDRange struct {
	Codespace
	CIDStart CID
}

// CMap is a parsed CMap resource: either a ToUnicode CMap (bf entries
// populated), a CID CMap (CIDRanges populated), or both.
type CMap struct {
	Name       string
	UseCMap    string // base CMap to fall back to, if not empty
	Codespaces []Codespace
	bfEntries  []bfEntry
	CIDRanges  []CIDRange
}

// simpleCodespace reports whether every codespace reads exactly one byte.
func (c *CMap) simpleCodespace() bool {
	for _, cs := range c.Codespaces {
		if cs.NumBytes != 1 {
			return false
		}
	}
	return len(c.Codespaces) > 0
}

// matchCode reads the next code from data using the codespace ranges,
// trying 1 then 2 then 3 then 4 bytes until one falls inside a declared
// codespace. Mirrors the teacher's CMap.matchCode.
func (c *CMap) matchCode(data []byte) (code CharCode, n int, ok bool) {
	for j := 0; j < 4 && j < len(data); j++ {
		code = code<<8 | CharCode(data[j])
		n = j + 1
		for _, cs := range c.Codespaces {
			if cs.contains(code, n) {
				return code, n, true
			}
		}
	}
	return 0, 0, false
}

// CodeEntry is one decoded character code plus the number of raw bytes
// it consumed, which content.ExtractText needs to apply PDF 1.7
// §9.3.3's word-spacing rule ("applied to every occurrence of the
// single-byte character code 32" — never true for a 2-byte CID code
// that happens to equal 32).
type CodeEntry struct {
	Code     CharCode
	NumBytes int
}

// CodeEntries splits data into character codes using the codespace
// ranges, retaining each code's byte width. If no codespace is
// declared, every byte is its own one-byte code (Identity behavior for
// malformed or minimal CMaps).
func (c *CMap) CodeEntries(data []byte) []CodeEntry {
	if len(c.Codespaces) == 0 || c.simpleCodespace() {
		out := make([]CodeEntry, len(data))
		for i, b := range data {
			out[i] = CodeEntry{Code: CharCode(b), NumBytes: 1}
		}
		return out
	}
	var out []CodeEntry
	for i := 0; i < len(data); {
		code, n, ok := c.matchCode(data[i:])
		if !ok {
			out = append(out, CodeEntry{Code: CharCode(data[i]), NumBytes: 1})
			i++
			continue
		}
		out = append(out, CodeEntry{Code: code, NumBytes: n})
		i += n
	}
	return out
}

// Codes splits data into character codes using the codespace ranges. If
// no codespace is declared, every byte is its own one-byte code
// (Identity behavior for malformed or minimal CMaps).
func (c *CMap) Codes(data []byte) []CharCode {
	entries := c.CodeEntries(data)
	out := make([]CharCode, len(entries))
	for i, e := range entries {
		out[i] = e.Code
	}
	return out
}

// ToUnicode decodes data (raw content-stream string bytes) to its
// Unicode text, per spec.md §4.5's rule 1 ("walk codespace ranges to
// pick code length, then map via bf ranges"). Codes with no bf mapping
// become MissingCodeRune.
func (c *CMap) ToUnicode(data []byte) string {
	var out []rune
	for _, code := range c.Codes(data) {
		out = append(out, c.lookupRunes(code)...)
	}
	return string(out)
}

func (c *CMap) lookupRunes(code CharCode) []rune {
	for _, e := range c.bfEntries {
		if code >= e.From && code <= e.To {
			if len(e.Dest) == 1 {
				return []rune{e.Dest[0] + rune(code-e.From)}
			}
			idx := int(code - e.From)
			if idx < len(e.Dest) {
				return []rune{e.Dest[idx]}
			}
		}
	}
	return []rune{MissingCodeRune}
}

// ToCID maps a character code to a CID using CIDRanges, per spec.md
// §4.5's rule 2 ("use Encoding to map bytes → CID").
func (c *CMap) ToCID(code CharCode) CID {
	for _, r := range c.CIDRanges {
		if r.Low <= code && code <= r.High {
			return r.CIDStart + CID(code-r.Low)
		}
	}
	return CID(code)
}

func (c *CMap) String() string {
	return fmt.Sprintf("CMap(%s, %d codespaces, %d bf entries, %d cid ranges)",
		c.Name, len(c.Codespaces), len(c.bfEntries), len(c.CIDRanges))
}
