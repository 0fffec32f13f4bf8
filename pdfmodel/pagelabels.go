package pdfmodel

import (
	"fmt"
	"strings"

	"github.com/corvuspdf/engine/object"
)

// labelRange is one entry of the /PageLabels number tree: starting at
// page index From, pages are numbered per Style with an optional
// Prefix and a starting value St (spec.md §4.4 "style dictionary
// { S: (D|R|r|A|a), P: prefix, St: start }").
type labelRange struct {
	From   int
	Style  byte // 'D', 'R', 'r', 'A', 'a', or 0 for "no numeral, prefix only"
	Prefix string
	Start  int
}

// PageLabels is the page-index-to-label function spec.md §4.4 asks
// for ("Produce a function label(page_index) → string").
type PageLabels struct {
	ranges []labelRange
}

// ParsePageLabels reads the catalog's /PageLabels number tree, if any.
// A document without /PageLabels gets the PDF default: plain decimal
// numbering starting at 1.
func (p *PDFDocument) ParsePageLabels() (*PageLabels, error) {
	obj, ok, err := p.catalogField("PageLabels")
	if err != nil {
		return nil, err
	}
	if !ok {
		return &PageLabels{ranges: []labelRange{{From: 0, Style: 'D', Start: 1}}}, nil
	}
	root, ok := object.AsDictionary(obj)
	if !ok {
		return &PageLabels{ranges: []labelRange{{From: 0, Style: 'D', Start: 1}}}, nil
	}

	entries, err := walkNumberTree(p.Doc, root, 0)
	if err != nil {
		return nil, err
	}

	pl := &PageLabels{}
	for _, e := range entries {
		dict, ok := object.AsDictionary(e.Value)
		if !ok {
			continue
		}
		lr := labelRange{From: e.Key, Start: 1}
		if s, ok := dict.Get("S"); ok {
			if n, ok := object.AsName(s); ok && len(n) == 1 {
				lr.Style = n[0]
			}
		}
		if pfx, ok := dict.Get("P"); ok {
			if b, ok := object.AsString(pfx); ok {
				lr.Prefix = string(b)
			}
		}
		if st, ok := dict.Get("St"); ok {
			if n, ok := object.AsNumber(st); ok {
				lr.Start = int(n)
			}
		}
		pl.ranges = append(pl.ranges, lr)
	}
	if len(pl.ranges) == 0 {
		pl.ranges = []labelRange{{From: 0, Style: 'D', Start: 1}}
	}
	return pl, nil
}

// Label returns the label for the 0-based page index, per PDF 1.7
// §12.4.2's numbering styles.
func (pl *PageLabels) Label(pageIndex int) string {
	active := pl.ranges[0]
	for _, r := range pl.ranges {
		if r.From <= pageIndex {
			active = r
		} else {
			break
		}
	}
	value := active.Start + (pageIndex - active.From)
	return active.Prefix + numeral(active.Style, value)
}

func numeral(style byte, value int) string {
	switch style {
	case 'D':
		return fmt.Sprintf("%d", value)
	case 'R':
		return toRoman(value, true)
	case 'r':
		return toRoman(value, false)
	case 'A':
		return toAlpha(value, true)
	case 'a':
		return toAlpha(value, false)
	default:
		return ""
	}
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(value int, upper bool) string {
	if value <= 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range romanTable {
		for value >= r.value {
			b.WriteString(r.symbol)
			value -= r.value
		}
	}
	s := b.String()
	if !upper {
		s = strings.ToLower(s)
	}
	return s
}

// toAlpha implements the PDF A/a numbering style: 1=A, 2=B, ..., 26=Z,
// 27=AA, 28=BB, ..., repeating letters rather than using base-26
// positional digits (PDF 1.7 §12.4.2).
func toAlpha(value int, upper bool) string {
	if value <= 0 {
		return ""
	}
	letter := byte('A' + (value-1)%26)
	if !upper {
		letter = byte('a' + (value-1)%26)
	}
	repeat := (value-1)/26 + 1
	return strings.Repeat(string(letter), repeat)
}
