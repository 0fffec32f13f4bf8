package content

import (
	"math"

	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/pdfmodel"
)

// PageKind classifies a page by how much of it is covered by text
// versus placed images (spec.md §4.5 "Page analyzer").
type PageKind string

const (
	KindScanned PageKind = "Scanned"
	KindText    PageKind = "Text"
	KindMixed   PageKind = "Mixed"
)

// AnalyzerThresholds are the configurable cutoffs spec.md §4.5 fixes as
// defaults but leaves adjustable ("the exact threshold ... varies
// across example code; §4.5 fixes the default values but leaves them
// configurable").
type AnalyzerThresholds struct {
	ScannedImageRatio float64 // default 0.8
	ScannedTextRatio  float64 // default 0.1
	TextTextRatio     float64 // default 0.7
	TextImageRatio    float64 // default 0.2
}

// DefaultAnalyzerThresholds returns spec.md §4.5's literal defaults.
func DefaultAnalyzerThresholds() AnalyzerThresholds {
	return AnalyzerThresholds{ScannedImageRatio: 0.8, ScannedTextRatio: 0.1, TextTextRatio: 0.7, TextImageRatio: 0.2}
}

// PageAnalysis is the computed coverage ratios and resulting
// classification for one page.
type PageAnalysis struct {
	Kind      PageKind
	TextRatio float64
	ImageRatio float64
}

// AnalyzePage classifies page as Scanned, Text, or Mixed by estimating
// how much of its area is covered by text runs versus image XObjects
// (spec.md §4.5 "Page analyzer"). Text coverage is approximated from
// each run's device-space horizontal extent times its font size (a
// bounding-box estimate, not per-glyph outlines — this engine does not
// rasterize, per spec.md's explicit non-goal); image coverage sums
// each placed image XObject's unit-square area under its CTM at the
// time of its Do operator.
func AnalyzePage(doc *pdfmodel.PDFDocument, page *pdfmodel.Page, th AnalyzerThresholds) (PageAnalysis, error) {
	pageArea := math.Abs(page.MediaBox[2]-page.MediaBox[0]) * math.Abs(page.MediaBox[3]-page.MediaBox[1])
	if pageArea == 0 {
		return PageAnalysis{Kind: KindMixed}, nil
	}

	raw, err := doc.Content(page)
	if err != nil {
		return PageAnalysis{}, err
	}
	ops, err := Parse(raw)
	if err != nil {
		return PageAnalysis{}, err
	}

	xobjects := resourceXObjectNames(doc, page.Resources)

	var textArea, imageArea float64
	fr := newFontResolver(doc, page.Resources)
	var curFont *pdfmodel.Font

	interp := NewInterpreter()
	interp.Visit = func(op Operation, state GraphicsState) {
		switch op.Op {
		case OpSetFont:
			if f, err := fr.resolve(op.name(0)); err == nil {
				curFont = f
			}
		case OpShowText, OpMoveShowText:
			if len(op.Operands) > 0 {
				if s, ok := op.Operands[0].(object.String); ok {
					textArea += estimateRunArea(curFont, s, state)
				}
			}
		case OpMoveSetShowText:
			if len(op.Operands) > 2 {
				if s, ok := op.Operands[2].(object.String); ok {
					textArea += estimateRunArea(curFont, s, state)
				}
			}
		case OpShowTextArray:
			arr, _ := object.AsArray(opOrNil(op, 0))
			for _, el := range arr {
				if s, ok := el.(object.String); ok {
					textArea += estimateRunArea(curFont, s, state)
				}
			}
		case OpXObject:
			name := op.name(0)
			if xobjects[name] {
				// Unit-square area under the CTM: |det| of the linear part.
				area := math.Abs(state.CTM.A*state.CTM.D - state.CTM.B*state.CTM.C)
				imageArea += area
			}
		}
	}
	interp.Run(ops)

	analysis := PageAnalysis{
		TextRatio:  clamp01(textArea / pageArea),
		ImageRatio: clamp01(imageArea / pageArea),
	}
	switch {
	case analysis.ImageRatio > th.ScannedImageRatio && analysis.TextRatio < th.ScannedTextRatio:
		analysis.Kind = KindScanned
	case analysis.TextRatio > th.TextTextRatio && analysis.ImageRatio < th.TextImageRatio:
		analysis.Kind = KindText
	default:
		analysis.Kind = KindMixed
	}
	return analysis, nil
}

// estimateRunArea approximates the device-space area a shown string
// covers: its horizontal advance (font-metric widths scaled by the CTM)
// times an assumed line height of one font-size unit.
func estimateRunArea(font *pdfmodel.Font, str object.String, state GraphicsState) float64 {
	if font == nil || state.Text.FontSize == 0 {
		return 0
	}
	fs := state.Text.FontSize
	tz := state.Text.HorizScale
	if tz == 0 {
		tz = 100
	}
	var widthGlyphSpace float64
	for _, g := range font.Glyphs(str.Bytes) {
		widthGlyphSpace += g.Width / 1000 * fs * (tz / 100)
	}
	scale := state.CTM.ScaleX()
	if scale == 0 {
		scale = 1
	}
	width := widthGlyphSpace * scale
	height := fs * scale
	return width * height
}

// resourceXObjectNames returns the set of resource names under /XObject
// whose /Subtype is /Image (Form XObjects don't themselves cover area;
// their nested content would, but recursing into them is out of scope
// here — this analyzer looks at the current content stream's direct
// placements only).
func resourceXObjectNames(doc *pdfmodel.PDFDocument, resources object.Dictionary) map[object.Name]bool {
	out := map[object.Name]bool{}
	v, ok := resources.Get("XObject")
	if !ok {
		return out
	}
	resolved, err := doc.Doc.Resolve(v)
	if err != nil {
		return out
	}
	dict, ok := object.AsDictionary(resolved)
	if !ok {
		return out
	}
	for _, name := range dict.Keys() {
		entry, _ := dict.Get(name)
		entryResolved, err := doc.Doc.Resolve(entry)
		if err != nil {
			continue
		}
		sub, ok := object.AsStream(entryResolved)
		if !ok {
			continue
		}
		if st, ok := sub.Dict.Get("Subtype"); ok {
			if n, ok := object.AsName(st); ok && n == "Image" {
				out[name] = true
			}
		}
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
