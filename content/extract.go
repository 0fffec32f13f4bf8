// Text extraction (spec.md §4.5 "Text extraction"): runs the operator
// interpreter over a page's content stream, decoding shown strings
// through each font's resolution chain and joining the resulting runs
// into one string using pen-gap heuristics. Grounded on
// fonts/cmaps/to_unicode.go for the CMap half of the decode chain and,
// for the run-joining heuristics themselves (space/newline thresholds),
// on original_source/oxidize-pdf-core's text-extraction modules,
// adapted to this engine's Matrix/Interpreter types.
package content

import (
	"fmt"

	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/pdfmodel"
)

// ExtractOptions configures the run-joining heuristics spec.md §4.5
// leaves as defaults-but-configurable.
type ExtractOptions struct {
	// SpaceThreshold is the fraction of font size a horizontal pen gap
	// must exceed before a space is inserted between runs. Default 0.2
	// matches spec.md §4.5 literally.
	SpaceThreshold float64
	// NewlineThreshold is the fraction of font size a vertical pen
	// change must exceed before a newline is inserted. spec.md §4.5
	// leaves the exact value to the implementer; 0.5 is this engine's
	// default (half a line height, conservative against false line
	// breaks from small baseline shifts like superscripts).
	NewlineThreshold float64
}

// DefaultExtractOptions returns the defaults described on ExtractOptions:
// 0.2 for SpaceThreshold and this engine's 0.5 for NewlineThreshold.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{SpaceThreshold: 0.2, NewlineThreshold: 0.5}
}

// Run is one contiguous decoded text fragment with the device-space
// position of its first glyph's origin (spec.md §4.5 "Emit runs with
// position derived from text_matrix × ctm applied to origin").
type Run struct {
	Text string
	X, Y float64
}

// fontResolver resolves a page's /Font resource name to a typed Font,
// caching across repeated Tf operators (spec.md's Document object
// cache already memoizes the underlying dictionary resolution; this
// cache avoids rebuilding the typed Font view every Tf).
type fontResolver struct {
	doc   *pdfmodel.PDFDocument
	fonts object.Dictionary
	cache map[object.Name]*pdfmodel.Font
}

func newFontResolver(doc *pdfmodel.PDFDocument, resources object.Dictionary) *fontResolver {
	fr := &fontResolver{doc: doc, cache: map[object.Name]*pdfmodel.Font{}}
	if v, ok := resources.Get("Font"); ok {
		if resolved, err := doc.Doc.Resolve(v); err == nil {
			if d, ok := object.AsDictionary(resolved); ok {
				fr.fonts = d
			}
		}
	}
	return fr
}

func (fr *fontResolver) resolve(name object.Name) (*pdfmodel.Font, error) {
	if f, ok := fr.cache[name]; ok {
		return f, nil
	}
	ref, ok := fr.fonts.Get(name)
	if !ok {
		return nil, fmt.Errorf("content: font resource %q not found", name)
	}
	resolved, err := fr.doc.Doc.Resolve(ref)
	if err != nil {
		return nil, err
	}
	dict, ok := object.AsDictionary(resolved)
	if !ok {
		return nil, fmt.Errorf("content: font resource %q is not a dictionary", name)
	}
	f, err := fr.doc.ResolveFont(dict)
	if err != nil {
		return nil, err
	}
	fr.cache[name] = f
	return f, nil
}

// pen tracks the device-space position of the last glyph painted, to
// drive the space/newline insertion heuristics between runs.
type pen struct {
	x, y  float64
	valid bool
}

// ExtractText runs page's content stream through the operator
// interpreter and returns both the concatenated extracted text (spec.md
// scenario 2/3/4's literal shape) and the individual positioned runs
// (spec.md §4.5 "Emit runs with position...").
func ExtractText(doc *pdfmodel.PDFDocument, page *pdfmodel.Page, opts ExtractOptions) (string, []Run, error) {
	raw, err := doc.Content(page)
	if err != nil {
		return "", nil, err
	}
	ops, err := Parse(raw)
	if err != nil {
		return "", nil, err
	}

	fr := newFontResolver(doc, page.Resources)
	var text []byte
	var runs []Run
	var p pen
	var curFont *pdfmodel.Font
	var interp *Interpreter

	// show decodes and paints one string operand, glyph by glyph,
	// advancing the live text matrix after each one (spec.md §4.5
	// "After Tj, the text matrix advances by the consumed string's
	// displacement") so the next operator (another Tj, or a relative
	// Td) sees the correct pen position.
	show := func(str object.String) {
		if curFont == nil {
			return
		}
		fs := interp.State().Text.FontSize
		if fs == 0 {
			return
		}
		tz := interp.State().Text.HorizScale
		if tz == 0 {
			tz = 100
		}
		glyphs := curFont.Glyphs(str.Bytes)
		runStart := len(text)
		runX, runY := 0.0, 0.0
		haveOrigin := false
		for _, g := range glyphs {
			st := interp.State()
			ux, uy := st.Text.Matrix.Apply(0, 0)
			dx, dy := st.CTM.Apply(ux, uy)
			if !haveOrigin {
				runX, runY = dx, dy
				haveOrigin = true
			}
			if p.valid {
				vgap := dy - p.y
				gap := dx - p.x
				if abs(vgap) > opts.NewlineThreshold*fs {
					text = append(text, '\n')
					runStart = len(text)
					haveOrigin = false
					runX, runY = dx, dy
				} else if gap > opts.SpaceThreshold*fs {
					text = append(text, ' ')
				}
			}
			text = append(text, g.Text...)

			ws := 0.0
			if curFont.IsSpaceCode(g.Code, g.NumBytes) {
				ws = st.Text.WordSpacing
			}
			advance := ((g.Width/1000)*fs + st.Text.CharSpacing + ws) * (tz / 100)
			interp.AdvanceTextMatrix(advance)

			st = interp.State()
			p.x, p.y = st.CTM.Apply(st.Text.Matrix.Apply(0, 0))
			p.valid = true
		}
		if haveOrigin {
			runs = append(runs, Run{Text: string(text[runStart:]), X: runX, Y: runY})
		}
	}

	interp = NewInterpreter()
	interp.Visit = func(op Operation, state GraphicsState) {
		switch op.Op {
		case OpSetFont:
			if f, err := fr.resolve(op.name(0)); err == nil {
				curFont = f
			}
		case OpShowText:
			if len(op.Operands) > 0 {
				if s, ok := op.Operands[0].(object.String); ok {
					show(s)
				}
			}
		case OpMoveShowText:
			if len(op.Operands) > 0 {
				if s, ok := op.Operands[0].(object.String); ok {
					show(s)
				}
			}
		case OpMoveSetShowText:
			if len(op.Operands) > 2 {
				if s, ok := op.Operands[2].(object.String); ok {
					show(s)
				}
			}
		case OpShowTextArray:
			arr, ok := object.AsArray(opOrNil(op, 0))
			if !ok {
				return
			}
			fs := state.Text.FontSize
			tz := state.Text.HorizScale
			if tz == 0 {
				tz = 100
			}
			for _, el := range arr {
				if s, ok := el.(object.String); ok {
					show(s)
					continue
				}
				if n, ok := object.AsNumber(el); ok {
					adj := -(n / 1000) * fs * (tz / 100)
					interp.AdvanceTextMatrix(adj)
				}
			}
		}
	}
	interp.Run(ops)

	return string(text), runs, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
