package pdfmodel

import (
	"github.com/corvuspdf/engine/cmap"
	"github.com/corvuspdf/engine/object"
)

// BaseEncoding names one of the predefined simple-font encodings
// (spec.md §3 "base_encoding: enum").
type BaseEncoding string

const (
	EncodingWinAnsi   BaseEncoding = "WinAnsiEncoding"
	EncodingMacRoman  BaseEncoding = "MacRomanEncoding"
	EncodingMacExpert BaseEncoding = "MacExpertEncoding"
	EncodingStandard  BaseEncoding = "StandardEncoding"
	EncodingIdentityH BaseEncoding = "Identity-H"
	EncodingIdentityV BaseEncoding = "Identity-V"
	EncodingNone      BaseEncoding = ""
)

// Metrics holds the subset of a font's metrics this engine needs for
// displacement and page-layout computations (spec.md §3 "metrics:
// { ascent, descent, cap_height, widths_by_code }").
type Metrics struct {
	Ascent, Descent, CapHeight float64
	MissingWidth               float64
	WidthsByCode               map[int]float64
}

// Font is a typed view of a PDF font resource (spec.md §3 "Font").
// Grounded on the teacher's model/fonts.go FontType dispatch, adapted
// to resolve lazily through a document.Document rather than owning a
// fully decoded struct tree.
type Font struct {
	Dict           object.Dictionary
	Subtype        object.Name // Type0, Type1, TrueType, Type3, MMType1, CIDFontType0, CIDFontType2
	BaseEncoding   BaseEncoding
	Differences    map[int]string
	ToUnicode      *cmap.CMap
	DescendantFont *Font // populated for Type0
	Metrics        Metrics

	// EncodingCMap is the Type0 font's own /Encoding when that is an
	// embedded CMap stream (spec.md §4.5 rule 2: "use Encoding to map
	// bytes → CID"). Nil when /Encoding is a name (Identity-H/Identity-V
	// or a predefined CMap), in which case glyphsType0 in decode.go uses
	// an identity byte-pair-to-CID mapping without needing a table.
	EncodingCMap *cmap.CMap
}

// ResolveFont builds a typed Font view from a font resource dictionary.
func (p *PDFDocument) ResolveFont(dict object.Dictionary) (*Font, error) {
	f := &Font{Dict: dict, Metrics: Metrics{WidthsByCode: map[int]float64{}}}

	if st, ok := dict.Get("Subtype"); ok {
		f.Subtype, _ = object.AsName(st)
	}

	if err := p.resolveEncoding(f, dict); err != nil {
		return nil, err
	}
	if err := p.resolveToUnicode(f, dict); err != nil {
		return nil, err
	}
	if err := p.resolveWidths(f, dict); err != nil {
		return nil, err
	}
	if err := p.resolveDescriptorMetrics(f, dict); err != nil {
		return nil, err
	}

	if f.Subtype == "Type0" {
		if err := p.resolveDescendant(f, dict); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func (p *PDFDocument) resolveEncoding(f *Font, dict object.Dictionary) error {
	encObj, ok := dict.Get("Encoding")
	if !ok {
		return nil
	}
	resolved, err := p.Doc.Resolve(encObj)
	if err != nil {
		return err
	}
	if name, ok := object.AsName(resolved); ok {
		f.BaseEncoding = BaseEncoding(name)
		if f.Subtype == "Type0" && !cmap.IsIdentityName(string(name)) {
			// A predefined non-identity CMap name (e.g. "UniGB-UCS2-H")
			// names a CMap resource this engine doesn't ship a directory
			// of; extraction falls back to code==CID, matching spec.md
			// §4.5 rule 2's Identity-H fallback path for the unresolved
			// case.
		}
		return nil
	}
	if stream, ok := object.AsStream(resolved); ok && f.Subtype == "Type0" {
		decoded, err := p.Doc.DecodedStreamBytes(stream)
		if err != nil {
			return err
		}
		if cm, err := cmap.Parse(decoded); err == nil {
			f.EncodingCMap = cm
		}
		return nil
	}
	encDict, ok := object.AsDictionary(resolved)
	if !ok {
		return nil
	}
	if base, ok := encDict.Get("BaseEncoding"); ok {
		if name, ok := object.AsName(base); ok {
			f.BaseEncoding = BaseEncoding(name)
		}
	}
	if diffsObj, ok := encDict.Get("Differences"); ok {
		diffsResolved, err := p.Doc.Resolve(diffsObj)
		if err != nil {
			return err
		}
		arr, _ := object.AsArray(diffsResolved)
		f.Differences = make(map[int]string)
		code := 0
		for _, item := range arr {
			if n, ok := object.AsNumber(item); ok {
				code = int(n)
				continue
			}
			if name, ok := object.AsName(item); ok {
				f.Differences[code] = string(name)
				code++
			}
		}
	}
	return nil
}

func (p *PDFDocument) resolveToUnicode(f *Font, dict object.Dictionary) error {
	obj, ok := dict.Get("ToUnicode")
	if !ok {
		return nil
	}
	resolved, err := p.Doc.Resolve(obj)
	if err != nil {
		return err
	}
	stream, ok := object.AsStream(resolved)
	if !ok {
		return nil
	}
	decoded, err := p.Doc.DecodedStreamBytes(stream)
	if err != nil {
		return err
	}
	cm, err := cmap.Parse(decoded)
	if err != nil {
		return nil // malformed ToUnicode is tolerated: fall through to encoding-based decoding
	}
	f.ToUnicode = cm
	return nil
}

func (p *PDFDocument) resolveWidths(f *Font, dict object.Dictionary) error {
	firstObj, hasFirst := dict.Get("FirstChar")
	widthsObj, hasWidths := dict.Get("Widths")
	if !hasFirst || !hasWidths {
		return nil
	}
	firstResolved, err := p.Doc.Resolve(firstObj)
	if err != nil {
		return err
	}
	first, ok := object.AsNumber(firstResolved)
	if !ok {
		return nil
	}
	widthsResolved, err := p.Doc.Resolve(widthsObj)
	if err != nil {
		return err
	}
	arr, _ := object.AsArray(widthsResolved)
	for i, w := range arr {
		resolvedW, err := p.Doc.Resolve(w)
		if err != nil {
			return err
		}
		n, ok := object.AsNumber(resolvedW)
		if !ok {
			continue
		}
		f.Metrics.WidthsByCode[int(first)+i] = n
	}
	return nil
}

func (p *PDFDocument) resolveDescriptorMetrics(f *Font, dict object.Dictionary) error {
	descObj, ok := dict.Get("FontDescriptor")
	if !ok {
		return nil
	}
	resolved, err := p.Doc.Resolve(descObj)
	if err != nil {
		return err
	}
	desc, ok := object.AsDictionary(resolved)
	if !ok {
		return nil
	}
	num := func(key object.Name) float64 {
		v, ok := desc.Get(key)
		if !ok {
			return 0
		}
		r, err := p.Doc.Resolve(v)
		if err != nil {
			return 0
		}
		n, _ := object.AsNumber(r)
		return n
	}
	f.Metrics.Ascent = num("Ascent")
	f.Metrics.Descent = num("Descent")
	f.Metrics.CapHeight = num("CapHeight")
	f.Metrics.MissingWidth = num("MissingWidth")
	return nil
}

func (p *PDFDocument) resolveDescendant(f *Font, dict object.Dictionary) error {
	descObj, ok := dict.Get("DescendantFonts")
	if !ok {
		return nil
	}
	resolved, err := p.Doc.Resolve(descObj)
	if err != nil {
		return err
	}
	arr, ok := object.AsArray(resolved)
	if !ok || len(arr) == 0 {
		return nil
	}
	descResolved, err := p.Doc.Resolve(arr[0])
	if err != nil {
		return err
	}
	descDict, ok := object.AsDictionary(descResolved)
	if !ok {
		return nil
	}
	descendant, err := p.ResolveFont(descDict)
	if err != nil {
		return err
	}
	f.DescendantFont = descendant

	if dw, ok := descDict.Get("DW"); ok {
		if r, err := p.Doc.Resolve(dw); err == nil {
			if n, ok := object.AsNumber(r); ok {
				descendant.Metrics.MissingWidth = n
			}
		}
	}
	if w, ok := descDict.Get("W"); ok {
		if r, err := p.Doc.Resolve(w); err == nil {
			if arr, ok := object.AsArray(r); ok {
				p.mergeCIDWidths(descendant, arr)
			}
		}
	}
	return nil
}

// mergeCIDWidths decodes a CIDFont's /W array (PDF 1.7 §9.7.4.3): a
// sequence of either "c [w1 w2 ... wn]" (explicit widths for c, c+1,
// ...) or "c_first c_last w" (one width for the whole range).
func (p *PDFDocument) mergeCIDWidths(f *Font, arr object.Array) {
	i := 0
	for i < len(arr) {
		cObj, err := p.Doc.Resolve(arr[i])
		if err != nil {
			return
		}
		c, ok := object.AsNumber(cObj)
		if !ok {
			return
		}
		i++
		if i >= len(arr) {
			return
		}
		next, err := p.Doc.Resolve(arr[i])
		if err != nil {
			return
		}
		if list, ok := object.AsArray(next); ok {
			for j, w := range list {
				resolvedW, err := p.Doc.Resolve(w)
				if err != nil {
					continue
				}
				n, ok := object.AsNumber(resolvedW)
				if !ok {
					continue
				}
				f.Metrics.WidthsByCode[int(c)+j] = n
			}
			i++
			continue
		}
		cLast, ok := object.AsNumber(next)
		if !ok {
			return
		}
		i++
		if i >= len(arr) {
			return
		}
		wObj, err := p.Doc.Resolve(arr[i])
		if err != nil {
			return
		}
		w, ok := object.AsNumber(wObj)
		if !ok {
			return
		}
		for code := int(c); code <= int(cLast); code++ {
			f.Metrics.WidthsByCode[code] = w
		}
		i++
	}
}
