package pdfmodel

import (
	"fmt"

	"github.com/corvuspdf/engine/document"
	"github.com/corvuspdf/engine/object"
)

// inherited attribute names that propagate from a /Pages node to its
// children when the child does not define its own (spec.md §4.4
// "Page tree walk").
const (
	attrResources = object.Name("Resources")
	attrMediaBox  = object.Name("MediaBox")
	attrCropBox   = object.Name("CropBox")
	attrRotate    = object.Name("Rotate")
)

// Page is a leaf of the page tree with inherited attributes already
// resolved (spec.md §3 "ParsedPage").
type Page struct {
	Ref       object.Reference
	Dict      object.Dictionary
	Resources object.Dictionary
	MediaBox  [4]float64
	CropBox   [4]float64
	Rotation  int // normalized to one of 0, 90, 180, 270
}

// inheritedState carries the attribute values accumulated so far while
// descending the page tree, one per branch (spec.md §4.4: "maintain an
// inherited state; when child lacks an attribute, adopt the nearest
// ancestor's value").
type inheritedState struct {
	resources object.Object
	mediaBox  object.Object
	cropBox   object.Object
	rotate    object.Object
}

func (s inheritedState) withNode(dict object.Dictionary) inheritedState {
	next := s
	if v, ok := dict.Get(attrResources); ok {
		next.resources = v
	}
	if v, ok := dict.Get(attrMediaBox); ok {
		next.mediaBox = v
	}
	if v, ok := dict.Get(attrCropBox); ok {
		next.cropBox = v
	}
	if v, ok := dict.Get(attrRotate); ok {
		next.rotate = v
	}
	return next
}

// Pages walks the document's /Pages tree, resolving inherited
// attributes and flattening /Type /Page leaves into document order
// (spec.md §4.4 "Produce a flat ordered sequence of ParsedPage").
// warnings report structural issues tolerated in lenient mode, such as
// a /Count mismatch or a cycle in /Kids.
func (p *PDFDocument) Pages() ([]*Page, []string, error) {
	cat, err := p.Catalog()
	if err != nil {
		return nil, nil, err
	}
	rootObj, ok := cat.Get("Pages")
	if !ok {
		return nil, nil, fmt.Errorf("pdfmodel: catalog missing /Pages")
	}
	rootRef, _ := object.AsReference(rootObj)

	var warnings []string
	var pages []*Page
	visited := make(map[object.Reference]bool)

	var walk func(ref object.Reference, st inheritedState) error
	walk = func(ref object.Reference, st inheritedState) error {
		if visited[ref] {
			warnings = append(warnings, fmt.Sprintf("cycle detected at object %d, skipped", ref.Number))
			return nil
		}
		visited[ref] = true

		obj, err := p.Doc.GetObject(ref.Number, ref.Generation)
		if err != nil {
			return err
		}
		dict, ok := object.AsDictionary(obj)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("object %d: page node is not a dictionary", ref.Number))
			return nil
		}
		st = st.withNode(dict)

		typ, _ := dict.Get("Type")
		name, _ := object.AsName(typ)

		kidsObj, hasKids := dict.Get("Kids")
		if name == "Pages" || hasKids {
			kidsResolved, err := p.Doc.Resolve(kidsObj)
			if err != nil {
				return err
			}
			kids, _ := object.AsArray(kidsResolved)
			for _, k := range kids {
				kidRef, ok := object.AsReference(k)
				if !ok {
					continue
				}
				if err := walk(kidRef, st); err != nil {
					return err
				}
			}
			return nil
		}

		page, warning, err := buildPage(p.Doc, ref, dict, st)
		if err != nil {
			return err
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		pages = append(pages, page)
		return nil
	}

	if err := walk(rootRef, inheritedState{}); err != nil {
		return nil, warnings, err
	}

	if rootResolved, err := p.Doc.Resolve(rootObj); err == nil {
		if rootDict, ok := object.AsDictionary(rootResolved); ok {
			if c, ok := rootDict.Get("Count"); ok {
				if resolvedCount, err := p.Doc.Resolve(c); err == nil {
					if n, ok := object.AsNumber(resolvedCount); ok && int(n) != len(pages) {
						warnings = append(warnings, fmt.Sprintf("/Count declares %d pages, found %d", int(n), len(pages)))
					}
				}
			}
		}
	}

	return pages, warnings, nil
}

func buildPage(doc *document.Document, ref object.Reference, dict object.Dictionary, st inheritedState) (*Page, string, error) {
	page := &Page{Ref: ref, Dict: dict}

	resourcesObj := st.resources
	if v, ok := dict.Get(attrResources); ok {
		resourcesObj = v
	}
	if resourcesObj != nil {
		resolved, err := doc.Resolve(resourcesObj)
		if err != nil {
			return nil, "", err
		}
		if rd, ok := object.AsDictionary(resolved); ok {
			page.Resources = rd
		}
	}

	mediaBoxObj := st.mediaBox
	if v, ok := dict.Get(attrMediaBox); ok {
		mediaBoxObj = v
	}
	if box, err := rectangleOf(doc, mediaBoxObj); err == nil {
		page.MediaBox = box
	} else {
		page.MediaBox = [4]float64{0, 0, 612, 792} // US Letter, PDF 1.7 §7.7.3.3 default-of-last-resort
	}

	cropBoxObj := st.cropBox
	if v, ok := dict.Get(attrCropBox); ok {
		cropBoxObj = v
	}
	if box, err := rectangleOf(doc, cropBoxObj); err == nil {
		page.CropBox = box
	} else {
		page.CropBox = page.MediaBox
	}

	rotateObj := st.rotate
	if v, ok := dict.Get(attrRotate); ok {
		rotateObj = v
	}
	rotation, warning := normalizeRotation(doc, rotateObj)
	page.Rotation = rotation
	if warning != "" {
		warning = fmt.Sprintf("object %d: %s", ref.Number, warning)
	}

	return page, warning, nil
}

func rectangleOf(doc *document.Document, o object.Object) ([4]float64, error) {
	if o == nil {
		return [4]float64{}, fmt.Errorf("no rectangle")
	}
	resolved, err := doc.Resolve(o)
	if err != nil {
		return [4]float64{}, err
	}
	arr, ok := object.AsArray(resolved)
	if !ok || len(arr) != 4 {
		return [4]float64{}, fmt.Errorf("not a 4-element array")
	}
	var out [4]float64
	for i, v := range arr {
		resolvedV, err := doc.Resolve(v)
		if err != nil {
			return [4]float64{}, err
		}
		n, ok := object.AsNumber(resolvedV)
		if !ok {
			return [4]float64{}, fmt.Errorf("non-numeric rectangle element")
		}
		out[i] = n
	}
	return out, nil
}

// normalizeRotation resolves /Rotate to one of 0, 90, 180, 270 (spec.md
// §3 "rotation: 0|90|180|270 (normalized; out-of-range is error)").
// Per DESIGN.md's Open Question resolutions, a value outside that closed
// set (not a multiple of 90, or unreadable) is not an error under any
// parse options: it is floored to the nearest multiple of 90 (0 when
// unreadable) and reported back as a warning string (empty when /Rotate
// is absent or already one of the four canonical values), so callers
// threading Pages()'s warnings slice can surface the deviation instead of
// it passing silently.
func normalizeRotation(doc *document.Document, o object.Object) (int, string) {
	if o == nil {
		return 0, ""
	}
	resolved, err := doc.Resolve(o)
	if err != nil {
		return 0, fmt.Sprintf("/Rotate could not be resolved (%v), defaulting to 0", err)
	}
	n, ok := object.AsNumber(resolved)
	if !ok {
		return 0, "/Rotate is not numeric, defaulting to 0"
	}
	raw := int(n)
	deg := raw % 360
	if deg < 0 {
		deg += 360
	}
	if deg%90 == 0 {
		return deg, ""
	}
	normalized := (deg / 90) * 90
	return normalized, fmt.Sprintf("/Rotate %d is not a multiple of 90, coerced to %d", raw, normalized)
}

// Content concatenates a page's /Contents stream(s), decoding each and
// joining them with a single newline (spec.md §4.4 "Concatenate
// decoded bodies with a single newline separator, required to prevent
// operator fusion across boundaries").
func (p *PDFDocument) Content(page *Page) ([]byte, error) {
	raw, ok := page.Dict.Get("Contents")
	if !ok {
		return nil, nil
	}
	resolved, err := p.Doc.Resolve(raw)
	if err != nil {
		return nil, err
	}

	var streams []object.Stream
	if s, ok := object.AsStream(resolved); ok {
		streams = append(streams, s)
	} else if arr, ok := object.AsArray(resolved); ok {
		for _, item := range arr {
			r, err := p.Doc.Resolve(item)
			if err != nil {
				return nil, err
			}
			if s, ok := object.AsStream(r); ok {
				streams = append(streams, s)
			}
		}
	}

	var out []byte
	for i, s := range streams {
		if i > 0 {
			out = append(out, '\n')
		}
		decoded, err := p.Doc.DecodedStreamBytes(s)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded...)
	}
	return out, nil
}
