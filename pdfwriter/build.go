package pdfwriter

import (
	"github.com/corvuspdf/engine/content"
	"github.com/corvuspdf/engine/filters"
	"github.com/corvuspdf/engine/object"
)

// DocumentBuilder assembles a brand-new PDF (catalog, page tree, pages,
// content streams, image XObjects) directly into a Writer's object
// graph, for the authoring half of spec.md §4.6 that isn't a
// rewrite-from-an-opened-file. Grounded on the teacher's
// model.Document/model.PageObject tree, but flattened: this engine
// builds the catalog/pages/page dictionaries directly as
// object.Dictionary values instead of through typed Go structs with
// their own Write methods, since the typed PDF object model already
// lives in package pdfmodel for the read side and duplicating it here
// for authoring would just be two competing representations of the
// same tree.
type DocumentBuilder struct {
	w         *Writer
	pagesRef  object.Reference
	pageRefs  []object.Reference
	mediaBox  [4]float64
}

// NewDocumentBuilder starts a new document with the given default
// MediaBox (applied to pages that don't override it).
func NewDocumentBuilder(mediaBox [4]float64) *DocumentBuilder {
	w := NewWriter()
	return &DocumentBuilder{w: w, pagesRef: w.Alloc(), mediaBox: mediaBox}
}

// AddPage appends a page whose content is built's accumulated
// operations, resources is the page's /Resources dictionary (fonts,
// XObjects already added via AddImage/AddFont), and mediaBox overrides
// the document default when non-zero.
func (b *DocumentBuilder) AddPage(built *content.Builder, resources object.Dictionary, mediaBox [4]float64) object.Reference {
	if mediaBox == ([4]float64{}) {
		mediaBox = b.mediaBox
	}
	contentBytes := built.Bytes()
	encoded, err := filters.Encode("FlateDecode", contentBytes, nil)
	contentDict := object.NewDictionary()
	if err == nil {
		contentDict.Set("Filter", object.Name("FlateDecode"))
		contentBytes = encoded
	}
	contentRef := b.w.Add(object.Stream{
		Dict:   contentDict,
		Source: object.StreamSource{Kind: object.SourceMemory, Bytes: contentBytes},
	})

	pageDict := object.NewDictionary()
	pageDict.Set("Type", object.Name("Page"))
	pageDict.Set("Parent", b.pagesRef)
	pageDict.Set("MediaBox", boxArray(mediaBox))
	pageDict.Set("Resources", resources)
	pageDict.Set("Contents", contentRef)

	ref := b.w.Add(pageDict)
	b.pageRefs = append(b.pageRefs, ref)
	return ref
}

// AddImage embeds img as an indirect stream object, returning its
// reference for use as a /XObject resource entry.
func (b *DocumentBuilder) AddImage(img *content.ImageXObject) object.Reference {
	return b.w.Add(img.Stream())
}

// AddFont embeds a font dictionary (as resolved/produced elsewhere) as
// an indirect object, returning its reference.
func (b *DocumentBuilder) AddFont(fontDict object.Dictionary) object.Reference {
	return b.w.Add(fontDict)
}

// Finish assembles the /Pages and /Catalog objects and returns the
// Writer plus its root reference, ready for WriteTo.
func (b *DocumentBuilder) Finish() (*Writer, object.Reference) {
	kids := make(object.Array, len(b.pageRefs))
	for i, r := range b.pageRefs {
		kids[i] = r
	}
	pagesDict := object.NewDictionary()
	pagesDict.Set("Type", object.Name("Pages"))
	pagesDict.Set("Kids", kids)
	pagesDict.Set("Count", object.Integer(len(b.pageRefs)))
	pagesDict.Set("MediaBox", boxArray(b.mediaBox))
	b.w.Set(b.pagesRef, pagesDict)

	catalogDict := object.NewDictionary()
	catalogDict.Set("Type", object.Name("Catalog"))
	catalogDict.Set("Pages", b.pagesRef)
	root := b.w.Add(catalogDict)

	return b.w, root
}

func boxArray(box [4]float64) object.Array {
	out := make(object.Array, 4)
	for i, v := range box {
		out[i] = object.Real(v)
	}
	return out
}
