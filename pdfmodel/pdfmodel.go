// Package pdfmodel projects the raw object graph a document.Document
// resolves into the typed entities spec.md §4.4 describes: a Catalog,
// a flattened page sequence with inherited attributes resolved, parsed
// /Info metadata, a page-label function, and typed Font views.
//
// Grounded on the teacher's model package: model/model.go (the
// Document/Catalog aggregate), model/pages.go and model/trees.go (the
// page-tree walk and inherited-attribute propagation), model/fonts.go
// (font subtype dispatch), model/namestree.go (tree-walk-and-accumulate
// shape, reused here for the /PageLabels number tree). Unlike the
// teacher, this package does not eagerly decode the whole graph into
// owned Go structs: it keeps thin typed views that resolve through the
// underlying document.Document on demand, matching this engine's
// lazy-by-default posture (spec.md §4.2).
package pdfmodel

import (
	"github.com/corvuspdf/engine/document"
	"github.com/corvuspdf/engine/object"
)

// PDFDocument is the typed entry point over an opened document.Document.
type PDFDocument struct {
	Doc *document.Document
}

// New wraps an opened Document for typed access.
func New(doc *document.Document) *PDFDocument {
	return &PDFDocument{Doc: doc}
}

// Catalog returns the trailer's /Root dictionary (spec.md §4.4
// "Catalog resolution").
func (p *PDFDocument) Catalog() (object.Dictionary, error) {
	return p.Doc.Root()
}

// catalogField resolves one indirect-or-direct field of the catalog by
// name, returning (nil, false, nil) if absent.
func (p *PDFDocument) catalogField(name object.Name) (object.Object, bool, error) {
	cat, err := p.Catalog()
	if err != nil {
		return nil, false, err
	}
	raw, ok := cat.Get(name)
	if !ok {
		return nil, false, nil
	}
	resolved, err := p.Doc.Resolve(raw)
	if err != nil {
		return nil, false, err
	}
	return resolved, true, nil
}

// Names returns the catalog's /Names dictionary, if present.
func (p *PDFDocument) Names() (object.Dictionary, bool, error) {
	obj, ok, err := p.catalogField("Names")
	if err != nil || !ok {
		return object.Dictionary{}, ok, err
	}
	dict, ok := object.AsDictionary(obj)
	return dict, ok, nil
}

// Outlines returns the catalog's /Outlines dictionary, if present.
func (p *PDFDocument) Outlines() (object.Dictionary, bool, error) {
	obj, ok, err := p.catalogField("Outlines")
	if err != nil || !ok {
		return object.Dictionary{}, ok, err
	}
	dict, ok := object.AsDictionary(obj)
	return dict, ok, nil
}

// AcroForm returns the catalog's /AcroForm dictionary, if present.
func (p *PDFDocument) AcroForm() (object.Dictionary, bool, error) {
	obj, ok, err := p.catalogField("AcroForm")
	if err != nil || !ok {
		return object.Dictionary{}, ok, err
	}
	dict, ok := object.AsDictionary(obj)
	return dict, ok, nil
}

// Metadata returns the decoded bytes of the catalog's /Metadata XMP
// stream, if present.
func (p *PDFDocument) Metadata() ([]byte, bool, error) {
	obj, ok, err := p.catalogField("Metadata")
	if err != nil || !ok {
		return nil, ok, err
	}
	stream, ok := object.AsStream(obj)
	if !ok {
		return nil, false, nil
	}
	data, err := p.Doc.DecodedStreamBytes(stream)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Encrypted reports whether the trailer carries an /Encrypt entry
// (spec.md §4.4 and §6: detection only, no decryption).
func (p *PDFDocument) Encrypted() bool {
	return p.Doc.Trailer().Encrypt != nil
}
