package pdfwriter

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/corvuspdf/engine/content"
	"github.com/corvuspdf/engine/document"
	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/pdfmodel"
)

// buildOnePagePDF assembles a minimal one-page document, grounded on
// pdfmodel's own buildTwoPagePDF fixture pattern.
func buildOnePagePDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.6\n")
	offsets := make([]int64, 6)

	writeObj := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 200 300] >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>")
	writeObj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	pageContent := "BT /F1 12 Tf 10 20 Td (Hi) Tj ET"
	offsets[4] = int64(buf.Len())
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(pageContent), pageContent)

	xrefOffset := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")
	return buf.Bytes()
}

func openDoc(t *testing.T, data []byte) *document.Document {
	t.Helper()
	doc, err := document.Open(data, document.DefaultParseOptions(), document.DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return doc
}

func TestRoundTripPreservesPageCountAndText(t *testing.T) {
	src := buildOnePagePDF(t)
	doc := openDoc(t, src)

	w, root, info, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	var out bytes.Buffer
	if err := w.WriteTo(&out, DefaultOptions(), root, info, nil); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	reopened := openDoc(t, out.Bytes())
	pd := pdfmodel.New(reopened)
	pages, _, err := pd.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}

	text, _, err := content.ExtractText(pd, pages[0], content.DefaultExtractOptions())
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Hi" {
		t.Errorf("got text %q, want %q", text, "Hi")
	}
}

func TestRoundTripWithXRefStream(t *testing.T) {
	src := buildOnePagePDF(t)
	doc := openDoc(t, src)

	w, root, info, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	opts := DefaultOptions()
	opts.UseXRefStreams = true
	var out bytes.Buffer
	if err := w.WriteTo(&out, opts, root, info, nil); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	reopened := openDoc(t, out.Bytes())
	pd := pdfmodel.New(reopened)
	pages, _, err := pd.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
}

func TestDocumentBuilderProducesOpenableFile(t *testing.T) {
	db := NewDocumentBuilder([4]float64{0, 0, 200, 300})

	fontDict := object.NewDictionary()
	fontDict.Set("Type", object.Name("Font"))
	fontDict.Set("Subtype", object.Name("Type1"))
	fontDict.Set("BaseFont", object.Name("Helvetica"))
	fontRef := db.AddFont(fontDict)

	resources := object.NewDictionary()
	fontsDict := object.NewDictionary()
	fontsDict.Set("F1", fontRef)
	resources.Set("Font", fontsDict)

	b := content.NewBuilder()
	b.BeginText().SetFont("F1", 12).TextMoveTo(10, 20).ShowText("Hello").EndText()
	db.AddPage(b, resources, [4]float64{})

	w, root := db.Finish()
	var out bytes.Buffer
	if err := w.WriteTo(&out, DefaultOptions(), root, nil, nil); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	reopened := openDoc(t, out.Bytes())
	pd := pdfmodel.New(reopened)
	pages, _, err := pd.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	text, _, err := content.ExtractText(pd, pages[0], content.DefaultExtractOptions())
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Hello" {
		t.Errorf("got text %q, want %q", text, "Hello")
	}
}
