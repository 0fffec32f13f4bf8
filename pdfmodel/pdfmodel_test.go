package pdfmodel

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/corvuspdf/engine/document"
	"github.com/corvuspdf/engine/object"
)

// buildTwoPagePDF assembles a minimal two-page document with inherited
// resources on the /Pages root and a /PageLabels number tree, so the
// page-tree walk, resource inheritance, and label engine can all be
// exercised against one fixture.
func buildTwoPagePDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.6\n")
	offsets := make([]int64, 8)

	writeObj := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R /PageLabels << /Nums [0 << /S /D /St 5 >> 1 << /S /r /P (app-) >>] >> >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 /Resources << /Font << /F1 4 0 R >> >> /MediaBox [0 0 200 300] >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /Contents 6 0 R >>")
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /FirstChar 65 /Widths [600 600] /Encoding << /BaseEncoding /WinAnsiEncoding /Differences [65 /A.alt] >> >>")
	writeObj(5, "<< /Type /Page /Parent 2 0 R /Contents 7 0 R /Rotate 90 /Resources << /Font << /F2 4 0 R >> >> >>")

	writeStreamObj := func(num int, content string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", num, len(content), content)
	}
	writeStreamObj(6, "BT ET\nq Q")
	writeStreamObj(7, "BT ET")

	xrefOffset := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 8\n0000000000 65535 f \n")
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 8 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

func openTestDoc(t *testing.T) *PDFDocument {
	t.Helper()
	data := buildTwoPagePDF(t)
	doc, err := document.Open(data, document.DefaultParseOptions(), document.DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return New(doc)
}

func TestPagesInheritResourcesAndMediaBox(t *testing.T) {
	p := openTestDoc(t)
	pages, warnings, err := p.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}

	if pages[0].MediaBox != [4]float64{0, 0, 200, 300} {
		t.Errorf("page 0 should inherit MediaBox, got %v", pages[0].MediaBox)
	}
	if pages[0].Rotation != 0 {
		t.Errorf("page 0 rotation = %d, want 0", pages[0].Rotation)
	}
	if pages[1].Rotation != 90 {
		t.Errorf("page 1 rotation = %d, want 90", pages[1].Rotation)
	}
	// Page 1 defines its own /Resources, so it must not pick up the
	// inherited dictionary (spec.md §4.4 "page's dictionary takes
	// precedence per key").
	if pages[1].Resources.Len() == 0 {
		t.Error("page 1 should have its own resources")
	}
}

func TestPageContentConcatenation(t *testing.T) {
	p := openTestDoc(t)
	pages, _, err := p.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	content, err := p.Content(pages[0])
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if string(content) != "BT ET\nq Q" {
		t.Errorf("content = %q", content)
	}
}

// buildSkewRotatePDF is a minimal one-page document whose /Rotate is not
// a multiple of 90, to exercise normalizeRotation's lenient-coercion
// warning path (spec.md §3 names rotation a closed 0|90|180|270 set;
// DESIGN.md's Open Question resolutions document the floor-and-warn
// choice for anything else).
func buildSkewRotatePDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.6\n")
	offsets := make([]int64, 4)

	writeObj := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 200 300] >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /Rotate 45 >>")

	xrefOffset := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 4\n0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

func TestPageRotationCoercesOutOfRangeValue(t *testing.T) {
	data := buildSkewRotatePDF(t)
	doc, err := document.Open(data, document.DefaultParseOptions(), document.DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p := New(doc)

	pages, warnings, err := p.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Rotation != 0 {
		t.Errorf("rotation = %d, want 0 (45 floors to 0)", pages[0].Rotation)
	}

	found := false
	for _, w := range warnings {
		if w == "object 3: /Rotate 45 is not a multiple of 90, coerced to 0" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a /Rotate coercion warning, got %v", warnings)
	}
}

func TestPageLabels(t *testing.T) {
	p := openTestDoc(t)
	labels, err := p.ParsePageLabels()
	if err != nil {
		t.Fatalf("ParsePageLabels: %v", err)
	}
	if got := labels.Label(0); got != "5" {
		t.Errorf("label(0) = %q, want %q", got, "5")
	}
	if got := labels.Label(1); got != "app-i" {
		t.Errorf("label(1) = %q, want %q", got, "app-i")
	}
}

func TestRomanAndAlphaNumerals(t *testing.T) {
	cases := []struct {
		style byte
		value int
		want  string
	}{
		{'R', 1, "I"}, {'R', 4, "IV"}, {'R', 1994, "MCMXCIV"},
		{'r', 9, "ix"},
		{'A', 1, "A"}, {'A', 26, "Z"}, {'A', 27, "AA"},
		{'a', 28, "bb"},
	}
	for _, c := range cases {
		if got := numeral(c.style, c.value); got != c.want {
			t.Errorf("numeral(%q, %d) = %q, want %q", c.style, c.value, got, c.want)
		}
	}
}

func TestResolveFontEncodingAndWidths(t *testing.T) {
	p := openTestDoc(t)
	pages, _, err := p.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	fontsObj, ok := pages[0].Resources.Get("Font")
	if !ok {
		t.Fatal("missing /Font in resources")
	}
	resolvedFonts, err := p.Doc.Resolve(fontsObj)
	if err != nil {
		t.Fatalf("Resolve fonts: %v", err)
	}
	fontsDict, ok := object.AsDictionary(resolvedFonts)
	if !ok {
		t.Fatal("/Font did not resolve to a dictionary")
	}
	f1Obj, ok := fontsDict.Get("F1")
	if !ok {
		t.Fatal("missing /F1 font")
	}
	resolvedF1, err := p.Doc.Resolve(f1Obj)
	if err != nil {
		t.Fatalf("Resolve F1: %v", err)
	}
	f1Dict, ok := object.AsDictionary(resolvedF1)
	if !ok {
		t.Fatal("/F1 did not resolve to a dictionary")
	}

	font, err := p.ResolveFont(f1Dict)
	if err != nil {
		t.Fatalf("ResolveFont: %v", err)
	}
	if font.BaseEncoding != EncodingWinAnsi {
		t.Errorf("BaseEncoding = %q, want %q", font.BaseEncoding, EncodingWinAnsi)
	}
	if font.Differences[65] != "A.alt" {
		t.Errorf("Differences[65] = %q, want %q", font.Differences[65], "A.alt")
	}
	if font.Metrics.WidthsByCode[65] != 600 {
		t.Errorf("WidthsByCode[65] = %v, want 600", font.Metrics.WidthsByCode[65])
	}
}

func TestParsePDFDate(t *testing.T) {
	got, ok := ParsePDFDate("D:20230615143000+02'00'")
	if !ok {
		t.Fatal("expected successful parse")
	}
	if got.Year() != 2023 || got.Month() != 6 || got.Day() != 15 {
		t.Errorf("parsed date = %v", got)
	}
	if _, h := got.Zone(); h != 7200 {
		t.Errorf("zone offset = %ds, want 7200", h)
	}
}
