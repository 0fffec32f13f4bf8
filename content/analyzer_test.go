package content

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/corvuspdf/engine/document"
	"github.com/corvuspdf/engine/pdfmodel"
)

func buildAnalyzerPage(t *testing.T, mediaBox string, resources string, pageContent string) (*pdfmodel.PDFDocument, *pdfmodel.Page) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.6\n")
	offsets := make([]int64, 7)

	writeObj := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	offsets[2] = int64(buf.Len())
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox %s >>\nendobj\n", mediaBox)
	offsets[3] = int64(buf.Len())
	fmt.Fprintf(&buf, "3 0 obj\n<< /Type /Page /Parent 2 0 R /Contents 4 0 R /Resources %s >>\nendobj\n", resources)
	offsets[4] = int64(buf.Len())
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(pageContent), pageContent)
	writeObj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	writeObj(6, "<< /Type /XObject /Subtype /Image /Width 10 /Height 10 /BitsPerComponent 8 /ColorSpace /DeviceGray /Length 0 >>\nstream\n\nendstream")

	xrefOffset := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 7\n0000000000 65535 f \n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 7 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")

	doc, err := document.Open(buf.Bytes(), document.DefaultParseOptions(), document.DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pd := pdfmodel.New(doc)
	pages, _, err := pd.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	return pd, pages[0]
}

func TestAnalyzePageClassifiesFullPageImageAsScanned(t *testing.T) {
	doc, page := buildAnalyzerPage(t, "[0 0 200 300]", "<< /XObject << /Im1 6 0 R >> >>", "q 200 0 0 300 0 0 cm /Im1 Do Q")

	analysis, err := AnalyzePage(doc, page, DefaultAnalyzerThresholds())
	if err != nil {
		t.Fatalf("AnalyzePage: %v", err)
	}
	if analysis.Kind != KindScanned {
		t.Errorf("got kind %v, want %v (ratios text=%v image=%v)", analysis.Kind, KindScanned, analysis.TextRatio, analysis.ImageRatio)
	}
}

func TestAnalyzePageClassifiesDenseTextAsText(t *testing.T) {
	doc, page := buildAnalyzerPage(t, "[0 0 100 100]", "<< /Font << /F1 5 0 R >> >>", "BT /F1 100 Tf 0 0 Td (AA) Tj ET")

	analysis, err := AnalyzePage(doc, page, DefaultAnalyzerThresholds())
	if err != nil {
		t.Fatalf("AnalyzePage: %v", err)
	}
	if analysis.Kind != KindText {
		t.Errorf("got kind %v, want %v (ratios text=%v image=%v)", analysis.Kind, KindText, analysis.TextRatio, analysis.ImageRatio)
	}
}
