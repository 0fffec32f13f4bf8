package document

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/corvuspdf/engine/object"
)

// buildPDFWithStream assembles a minimal PDF with a Flate-compressed
// content stream attached to a single page, using a classical xref
// table, so Document.Open / GetObject / DecodedStreamBytes can be
// exercised end to end without a real-world file fixture.
func buildPDFWithStream(t *testing.T) (data []byte, contentPlain []byte) {
	t.Helper()
	contentPlain = []byte("BT /F1 12 Tf (Hello) Tj ET")

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(contentPlain); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	offsets := make([]int64, 5)

	writeObj := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /Contents 4 0 R /MediaBox [0 0 612 792] >>")

	offsets[4] = int64(buf.Len())
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d /Filter /FlateDecode >>\nstream\n", compressed.Len())
	buf.Write(compressed.Bytes())
	buf.WriteString("\nendstream\nendobj\n")

	xrefOffset := int64(buf.Len())
	buf.WriteString("xref\n0 5\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")

	return buf.Bytes(), contentPlain
}

func TestOpenAndResolveDirectObjects(t *testing.T) {
	data, _ := buildPDFWithStream(t)
	doc, err := Open(data, DefaultParseOptions(), DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	root, err := doc.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	pagesRef, ok := root.Get("Pages")
	if !ok {
		t.Fatal("catalog missing /Pages")
	}
	pagesObj, err := doc.Resolve(pagesRef)
	if err != nil {
		t.Fatalf("Resolve(/Pages): %v", err)
	}
	pagesDict, ok := object.AsDictionary(pagesObj)
	if !ok {
		t.Fatal("/Pages did not resolve to a dictionary")
	}
	if count, ok := pagesDict.Get("Count"); !ok || count != object.Integer(1) {
		t.Errorf("Pages /Count = %v, want 1", count)
	}
}

func TestDecodedStreamBytes(t *testing.T) {
	data, plain := buildPDFWithStream(t)
	doc, err := Open(data, DefaultParseOptions(), DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	obj, err := doc.GetObject(4, 0)
	if err != nil {
		t.Fatalf("GetObject(4): %v", err)
	}
	stream, ok := object.AsStream(obj)
	if !ok {
		t.Fatalf("object 4 is not a stream: %T", obj)
	}
	if stream.Source.Kind != object.SourceFile {
		t.Fatalf("expected lazy SourceFile, got %v", stream.Source.Kind)
	}

	decoded, err := doc.DecodedStreamBytes(stream)
	if err != nil {
		t.Fatalf("DecodedStreamBytes: %v", err)
	}
	if !bytes.Equal(decoded, plain) {
		t.Errorf("decoded content = %q, want %q", decoded, plain)
	}
}

func TestGetObjectCachesResult(t *testing.T) {
	data, _ := buildPDFWithStream(t)
	doc, err := Open(data, DefaultParseOptions(), DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := doc.GetObject(1, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.GetObject(1, 0); err != nil {
		t.Fatal(err)
	}
	stats := doc.CacheStats()
	if stats.Hits < 1 {
		t.Errorf("expected at least one cache hit, got stats %+v", stats)
	}
}

func TestGetObjectUndefinedReferenceIsNull(t *testing.T) {
	data, _ := buildPDFWithStream(t)
	doc, err := Open(data, DefaultParseOptions(), DefaultMemoryOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	obj, err := doc.GetObject(999, 0)
	if err != nil {
		t.Fatalf("GetObject(999): %v", err)
	}
	if _, ok := obj.(object.Null); !ok {
		t.Errorf("undefined object should resolve to Null, got %T", obj)
	}
}

func TestSharedCacheConcurrentAccess(t *testing.T) {
	c := NewSharedCache(2)
	c.Put(1, object.Integer(1))
	c.Put(2, object.Integer(2))

	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func(n int) {
			c.Put(uint32(n), object.Integer(n))
			c.Get(uint32(n))
			done <- true
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
