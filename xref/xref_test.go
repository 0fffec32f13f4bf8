package xref

import (
	"bytes"
	"fmt"
	"testing"
)

// buildClassicPDF assembles a minimal, well-formed PDF using a classical
// xref table: a Catalog, a Pages tree with one Page, and a trailer. Offsets
// are computed as the buffer is built so the xref table is always correct.
func buildClassicPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int64, 4) // index 1..3 used, 0 is the free head

	write := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	write(1, "<< /Type /Catalog /Pages 2 0 R >>")
	write(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	write(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")

	xrefOffset := int64(buf.Len())
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", 4)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n")
	buf.WriteString("<< /Size 4 /Root 1 0 R >>\n")
	buf.WriteString("startxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

func TestBuildClassicXRef(t *testing.T) {
	data := buildClassicPDF()
	table, trailer, warnings, err := Build(data, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if !trailer.HasRoot || trailer.Root.Number != 1 {
		t.Errorf("trailer.Root = %+v, want object 1", trailer.Root)
	}
	if trailer.Size != 4 {
		t.Errorf("trailer.Size = %d, want 4", trailer.Size)
	}

	for num := uint32(1); num <= 3; num++ {
		e, ok := table.Lookup(num)
		if !ok {
			t.Fatalf("object %d missing from table", num)
		}
		if e.Kind != KindInUse {
			t.Errorf("object %d: Kind = %v, want KindInUse", num, e.Kind)
		}
	}
	free0, ok := table.Lookup(0)
	if !ok || free0.Kind != KindFree {
		t.Errorf("object 0 should be a free entry, got %+v (ok=%v)", free0, ok)
	}
}

func TestIncrementalUpdatePrevChain(t *testing.T) {
	base := buildClassicPDF()

	// Simulate an incremental update that replaces object 3 and appends a
	// new xref section with /Prev pointing back to the original one.
	prevXRefOffset := bytes.Index(base, []byte("\nxref\n")) + 1

	var buf bytes.Buffer
	buf.Write(base)
	newObjOffset := int64(buf.Len())
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] >>\nendobj\n")

	xrefOffset := int64(buf.Len())
	buf.WriteString("xref\n")
	buf.WriteString("3 1\n")
	fmt.Fprintf(&buf, "%010d 00000 n \n", newObjOffset)
	buf.WriteString("trailer\n")
	fmt.Fprintf(&buf, "<< /Size 4 /Root 1 0 R /Prev %d >>\n", prevXRefOffset)
	buf.WriteString("startxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")

	table, trailer, _, err := Build(buf.Bytes(), true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !trailer.HasRoot {
		t.Fatal("expected /Root to be resolved through /Prev chain")
	}

	e3, ok := table.Lookup(3)
	if !ok {
		t.Fatal("object 3 missing")
	}
	if e3.Offset != newObjOffset {
		t.Errorf("object 3: expected the newer offset %d (from the latest section) to win, got %d", newObjOffset, e3.Offset)
	}

	if _, ok := table.Lookup(1); !ok {
		t.Error("object 1, only defined in the older section, should still be reachable via /Prev")
	}
}

func TestRecoveryScanOnBrokenXRef(t *testing.T) {
	data := buildClassicPDF()
	// Corrupt the startxref offset so the chain can't be followed.
	idx := bytes.Index(data, []byte("startxref\n"))
	rest := data[idx+len("startxref\n"):]
	eof := bytes.Index(rest, []byte("\n%%EOF"))

	var buf bytes.Buffer
	buf.Write(data[:idx+len("startxref\n")])
	buf.WriteString("999999999")
	buf.Write(rest[eof:])

	table, trailer, warnings, err := Build(buf.Bytes(), true)
	if err != nil {
		t.Fatalf("Build with lenient recovery should not fail: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("expected a recovery warning")
	}
	if !trailer.HasRoot || trailer.Root.Number != 1 {
		t.Errorf("recovery should still locate /Root, got %+v", trailer.Root)
	}
	for num := uint32(1); num <= 3; num++ {
		if _, ok := table.Lookup(num); !ok {
			t.Errorf("recovery scan should have found object %d", num)
		}
	}
}

func TestRecoveryFailsStrictMode(t *testing.T) {
	_, _, _, err := Build([]byte("not a pdf at all"), false)
	if err == nil {
		t.Error("expected an error in non-lenient mode for an unparseable file")
	}
}

func TestParseObjectStreamProlog(t *testing.T) {
	// Two objects: object 10 at offset 0, object 11 at offset 12, with a
	// /First of 12 (the prolog "10 0 11 12" is 10 bytes, padded with two
	// trailing spaces to reach 12 for this test's readability).
	decoded := []byte("10 0 11 12  " + "<< /A 1 >>  " + "<< /B 2 >>")
	prolog, err := ParseObjectStreamProlog(decoded, 12)
	if err != nil {
		t.Fatalf("ParseObjectStreamProlog: %v", err)
	}
	if len(prolog.Numbers) != 2 || prolog.Numbers[0] != 10 || prolog.Numbers[1] != 11 {
		t.Errorf("Numbers = %v, want [10 11]", prolog.Numbers)
	}

	start, end, err := prolog.Extent(decoded, 0)
	if err != nil {
		t.Fatalf("Extent(0): %v", err)
	}
	if got := string(decoded[start:end]); got != "<< /A 1 >>  " {
		t.Errorf("Extent(0) = %q, want %q", got, "<< /A 1 >>  ")
	}

	start, end, err = prolog.Extent(decoded, 1)
	if err != nil {
		t.Fatalf("Extent(1): %v", err)
	}
	if got := string(decoded[start:end]); got != "<< /B 2 >>" {
		t.Errorf("Extent(1) = %q, want %q", got, "<< /B 2 >>")
	}
}

func TestParseObjectStreamPrologNulSeparators(t *testing.T) {
	prolog := "10\x000\x0020\x006" // 9 bytes: "10 0 20 6" with NUL separators
	decoded := []byte(prolog + "abcdefghijklmnopqrstuvwx")
	got, err := ParseObjectStreamProlog(decoded, len(prolog))
	if err != nil {
		t.Fatalf("ParseObjectStreamProlog: %v", err)
	}
	if got.Numbers[0] != 10 || got.Offsets[0] != len(prolog) {
		t.Errorf("first entry = (%d, %d), want (10, %d)", got.Numbers[0], got.Offsets[0], len(prolog))
	}
	if got.Numbers[1] != 20 || got.Offsets[1] != len(prolog)+6 {
		t.Errorf("second entry = (%d, %d), want (20, %d)", got.Numbers[1], got.Offsets[1], len(prolog)+6)
	}
}
