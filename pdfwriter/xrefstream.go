package pdfwriter

import (
	"bytes"
	"fmt"

	"github.com/corvuspdf/engine/filters"
	"github.com/corvuspdf/engine/object"
)

// writeXRefStream emits a compact cross-reference stream (PDF 1.7
// §7.5.8) instead of a classical table, mirroring the field widths and
// /W/Index layout xref/xrefstream.go decodes on read: type (1 byte),
// offset-or-stream-number (4 bytes), generation-or-stream-index (2
// bytes), Flate-compressed with no predictor.
func writeXRefStream(w *countingWriter, numbers []uint32, offsets map[uint32]int64, maxNum uint32, root object.Reference, info *object.Reference, id object.Array) error {
	var raw bytes.Buffer
	raw.WriteByte(0) // entry 0: the free-list head
	raw.Write(beBytes(0, 4))
	raw.Write(beBytes(65535, 2))
	for n := uint32(1); n <= maxNum; n++ {
		off, ok := offsets[n]
		if !ok {
			raw.WriteByte(0)
			raw.Write(beBytes(0, 4))
			raw.Write(beBytes(0, 2))
			continue
		}
		raw.WriteByte(1)
		raw.Write(beBytes(uint64(off), 4))
		raw.Write(beBytes(0, 2))
	}

	encoded, err := filters.Encode("FlateDecode", raw.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("pdfwriter: xref stream: %w", err)
	}

	xrefOffset := w.written
	xrefNum := maxNum + 1

	dict := object.NewDictionary()
	dict.Set("Type", object.Name("XRef"))
	dict.Set("Size", object.Integer(xrefNum+1))
	dict.Set("W", object.Array{object.Integer(1), object.Integer(4), object.Integer(2)})
	// entries cover objects 0..maxNum; the stream itself has none
	dict.Set("Index", object.Array{object.Integer(0), object.Integer(xrefNum)})
	dict.Set("Root", root)
	if info != nil {
		dict.Set("Info", *info)
	}
	if id != nil {
		dict.Set("ID", id)
	}
	dict.Set("Filter", object.Name("FlateDecode"))
	dict.Set("Length", object.Integer(len(encoded)))

	fmt.Fprintf(w, "%d 0 obj\n", xrefNum)
	var buf bytes.Buffer
	object.Write(&buf, dict)
	w.Write(buf.Bytes())
	w.Write([]byte("\nstream\n"))
	w.Write(encoded)
	w.Write([]byte("\nendstream\nendobj\n"))

	fmt.Fprintf(w, "startxref\n%d\n%%%%EOF", xrefOffset)
	return w.err
}

func beBytes(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
