package xref

import (
	"fmt"

	"github.com/corvuspdf/engine/filters"
	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/objparser"
)

// parseXRefStreamAt parses a cross-reference stream object (PDF 1.7
// §7.5.8) located at offset: "N G obj << ... >> stream ... endstream
// endobj". Its /Filter, /DecodeParms, /Length, /Index, /W and /Prev
// entries must all be direct objects (§7.5.8.2), so no resolver is
// needed. Returns the /Prev offset (0 if none).
//
// Grounded on the teacher's xreftable.go (parseXRefStream,
// extractXRefTableEntriesFromXRefStream).
func parseXRefStreamAt(data []byte, offset int64, table *Table, trailer *Trailer) (int64, error) {
	_, _, p, err := objparser.ParseIndirectHeader(data[offset:])
	if err != nil {
		return 0, fmt.Errorf("xref stream header: %w", err)
	}

	obj, err := p.ParseObject()
	if err != nil {
		return 0, fmt.Errorf("xref stream object: %w", err)
	}
	stream, ok := obj.(object.Stream)
	if !ok {
		return 0, fmt.Errorf("xref stream: expected a stream object, got %T", obj)
	}
	dict := stream.Dict

	bodyStart, ok := objparser.StreamBodyOffset(stream)
	if !ok {
		return 0, fmt.Errorf("xref stream: missing stream body")
	}
	bodyStart += offset

	length, ok := directInt(dict, "Length")
	if !ok {
		return 0, fmt.Errorf("xref stream: /Length must be a direct integer")
	}
	bodyEnd := bodyStart + int64(length)
	if bodyEnd < bodyStart || int(bodyEnd) > len(data) {
		return 0, fmt.Errorf("xref stream: /Length %d runs past end of file", length)
	}
	raw := data[bodyStart:bodyEnd]

	chain, err := filters.FromDictDirect(dict)
	if err != nil {
		return 0, fmt.Errorf("xref stream: %w", err)
	}
	decoded, _, err := filters.Decode(chain, raw)
	if err != nil {
		return 0, fmt.Errorf("xref stream: %w", err)
	}

	w, err := wArray(dict)
	if err != nil {
		return 0, err
	}
	index, err := indexPairs(dict, w)
	if err != nil {
		return 0, err
	}

	if err := decodeXRefStreamEntries(decoded, w, index, table); err != nil {
		return 0, err
	}

	trailer.merge(dict)
	return prevOffset(dict), nil
}

func directInt(d object.Dictionary, key object.Name) (int64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := object.AsNumber(v)
	return int64(n), ok
}

func wArray(d object.Dictionary) ([3]int, error) {
	var w [3]int
	v, ok := d.Get("W")
	if !ok {
		return w, fmt.Errorf("xref stream: missing /W")
	}
	arr, ok := object.AsArray(v)
	if !ok || len(arr) < 3 {
		return w, fmt.Errorf("xref stream: /W must be an array of 3 integers")
	}
	for i := 0; i < 3; i++ {
		n, ok := object.AsNumber(arr[i])
		if !ok || n < 0 {
			return w, fmt.Errorf("xref stream: /W entries must be non-negative integers")
		}
		w[i] = int(n)
	}
	return w, nil
}

// indexPairs reads /Index ([firstObj, count, firstObj, count, ...]),
// defaulting to a single subsection [0, Size] per §7.5.8.2 Table 17.
func indexPairs(d object.Dictionary, w [3]int) ([][2]int, error) {
	v, ok := d.Get("Index")
	if !ok {
		size, ok := directInt(d, "Size")
		if !ok {
			return nil, fmt.Errorf("xref stream: missing /Size")
		}
		return [][2]int{{0, int(size)}}, nil
	}
	arr, ok := object.AsArray(v)
	if !ok || len(arr)%2 != 0 {
		return nil, fmt.Errorf("xref stream: corrupt /Index entry")
	}
	out := make([][2]int, 0, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		first, ok1 := object.AsNumber(arr[i])
		count, ok2 := object.AsNumber(arr[i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("xref stream: corrupt /Index entry")
		}
		out = append(out, [2]int{int(first), int(count)})
	}
	return out, nil
}

func decodeXRefStreamEntries(decoded []byte, w [3]int, index [][2]int, table *Table) error {
	entrySize := w[0] + w[1] + w[2]
	if entrySize == 0 {
		return fmt.Errorf("xref stream: /W entries are all zero")
	}

	total := 0
	for _, sub := range index {
		total += sub[1]
	}
	need := total * entrySize
	if len(decoded) < need {
		return fmt.Errorf("xref stream: decoded length %d shorter than %d entries of size %d", len(decoded), total, entrySize)
	}

	pos := 0
	for _, sub := range index {
		firstObj, count := sub[0], sub[1]
		for i := 0; i < count; i++ {
			row := decoded[pos : pos+entrySize]
			pos += entrySize

			typ := 1 // default when W[0] == 0, per §7.5.8.2 Table 17
			if w[0] > 0 {
				typ = int(fieldToInt(row[:w[0]]))
				row = row[w[0]:]
			}
			f2 := fieldToInt(row[:w[1]])
			row = row[w[1]:]
			f3 := fieldToInt(row[:w[2]])

			objNum := uint32(firstObj + i)
			switch typ {
			case 0:
				table.setIfAbsent(objNum, Entry{Kind: KindFree, Offset: int64(f2), Generation: uint16(f3)})
			case 1:
				table.setIfAbsent(objNum, Entry{Kind: KindInUse, Offset: int64(f2), Generation: uint16(f3)})
			case 2:
				table.setIfAbsent(objNum, Entry{Kind: KindCompressed, StreamNumber: uint32(f2), StreamIndex: int(f3)})
			}
		}
	}
	return nil
}

func fieldToInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}
