package xref

import (
	"bytes"
	"fmt"
	"strconv"
)

// ObjectStreamProlog is the parsed header of a decoded object stream
// (PDF 1.7 §7.5.7): for each of the N compressed objects it holds the
// object number and the byte offset of its content within the decoded
// stream (the prolog's offset, which is relative to /First, plus /First).
type ObjectStreamProlog struct {
	Numbers []uint32
	Offsets []int
}

// ParseObjectStreamProlog reads the N pairs of "object-number offset"
// integers at the front of a decoded object stream. first is the value
// of the stream dictionary's /First entry: the byte offset, within
// decoded, where the first object's content begins.
//
// Grounded on the teacher's processObjectStream in
// reader/file/object_streams.go, including its tolerance for producers
// that separate prolog fields with NUL bytes instead of whitespace.
func ParseObjectStreamProlog(decoded []byte, first int) (ObjectStreamProlog, error) {
	var out ObjectStreamProlog
	if first < 0 || first > len(decoded) {
		return out, fmt.Errorf("xref: object stream /First %d out of range", first)
	}
	prolog := bytes.ReplaceAll(decoded[:first], []byte{0x00}, []byte{' '})
	fields := bytes.Fields(prolog)
	if len(fields)%2 != 0 {
		return out, fmt.Errorf("xref: object stream prolog has an odd number of fields (%d)", len(fields))
	}

	n := len(fields) / 2
	out.Numbers = make([]uint32, n)
	out.Offsets = make([]int, n)
	for i := 0; i < n; i++ {
		num, err := strconv.Atoi(string(fields[2*i]))
		if err != nil || num < 0 {
			return out, fmt.Errorf("xref: invalid object number in object stream prolog: %q", fields[2*i])
		}
		off, err := strconv.Atoi(string(fields[2*i+1]))
		if err != nil || off < 0 {
			return out, fmt.Errorf("xref: invalid offset in object stream prolog: %q", fields[2*i+1])
		}
		out.Numbers[i] = uint32(num)
		out.Offsets[i] = first + off
		if out.Offsets[i] > len(decoded) {
			return out, fmt.Errorf("xref: object stream prolog offset %d exceeds decoded length %d", out.Offsets[i], len(decoded))
		}
	}
	return out, nil
}

// Extent returns the [start, end) byte range of the idx'th object's
// content within decoded, given its parsed prolog.
func (p ObjectStreamProlog) Extent(decoded []byte, idx int) (int, int, error) {
	if idx < 0 || idx >= len(p.Offsets) {
		return 0, 0, fmt.Errorf("xref: object stream index %d out of range (have %d)", idx, len(p.Offsets))
	}
	start := p.Offsets[idx]
	end := len(decoded)
	if idx+1 < len(p.Offsets) {
		end = p.Offsets[idx+1]
	}
	return start, end, nil
}
