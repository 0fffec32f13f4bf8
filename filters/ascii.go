package filters

import (
	"bytes"
	"encoding/ascii85"
	"fmt"
)

// decodeASCIIHex implements ASCIIHexDecode (PDF 1.7 §7.4.2): whitespace is
// ignored, '>' terminates, an odd trailing digit is padded with a 0.
func decodeASCIIHex(data []byte) ([]byte, error) {
	var digits []byte
	for _, b := range data {
		switch {
		case b == '>':
			return hexDigitsToBytes(digits), nil
		case isHexWS(b):
			continue
		default:
			if _, ok := hexVal(b); !ok {
				return nil, InvalidFilterDataError{Filter: ASCIIHex, Reason: fmt.Sprintf("invalid hex digit %q", b)}
			}
			digits = append(digits, b)
		}
	}
	// no terminator found: lenient callers still get what was decoded
	return hexDigitsToBytes(digits), nil
}

func hexDigitsToBytes(digits []byte) []byte {
	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := 0; i < len(out); i++ {
		hi, _ := hexVal(digits[2*i])
		lo, _ := hexVal(digits[2*i+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func isHexWS(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func encodeASCIIHex(data []byte) []byte {
	out := make([]byte, 0, len(data)*2+1)
	const hexDigits = "0123456789ABCDEF"
	for _, b := range data {
		out = append(out, hexDigits[b>>4], hexDigits[b&0xf])
	}
	out = append(out, '>')
	return out
}

// decodeASCII85 implements ASCII85Decode (PDF 1.7 §7.4.3): groups of 5
// printable characters map to 4 bytes, "z" abbreviates 4 zero bytes, "~>"
// terminates.
func decodeASCII85(data []byte) ([]byte, error) {
	if idx := bytes.Index(data, []byte("~>")); idx >= 0 {
		data = data[:idx]
	}
	// Go's encoding/ascii85 already implements PDF's dialect (including the
	// 'z' shortcut); it just doesn't know about the "~>" terminator, which
	// we strip above.
	var filtered []byte
	for _, b := range data {
		if isHexWS(b) {
			continue
		}
		filtered = append(filtered, b)
	}
	// a "z" expands one input byte to four output bytes
	out := make([]byte, 4*len(filtered)+4)
	n, _, err := ascii85.Decode(out, filtered, true)
	if err != nil {
		return out[:n], InvalidFilterDataError{Filter: ASCII85, Reason: err.Error()}
	}
	return out[:n], nil
}

func encodeASCII85(data []byte) []byte {
	var buf bytes.Buffer
	w := ascii85.NewEncoder(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	buf.WriteString("~>")
	return buf.Bytes()
}
