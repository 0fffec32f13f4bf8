package object

import (
	"bytes"
	"fmt"
)

// Write appends o's PDF-syntax spelling to buf. It handles every case
// of Object except Stream, whose body placement ("N G obj << dict >>
// stream ... endstream endobj") is a concern of the object that owns
// the byte offset bookkeeping, not of this generic value formatter;
// callers serializing a Stream format its Dict directly and append the
// stream body themselves (see package pdfwriter).
//
// Grounded on the teacher's model/writeutils.go helpers (FmtFloat,
// writeRefArray, writeNameArray, ...), generalized into one recursive
// function over the single Object sum type instead of one helper per
// teacher struct field type.
func Write(buf *bytes.Buffer, o Object) {
	switch v := o.(type) {
	case Null:
		buf.WriteString("null")
	case Boolean:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Integer:
		fmt.Fprintf(buf, "%d", int64(v))
	case Real:
		buf.WriteString(FormatReal(float64(v)))
	case String:
		writeString(buf, v)
	case Name:
		writeName(buf, v)
	case Array:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(' ')
			}
			Write(buf, e)
		}
		buf.WriteByte(']')
	case Dictionary:
		writeDictionary(buf, v)
	case Reference:
		fmt.Fprintf(buf, "%d %d R", v.Number, v.Generation)
	case Stream:
		writeDictionary(buf, v.Dict)
	default:
		buf.WriteString("null")
	}
}

// Format is a convenience wrapper around Write for callers that just
// want the bytes (error messages, tests).
func Format(o Object) []byte {
	var buf bytes.Buffer
	Write(&buf, o)
	return buf.Bytes()
}

func writeDictionary(buf *bytes.Buffer, d Dictionary) {
	buf.WriteString("<<")
	for _, k := range d.Keys() {
		buf.WriteByte(' ')
		writeName(buf, k)
		buf.WriteByte(' ')
		v, _ := d.Get(k)
		Write(buf, v)
	}
	buf.WriteString(" >>")
}

// writeName escapes a name's bytes per PDF 1.7 §7.3.5: any byte outside
// the regular printable range, or one of the delimiter characters, is
// written as a "#XX" hex escape.
func writeName(buf *bytes.Buffer, n Name) {
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c <= 0x20 || c >= 0x7f || isNameDelimiter(c) {
			fmt.Fprintf(buf, "#%02x", c)
			continue
		}
		buf.WriteByte(c)
	}
}

func isNameDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '#':
		return true
	default:
		return false
	}
}

// writeString prefers the literal "( ... )" form (smaller, human
// readable) escaping the handful of characters PDF 1.7 §7.3.4.2
// requires, unless the caller explicitly spelled the string as hex.
func writeString(buf *bytes.Buffer, s String) {
	if s.Form == Hex {
		fmt.Fprintf(buf, "<%x>", s.Bytes)
		return
	}
	buf.WriteByte('(')
	for _, c := range s.Bytes {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

// FormatReal renders f with minimal digits and no trailing zeros or
// scientific notation (spec.md §4.5/§4.6 "minimal numeric formatting"),
// shared by the content-stream emitter and the object writer.
func FormatReal(f float64) string {
	s := fmt.Sprintf("%.6f", f)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "" || s == "-0" {
		s = "0"
	}
	return s
}
