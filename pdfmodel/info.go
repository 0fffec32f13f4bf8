package pdfmodel

import (
	"strconv"
	"time"

	"github.com/corvuspdf/engine/object"
)

// Info holds the document information dictionary's standard fields
// (PDF 1.7 §14.3.3), spec.md §4.4 "Metadata".
type Info struct {
	Title, Author, Subject, Keywords string
	Creator, Producer                string
	CreationDate, ModDate            time.Time
}

// Info reads the trailer's /Info dictionary, tolerantly parsing its
// PDF date strings.
func (p *PDFDocument) Info() (Info, error) {
	var info Info
	trailer := p.Doc.Trailer()
	if trailer.Info == nil {
		return info, nil
	}
	obj, err := p.Doc.GetObject(trailer.Info.Number, trailer.Info.Generation)
	if err != nil {
		return info, err
	}
	dict, ok := object.AsDictionary(obj)
	if !ok {
		return info, nil
	}

	text := func(key object.Name) string {
		v, ok := dict.Get(key)
		if !ok {
			return ""
		}
		b, ok := object.AsString(v)
		if !ok {
			return ""
		}
		return string(b)
	}

	info.Title = text("Title")
	info.Author = text("Author")
	info.Subject = text("Subject")
	info.Keywords = text("Keywords")
	info.Creator = text("Creator")
	info.Producer = text("Producer")
	info.CreationDate, _ = ParsePDFDate(text("CreationDate"))
	info.ModDate, _ = ParsePDFDate(text("ModDate"))
	return info, nil
}

// ParsePDFDate parses a PDF date string of the form
// "D:YYYYMMDDHHmmSSOHH'mm'" (PDF 1.7 §7.9.4), tolerating a missing
// "D:" prefix, a missing time portion, and a missing or malformed
// timezone offset (spec.md §4.4 "parsed tolerantly").
func ParsePDFDate(s string) (time.Time, bool) {
	if len(s) >= 2 && s[:2] == "D:" {
		s = s[2:]
	}
	if len(s) < 4 {
		return time.Time{}, false
	}

	field := func(s string, start, n int, def int) int {
		if start+n > len(s) {
			return def
		}
		v, err := strconv.Atoi(s[start : start+n])
		if err != nil {
			return def
		}
		return v
	}

	year := field(s, 0, 4, 0)
	month := field(s, 4, 2, 1)
	day := field(s, 6, 2, 1)
	hour := field(s, 8, 2, 0)
	min := field(s, 10, 2, 0)
	sec := field(s, 12, 2, 0)

	loc := time.UTC
	if len(s) > 14 {
		rest := s[14:]
		switch rest[0] {
		case 'Z':
			loc = time.UTC
		case '+', '-':
			offH := field(rest, 1, 2, 0)
			offM := 0
			if len(rest) >= 6 && rest[3] == '\'' {
				offM = field(rest, 4, 2, 0)
			}
			offsetSeconds := offH*3600 + offM*60
			if rest[0] == '-' {
				offsetSeconds = -offsetSeconds
			}
			loc = time.FixedZone("", offsetSeconds)
		}
	}

	return time.Date(year, time.Month(month), day, hour, min, sec, 0, loc), true
}
