package content

import (
	"errors"

	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/objparser"
)

var errInlineImageCorrupt = errors.New("content: corrupted inline image")

// parseInlineImage reads the "BI <dict entries> ID <data> EI" sequence
// that follows a BI keyword (PDF 1.7 §8.9.7). Grounded on
// reader/parser/content_inline_image.go's two-phase shape (dictionary
// entries by abbreviated key, then raw data up to EI), simplified: since
// this engine doesn't render images, the data length is found by
// scanning for an EI marker bounded by whitespace rather than computing
// it from resolved color-space/bits-per-component metrics.
func parseInlineImage(p *objparser.Parser) (*InlineImage, error) {
	dict := object.NewDictionary()
	for {
		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		if cmd, ok := obj.(objparser.Command); ok {
			if string(cmd) == "ID" {
				break
			}
			return nil, errInlineImageCorrupt
		}
		name, ok := obj.(object.Name)
		if !ok {
			return nil, errInlineImageCorrupt
		}
		value, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		dict.Set(expandInlineImageKey(name), value)
	}

	raw := p.RemainingBytes()
	if len(raw) > 0 && isContentWhitespace(raw[0]) {
		p.SkipBytes(1)
		raw = raw[1:]
	}

	end := findEIMarker(raw)
	if end < 0 {
		return nil, errInlineImageCorrupt
	}
	dataEnd := end
	if dataEnd > 0 && isContentWhitespace(raw[dataEnd-1]) {
		dataEnd--
	}
	data := append([]byte(nil), raw[:dataEnd]...)
	p.SkipBytes(end + 2) // "EI"

	return &InlineImage{Dict: dict, Data: data}, nil
}

// expandInlineImageKey maps the abbreviated inline-image dictionary keys
// (PDF 1.7 Table 93) to their full names, so downstream code can treat an
// inline image's dict like any other image XObject's.
func expandInlineImageKey(k object.Name) object.Name {
	switch k {
	case "BPC":
		return "BitsPerComponent"
	case "CS":
		return "ColorSpace"
	case "D":
		return "Decode"
	case "DP":
		return "DecodeParms"
	case "F":
		return "Filter"
	case "H":
		return "Height"
	case "IM":
		return "ImageMask"
	case "I":
		return "Interpolate"
	case "W":
		return "Width"
	case "L":
		return "Length"
	default:
		return k
	}
}

func isContentWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	default:
		return false
	}
}

// findEIMarker finds the first "EI" preceded by whitespace (or at the
// very start) and followed by whitespace or end of input, the same
// tolerant heuristic simple PDF readers use when the data isn't
// filtered and so carries no self-describing end marker.
func findEIMarker(data []byte) int {
	for i := 0; i+1 < len(data); i++ {
		if data[i] != 'E' || data[i+1] != 'I' {
			continue
		}
		if i > 0 && !isContentWhitespace(data[i-1]) {
			continue
		}
		if i+2 < len(data) && !isContentWhitespace(data[i+2]) {
			continue
		}
		return i
	}
	return -1
}
