// Package filters implements the PDF stream filter pipeline (C3 in
// spec.md): decoding (and, where the writer needs it, encoding) the byte
// sequences named by a stream's /Filter entry. See PDF 1.7 §7.4.
package filters

import (
	"fmt"
	"io"
)

// Filter names, as found in /Filter (PDF 1.7 §7.4).
const (
	ASCII85   = "ASCII85Decode"
	ASCIIHex  = "ASCIIHexDecode"
	RunLength = "RunLengthDecode"
	LZW       = "LZWDecode"
	Flate     = "FlateDecode"
	DCT       = "DCTDecode"
	CCITTFax  = "CCITTFaxDecode"
	JBIG2     = "JBIG2Decode"
	JPX       = "JPXDecode"
	Crypt     = "Crypt"
)

// Filter names one filter step together with its /DecodeParms. Only the
// numeric/boolean parameters the supported filters actually read are kept;
// unknown keys are ignored.
type Filter struct {
	Name   string
	Params map[string]int
}

// UnsupportedFilterError reports a named filter this module cannot decode
// at all (spec.md §6 error taxonomy, "UnsupportedFilter").
type UnsupportedFilterError struct{ Name string }

func (e UnsupportedFilterError) Error() string {
	return fmt.Sprintf("filters: unsupported filter %q", e.Name)
}

// InvalidFilterDataError reports malformed filtered data (spec.md §4.3
// "Failure").
type InvalidFilterDataError struct {
	Filter string
	Reason string
}

func (e InvalidFilterDataError) Error() string {
	return fmt.Sprintf("filters: invalid data for %s: %s", e.Filter, e.Reason)
}

// Skipper locates the end-of-data marker of an encoded byte sequence
// without fully decoding it, and reports how many encoded bytes it
// consumed. Used to recover a stream's true length when /Length is
// missing or wrong (spec.md §4.1 "Stream bodies").
type Skipper interface {
	Skip(encoded []byte) (consumed int, err error)
}

// SkipperFor returns the Skipper for f, if one is defined. DCT and CCITT
// have none: DCT is passthrough (DCTImageInfo in dct.go only reads its
// frame header) and CCITT has no cheap length-detection shortcut in this
// module's best-effort decoder.
func SkipperFor(f Filter) (Skipper, bool) {
	switch f.Name {
	case ASCII85:
		return skipperASCII85{}, true
	case ASCIIHex:
		return skipperASCIIHex{}, true
	case RunLength:
		return skipperRunLength{}, true
	case Flate:
		return skipperFlate{}, true
	case LZW:
		return skipperLZW{earlyChange: earlyChangeOf(f)}, true
	default:
		return nil, false
	}
}

// Decode applies the filter chain in order, as FlateDecode/ASCII85Decode/...
// are meant to be applied: chain[0] is the outermost encoding (applied
// last when encoding, first when decoding).
func Decode(chain []Filter, data []byte) ([]byte, []Warning, error) {
	var warnings []Warning
	for _, f := range chain {
		out, w, err := decodeOne(f, data)
		if err != nil {
			return out, warnings, err
		}
		warnings = append(warnings, w...)
		data = out
	}
	return data, warnings, nil
}

// Warning is a non-fatal condition encountered while decoding, surfaced to
// callers that opted into ParseOptions.CollectWarnings (spec.md §6).
type Warning struct {
	Filter  string
	Message string
}

func decodeOne(f Filter, data []byte) ([]byte, []Warning, error) {
	switch f.Name {
	case Flate:
		return decodeFlate(f, data)
	case LZW:
		return decodeLZW(f, data)
	case ASCIIHex:
		out, err := decodeASCIIHex(data)
		return out, nil, err
	case ASCII85:
		out, err := decodeASCII85(data)
		return out, nil, err
	case RunLength:
		out, err := decodeRunLength(data)
		return out, nil, err
	case DCT:
		// passthrough: JPEG bytes are kept intact for the consumer (an
		// image decoder or the writer); only metadata is extracted
		// elsewhere via DCTImageInfo.
		return data, nil, nil
	case CCITTFax:
		return data, []Warning{{Filter: CCITTFax, Message: "CCITTFaxDecode: best-effort stub, returning raw data"}}, nil
	case Crypt:
		// document-level encryption is handled by the caller; absent that,
		// "Identity" Crypt is a no-op.
		return data, nil, nil
	case JBIG2, JPX:
		return nil, nil, UnsupportedFilterError{Name: f.Name}
	default:
		return nil, nil, UnsupportedFilterError{Name: f.Name}
	}
}

// Encode applies the inverse of Decode for the filters the writer needs to
// produce (spec.md §4.3 table: "Encode" column marked required/optional).
func Encode(name string, data []byte, params map[string]int) ([]byte, error) {
	switch name {
	case Flate:
		return encodeFlate(data, params), nil
	case ASCIIHex:
		return encodeASCIIHex(data), nil
	case ASCII85:
		return encodeASCII85(data), nil
	case RunLength:
		return encodeRunLength(data), nil
	case LZW:
		return encodeLZW(data, params)
	default:
		return nil, fmt.Errorf("filters: encoding not supported for %s", name)
	}
}

func earlyChangeOf(f Filter) bool {
	if v, ok := f.Params["EarlyChange"]; ok {
		return v != 0
	}
	return true
}

// countingReader wraps a reader to report exactly how many bytes were
// pulled from the underlying source, used by the Skip implementations to
// report the consumed length.
type countingReader struct {
	r         io.Reader
	totalRead int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.totalRead += n
	return n, err
}

// ReadByte makes countingReader an io.ByteReader, so compress/zlib and
// compress/flate read from it directly instead of through a bufio
// read-ahead that would count bytes past the end of the compressed data.
func (c *countingReader) ReadByte() (byte, error) {
	var b [1]byte
	n, err := c.Read(b[:])
	if n == 1 {
		return b[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}
