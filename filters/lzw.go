package filters

import (
	"bytes"
	"io"

	"github.com/hhrutter/lzw"
)

func decodeLZW(f Filter, data []byte) ([]byte, []Warning, error) {
	earlyChange := earlyChangeOf(f)
	rc := lzw.NewReader(bytes.NewReader(data), earlyChange)
	defer rc.Close()

	decompressed, err := io.ReadAll(rc)
	if err != nil {
		if len(decompressed) == 0 {
			return nil, nil, InvalidFilterDataError{Filter: LZW, Reason: err.Error()}
		}
		out := decompressed
		if params, perr := predictorParamsFrom(f); perr == nil {
			if applied, aerr := params.applyInversePredictor(decompressed); aerr == nil {
				out = applied
			}
		}
		return out, []Warning{{Filter: LZW, Message: "truncated stream: " + err.Error()}}, nil
	}

	params, err := predictorParamsFrom(f)
	if err != nil {
		return nil, nil, InvalidFilterDataError{Filter: LZW, Reason: err.Error()}
	}
	out, err := params.applyInversePredictor(decompressed)
	if err != nil {
		return nil, nil, InvalidFilterDataError{Filter: LZW, Reason: err.Error()}
	}
	return out, nil, nil
}

// encodeLZW is optional per spec.md §4.3; LZW's patent history means the
// ecosystem codec (hhrutter/lzw) only ships a decoder, so this module does
// not produce LZW-encoded output (writers default to Flate instead).
func encodeLZW([]byte, map[string]int) ([]byte, error) {
	return nil, UnsupportedFilterError{Name: LZW + " (encode)"}
}

type skipperLZW struct{ earlyChange bool }

func (s skipperLZW) Skip(encoded []byte) (int, error) {
	r := bytes.NewReader(encoded)
	rc := lzw.NewReader(r, s.earlyChange)
	_, err := io.Copy(io.Discard, rc)
	if err != nil {
		return 0, err
	}
	err = rc.Close()
	return len(encoded) - r.Len(), err
}
