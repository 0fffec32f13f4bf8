package filters

import (
	"bytes"
	"compress/zlib"
	"io"
)

func decodeFlate(f Filter, data []byte) ([]byte, []Warning, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, InvalidFilterDataError{Filter: Flate, Reason: err.Error()}
	}
	defer zr.Close()

	decompressed, err := io.ReadAll(zr)
	params, perr := predictorParamsFrom(f)
	if err != nil {
		if len(decompressed) == 0 {
			return nil, nil, InvalidFilterDataError{Filter: Flate, Reason: err.Error()}
		}
		// lenient: return whatever we could decompress before the error
		out := decompressed
		if perr == nil {
			if applied, aerr := params.applyInversePredictor(decompressed); aerr == nil {
				out = applied
			}
		}
		return out, []Warning{{Filter: Flate, Message: "truncated stream, returning partial decode: " + err.Error()}}, nil
	}

	if perr != nil {
		return nil, nil, InvalidFilterDataError{Filter: Flate, Reason: perr.Error()}
	}
	out, err := params.applyInversePredictor(decompressed)
	if err != nil {
		return nil, nil, InvalidFilterDataError{Filter: Flate, Reason: err.Error()}
	}
	return out, nil, nil
}

func encodeFlate(data []byte, params map[string]int) []byte {
	p, err := predictorParamsFrom(Filter{Params: params})
	if err == nil && p.predictor > 1 {
		data = applyPredictorForEncode(p, data)
	}
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}

type skipperFlate struct{}

// Skip implements Skipper: it decompresses the whole candidate slice and
// reports how many encoded bytes zlib actually consumed, letting the
// caller locate "endstream" precisely even when /Length lies (spec.md
// §4.1, "on mismatch in lenient mode, the parser scans forward").
func (skipperFlate) Skip(encoded []byte) (int, error) {
	r := &countingReader{r: bytes.NewReader(encoded)}
	zr, err := zlib.NewReader(r)
	if err != nil {
		return 0, err
	}
	_, err = io.Copy(io.Discard, zr)
	_ = zr.Close()
	return r.totalRead, err
}
