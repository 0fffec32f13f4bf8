package filters

import (
	"bytes"
	"fmt"
	"io"
)

// predictorParams holds the /DecodeParms fields relevant to the PNG and
// TIFF predictors applied after Flate/LZW decompression (spec.md §4.3
// "Predictor handling").
type predictorParams struct {
	predictor int
	colors    int
	bpc       int
	columns   int
}

func predictorParamsFrom(f Filter) (predictorParams, error) {
	p := predictorParams{predictor: f.Params["Predictor"], colors: 1, bpc: 8, columns: 1}
	switch p.predictor {
	case 0, 1, 2, 10, 11, 12, 13, 14, 15:
	default:
		return p, fmt.Errorf("unsupported Predictor %d", p.predictor)
	}
	if v, ok := f.Params["Colors"]; ok {
		if v <= 0 {
			return p, fmt.Errorf("Colors must be > 0, got %d", v)
		}
		p.colors = v
	}
	if v, ok := f.Params["BitsPerComponent"]; ok {
		switch v {
		case 1, 2, 4, 8, 16:
			p.bpc = v
		default:
			return p, fmt.Errorf("unsupported BitsPerComponent %d", v)
		}
	}
	if v, ok := f.Params["Columns"]; ok {
		p.columns = v
	}
	return p, nil
}

func (p predictorParams) rowSize() int { return p.bpc * p.colors * p.columns / 8 }

// applyInversePredictor undoes the PNG-family (predictor 10-15) or TIFF
// (predictor 2) row-wise prediction applied before compression.
func (p predictorParams) applyInversePredictor(decompressed []byte) ([]byte, error) {
	if p.predictor == 0 || p.predictor == 1 {
		return decompressed, nil
	}

	bytesPerPixel := (p.bpc*p.colors + 7) / 8
	rowSize := p.rowSize()
	if p.predictor != 2 {
		rowSize++ // PNG rows are prefixed with a 1-byte filter tag
	}

	cur := make([]byte, rowSize)
	prev := make([]byte, rowSize)
	var out []byte
	r := bytes.NewReader(decompressed)

	for {
		_, err := io.ReadFull(r, cur)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		row, err := applyRowFilter(prev, cur, p.predictor, p.colors, bytesPerPixel)
		if err != nil {
			return nil, err
		}
		out = append(out, row...)
		prev, cur = cur, prev
	}

	if want := p.rowSize(); want > 0 && len(out)%want != 0 {
		return nil, fmt.Errorf("predictor: decoded length %d not a multiple of row size %d", len(out), want)
	}
	return out, nil
}

func applyRowFilter(prev, cur []byte, predictor, colors, bpp int) ([]byte, error) {
	if predictor == 2 { // TIFF horizontal differencing, 8 bits/component only
		for i := 1; i < len(cur)/colors; i++ {
			for j := 0; j < colors; j++ {
				cur[i*colors+j] += cur[(i-1)*colors+j]
			}
		}
		return cur, nil
	}

	tag := cur[0]
	cdat := cur[1:]
	pdat := prev[1:]

	switch tag {
	case 0: // None
	case 1: // Sub
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case 2: // Up
		for i, b := range pdat {
			cdat[i] += b
		}
	case 3: // Average
		for i := 0; i < bpp; i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += uint8((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case 4: // Paeth
		paeth(cdat, pdat, bpp)
	default:
		return nil, fmt.Errorf("predictor: invalid PNG row filter tag %d", tag)
	}
	return cdat, nil
}

func paeth(cdat, pdat []byte, bpp int) {
	var a, b, c, pa, pb, pc int32
	for i := 0; i < bpp; i++ {
		a, c = 0, 0
		for j := i; j < len(cdat); j += bpp {
			b = int32(pdat[j])
			pa = absInt32(b - c)
			pb = absInt32(a - c)
			pc = absInt32(b - c + a - c)
			var pred int32
			switch {
			case pa <= pb && pa <= pc:
				pred = a
			case pb <= pc:
				pred = b
			default:
				pred = c
			}
			a = (pred + int32(cdat[j])) & 0xff
			cdat[j] = uint8(a)
			c = b
		}
	}
}

func absInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// applyPredictorForEncode applies, before compression, TIFF horizontal
// differencing for predictor 2 and the PNG "Up" filter for the PNG
// predictors, the simplest PNG filter that round-trips with
// applyInversePredictor; the writer does not need to replicate every PNG
// filter heuristic an
// optimizing encoder would use (spec.md §9 "writer stream compression" -
// only semantic round-trip is required).
func applyPredictorForEncode(p predictorParams, raw []byte) []byte {
	if p.predictor == 0 || p.predictor == 1 {
		return raw
	}
	rowSize := p.rowSize()
	if rowSize == 0 {
		return raw
	}
	if p.predictor == 2 {
		out := append([]byte(nil), raw...)
		for off := 0; off < len(raw); off += rowSize {
			end := off + rowSize
			if end > len(raw) {
				end = len(raw)
			}
			for i := off + p.colors; i < end; i++ {
				out[i] = raw[i] - raw[i-p.colors]
			}
		}
		return out
	}
	var out []byte
	prev := make([]byte, rowSize)
	for off := 0; off < len(raw); off += rowSize {
		end := off + rowSize
		if end > len(raw) {
			end = len(raw)
		}
		row := raw[off:end]
		out = append(out, 2) // Up
		for i, b := range row {
			var pv byte
			if i < len(prev) {
				pv = prev[i]
			}
			out = append(out, b-pv)
		}
		prev = append(prev[:0], row...)
		for len(prev) < rowSize {
			prev = append(prev, 0)
		}
	}
	return out
}
