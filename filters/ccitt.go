package filters

// CCITTParams mirrors the /DecodeParms entries CCITTFaxDecode defines
// (PDF 1.7 §7.4.6): K selects the encoding variant (Group 3 1-D, Group 3
// 2-D, or Group 4), Columns/Rows give the image's raster size.
//
// This module treats CCITTFaxDecode as best-effort: decodeOne returns the
// encoded bytes unchanged with a Warning rather than decompressing the
// fax bitmap, since the full Group 3/4 decoder the teacher repo vendors
// (reader/parser/filters/ccitt) is a large standalone codec out of scope
// for this engine's own filter pipeline. Callers that need the decoded
// bitmap must supply their own CCITT decoder.
type CCITTParams struct {
	K                 int
	Columns           int
	Rows              int
	BlackIs1          bool
	EncodedByteAlign  bool
	EndOfBlock        bool
	EndOfLine         bool
	DamagedRowsBefore int
}

func ccittParamsFrom(f Filter) CCITTParams {
	p := CCITTParams{Columns: 1728, EndOfBlock: true}
	if v, ok := f.Params["K"]; ok {
		p.K = v
	}
	if v, ok := f.Params["Columns"]; ok {
		p.Columns = v
	}
	if v, ok := f.Params["Rows"]; ok {
		p.Rows = v
	}
	if v, ok := f.Params["BlackIs1"]; ok {
		p.BlackIs1 = v != 0
	}
	if v, ok := f.Params["EncodedByteAlign"]; ok {
		p.EncodedByteAlign = v != 0
	}
	return p
}
