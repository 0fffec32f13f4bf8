package filters

import (
	"bytes"
	"testing"
)

func roundTrip(t *testing.T, name string, params map[string]int, data []byte) {
	t.Helper()
	enc, err := Encode(name, data, params)
	if err != nil {
		t.Fatalf("Encode(%s): %v", name, err)
	}
	out, warnings, err := Decode([]Filter{{Name: name, Params: params}}, enc)
	if err != nil {
		t.Fatalf("Decode(%s): %v", name, err)
	}
	if len(warnings) != 0 {
		t.Errorf("Decode(%s): unexpected warnings: %v", name, warnings)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("Decode(Encode(%s)) = %v, want %v", name, out, data)
	}
}

func TestRoundTripFlate(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")
	roundTrip(t, Flate, nil, data)
}

func TestRoundTripFlateWithPNGPredictor(t *testing.T) {
	data := []byte{1, 2, 3, 2, 3, 4, 3, 4, 5, 4, 5, 6}
	params := map[string]int{"Predictor": 12, "Colors": 3, "BitsPerComponent": 8, "Columns": 1}
	roundTrip(t, Flate, params, data)
}

func TestRoundTripASCIIHex(t *testing.T) {
	roundTrip(t, ASCIIHex, nil, []byte{0x00, 0x01, 0xFF, 0x7E, 0x42})
}

func TestRoundTripASCII85(t *testing.T) {
	roundTrip(t, ASCII85, nil, []byte("Man is distinguished from all other creatures"))
}

func TestRoundTripASCII85WithZeros(t *testing.T) {
	roundTrip(t, ASCII85, nil, []byte{0, 0, 0, 0, 1, 2, 3, 4, 0, 0, 0, 0})
}

func TestRoundTripRunLength(t *testing.T) {
	roundTrip(t, RunLength, nil, []byte("aaaaaaaaaabbbbbbccccccccccccccccccccddddd"))
}

func TestRunLengthDecodeLiteralAndRepeat(t *testing.T) {
	// 0x02 -> copy next 3 literal bytes; 0xFE -> repeat next byte 257-254=3 times; 0x80 -> EOD
	encoded := []byte{0x02, 'a', 'b', 'c', 0xFE, 'x', 0x80}
	out, err := decodeRunLength(encoded)
	if err != nil {
		t.Fatalf("decodeRunLength: %v", err)
	}
	want := "abcxxx"
	if string(out) != want {
		t.Errorf("decodeRunLength = %q, want %q", out, want)
	}
}

func TestRunLengthDecodeMissingEOD(t *testing.T) {
	if _, err := decodeRunLength([]byte{0x01, 'a', 'b'}); err == nil {
		t.Error("expected error for missing EOD marker")
	}
}

func TestPNGPredictorUpFilter(t *testing.T) {
	// spec.md scenario: PNG predictor 12 (Up), 3 columns, 1 byte/sample.
	// Row 1 raw bytes (tag=2, Up): [0x02, 0x01, 0x02, 0x03] -> decoded [1,2,3]
	// Row 2 raw bytes: [0x02, 0x01, 0x01, 0x01] -> decoded [2,3,4]
	raw := []byte{0x02, 0x01, 0x02, 0x03, 0x02, 0x01, 0x01, 0x01}
	params := predictorParams{predictor: 12, colors: 1, bpc: 8, columns: 3}
	out, err := params.applyInversePredictor(raw)
	if err != nil {
		t.Fatalf("applyInversePredictor: %v", err)
	}
	want := []byte{1, 2, 3, 2, 3, 4}
	if !bytes.Equal(out, want) {
		t.Errorf("applyInversePredictor = %v, want %v", out, want)
	}
}

func TestUnsupportedFilter(t *testing.T) {
	_, _, err := Decode([]Filter{{Name: JBIG2}}, []byte{1, 2, 3})
	if _, ok := err.(UnsupportedFilterError); !ok {
		t.Errorf("expected UnsupportedFilterError, got %v (%T)", err, err)
	}
}

func TestCCITTPassthroughWarns(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	out, warnings, err := Decode([]Filter{{Name: CCITTFax}}, data)
	if err != nil {
		t.Fatalf("Decode(CCITTFax): %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("CCITTFax passthrough altered data")
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(warnings))
	}
}

func TestDCTImageInfoBaselineSOF0(t *testing.T) {
	// minimal JPEG: SOI, SOF0 (len=17, precision=8, height=10, width=20, 3 components), EOI
	data := []byte{
		0xFF, 0xD8, // SOI
		0xFF, 0xC0, 0x00, 0x11, 0x08, 0x00, 0x0A, 0x00, 0x14, 0x03,
		1, 0x22, 0x00,
		2, 0x11, 0x01,
		3, 0x11, 0x01,
		0xFF, 0xD9, // EOI
	}
	info, err := DCTImageInfo(data)
	if err != nil {
		t.Fatalf("DCTImageInfo: %v", err)
	}
	if info.Width != 20 || info.Height != 10 || info.Components != 3 {
		t.Errorf("DCTImageInfo = %+v, want Width=20 Height=10 Components=3", info)
	}
	if info.ColorSpace != "DeviceRGB" {
		t.Errorf("ColorSpace = %q, want DeviceRGB", info.ColorSpace)
	}
}

func TestDCTImageInfoMissingSOI(t *testing.T) {
	if _, err := DCTImageInfo([]byte{0x00, 0x01}); err == nil {
		t.Error("expected error for missing SOI marker")
	}
}

func TestSkipperForFlate(t *testing.T) {
	enc, err := Encode(Flate, []byte("hello world"), nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	trailer := []byte("endstream")
	sk, ok := SkipperFor(Filter{Name: Flate})
	if !ok {
		t.Fatal("expected Skipper for FlateDecode")
	}
	n, err := sk.Skip(append(append([]byte{}, enc...), trailer...))
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if n != len(enc) {
		t.Errorf("Skip consumed %d bytes, want %d", n, len(enc))
	}
}
