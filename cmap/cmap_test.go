package cmap

import "testing"

const toUnicodeSample = `
/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Adobe-Identity-UCS def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0041>
<0004> <0042>
endbfchar
1 beginbfrange
<0005> <0007> <0061>
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`

func TestParseToUnicodeBfchar(t *testing.T) {
	cm, err := Parse([]byte(toUnicodeSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cm.Codespaces) != 1 {
		t.Fatalf("expected 1 codespace, got %d", len(cm.Codespaces))
	}

	got := cm.ToUnicode([]byte{0x00, 0x03, 0x00, 0x04})
	if got != "AB" {
		t.Errorf("ToUnicode bfchar = %q, want %q", got, "AB")
	}
}

func TestParseToUnicodeBfrange(t *testing.T) {
	cm, err := Parse([]byte(toUnicodeSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// codes 0x0005, 0x0006, 0x0007 map to 'a', 'b', 'c'
	got := cm.ToUnicode([]byte{0x00, 0x05, 0x00, 0x06, 0x00, 0x07})
	if got != "abc" {
		t.Errorf("ToUnicode bfrange = %q, want %q", got, "abc")
	}
}

func TestToUnicodeMissingCodeIsReplacementChar(t *testing.T) {
	cm, err := Parse([]byte(toUnicodeSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := cm.ToUnicode([]byte{0x00, 0x99})
	if got != string(rune(MissingCodeRune)) {
		t.Errorf("unmapped code = %q, want replacement char", got)
	}
}

const cidCMapSample = `
/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Adobe-Japan1-0 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 begincidrange
<0020> <007E> 1
endcidrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`

func TestParseCIDRange(t *testing.T) {
	cm, err := Parse([]byte(cidCMapSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cm.CIDRanges) != 1 {
		t.Fatalf("expected 1 cid range, got %d", len(cm.CIDRanges))
	}
	if got := cm.ToCID(0x0021); got != 2 {
		t.Errorf("ToCID(0x21) = %d, want 2", got)
	}
}

func TestIdentityCMap(t *testing.T) {
	cm := Identity("Identity-H")
	codes := cm.Codes([]byte{0x00, 0x41, 0x00, 0x42})
	if len(codes) != 2 || codes[0] != 0x0041 || codes[1] != 0x0042 {
		t.Errorf("Codes = %v, want [0x41 0x42]", codes)
	}
	if cid := cm.ToCID(0x0041); cid != 0x0041 {
		t.Errorf("ToCID under Identity = %d, want 0x41", cid)
	}
}

func TestIsIdentityName(t *testing.T) {
	if !IsIdentityName("Identity-H") || !IsIdentityName("Identity-V") {
		t.Error("expected both predefined identity names to be recognized")
	}
	if IsIdentityName("UniGB-UCS2-H") {
		t.Error("non-identity predefined CMap incorrectly recognized as identity")
	}
}
