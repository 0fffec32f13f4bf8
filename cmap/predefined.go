package cmap

// Identity returns the built-in Identity-H/Identity-V CMap: a single
// 2-byte codespace where CID equals the character code directly. Used
// as the CID-to-code mapping for Type0 fonts that declare one of these
// two predefined encodings (PDF 1.7 §9.7.5.2, Table 118), and as the
// fallback spec.md §4.5 rule 2 describes when a descendant CID font has
// no ToUnicode CMap: "Identity-H falls through when no ToUnicode is
// available".
func Identity(name string) *CMap {
	return &CMap{
		Name:       name,
		Codespaces: []Codespace{{NumBytes: 2, Low: 0, High: 0xFFFF}},
		CIDRanges:  []CIDRange{{Codespace: Codespace{NumBytes: 2, Low: 0, High: 0xFFFF}, CIDStart: 0}},
	}
}

// IsIdentityName reports whether name is one of the two predefined
// identity CMaps, the only predefined CMaps this engine resolves without
// an external CMap resource directory.
func IsIdentityName(name string) bool {
	return name == "Identity-H" || name == "Identity-V"
}
