package cmap

import (
	"testing"

	"github.com/benoitkugler/textlayout/fonts"
)

// TestToCIDAgreesWithGlyphIndexType checks that CID values decoded from a
// CID CMap line up with the glyph-index type used elsewhere in
// the font-handling ecosystem, so callers can convert a CID straight into a
// fonts.GID without a separate lookup table.
func TestToCIDAgreesWithGlyphIndexType(t *testing.T) {
	cm, err := Parse([]byte(cidCMapSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cid := cm.ToCID(0x0021)
	gid := fonts.GID(cid)
	if gid != 2 {
		t.Errorf("fonts.GID(ToCID(0x21)) = %d, want 2", gid)
	}
}
