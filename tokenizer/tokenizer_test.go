package tokenizer

import (
	"bytes"
	"testing"
)

func TestNumbers(t *testing.T) {
	want := []float64{120, -1240000000, 0.0000012, 98.78, -45.4, 45}
	for i, st := range []string{
		"+120", "-1240000000", "12e-7", "98.78", "-45.4", "45.",
	} {
		tk, err := Tokenize([]byte(st))
		if err != nil {
			t.Fatal(err)
		}
		if len(tk) != 1 {
			t.Fatalf("expected 1 token, got %v", tk)
		}
		if !tk[0].IsNumber() {
			t.Errorf("expected a number, got %s", tk[0].Kind)
		}
		if f, err := tk[0].Float(); err != nil || f != want[i] {
			t.Errorf("case %d: expected %v got %v", i, want[i], f)
		}
	}
}

func TestIntegerVsReal(t *testing.T) {
	tk, err := Tokenize([]byte("34 -3.62 +123.6 4."))
	if err != nil {
		t.Fatal(err)
	}
	kinds := []Kind{Integer, Real, Real, Real}
	if len(tk) != len(kinds) {
		t.Fatalf("expected %d tokens, got %v", len(kinds), tk)
	}
	for i, k := range kinds {
		if tk[i].Kind != k {
			t.Errorf("token %d: expected %s got %s", i, k, tk[i].Kind)
		}
	}
}

func TestNames(t *testing.T) {
	tk, err := Tokenize([]byte("/Name1 /ASomewhatLongerName /A;Name_With-Various***Characters? /1.2 /$$ /@pattern /.notdef /#23A"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Name1", "ASomewhatLongerName", "A;Name_With-Various***Characters?", "1.2", "$$", "@pattern", ".notdef", "#A"}
	if len(tk) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), tk)
	}
	for i, w := range want {
		if tk[i].Kind != Name || tk[i].Value != w {
			t.Errorf("token %d: expected Name(%q), got %v", i, w, tk[i])
		}
	}
}

func TestLiteralStrings(t *testing.T) {
	cases := []struct{ in, want string }{
		{`(A literal string)`, "A literal string"},
		{"(Strings may contain newlines\nand such.)", "Strings may contain newlines\nand such."},
		{`(Balanced parens () are ok)`, "Balanced parens () are ok"},
		{`(Escaped \( and \) and \\)`, "Escaped ( and ) and \\"},
		{"(Octal \\101\\102\\103)", "Octal ABC"},
		{"(A line\\\ncontinuation)", "A linecontinuation"},
	}
	for _, c := range cases {
		tk, err := Tokenize([]byte(c.in))
		if err != nil {
			t.Fatal(err)
		}
		if len(tk) != 1 || tk[0].Kind != String {
			t.Fatalf("input %q: expected 1 String token, got %v", c.in, tk)
		}
		if tk[0].Value != c.want {
			t.Errorf("input %q: expected %q, got %q", c.in, c.want, tk[0].Value)
		}
	}
}

func TestHexStrings(t *testing.T) {
	tk, err := Tokenize([]byte("<48656C6C6F> <901FA>"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tk) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tk)
	}
	if tk[0].Value != "Hello" {
		t.Errorf("expected Hello, got %q", tk[0].Value)
	}
	if tk[1].Value != string([]byte{0x90, 0x1F, 0xA0}) {
		t.Errorf("expected padded odd hex string, got %v", []byte(tk[1].Value))
	}
}

func TestKeywordsAndStructure(t *testing.T) {
	tk, err := Tokenize([]byte("<< /Type /Catalog /Pages 2 0 R >> [1 2 R] true false null obj endobj"))
	if err != nil {
		t.Fatal(err)
	}
	kinds := []Kind{StartDict, Name, Name, Name, Integer, Integer, Other, EndDict,
		StartArray, Integer, Integer, Other, EndArray,
		Other, Other, Other, Other, Other}
	if len(tk) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %v", len(kinds), len(tk), tk)
	}
	for i, k := range kinds {
		if tk[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s (%v)", i, k, tk[i].Kind, tk[i])
		}
	}
}

func TestSkipBinary(t *testing.T) {
	out, err := Tokenize([]byte("7 8 stream garbage-that-is-not-tokenized"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Errorf("expected 3 tokens, got %v", out)
	}
	out, err = Tokenize([]byte("7 BI 8 ID garbage"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 {
		t.Errorf("expected 4 tokens, got %v", out)
	}
}

func TestLookaheadAndResume(t *testing.T) {
	input := []byte("7 8 9 4 5 6 4")
	tk := New(input)
	nplus2, err := tk.PeekPeekToken()
	if err != nil {
		t.Fatal(err)
	}
	if exp := (Token{Kind: Integer, Value: "8"}); nplus2 != exp {
		t.Errorf("expected %v got %v", exp, nplus2)
	}
	if _, err := tk.NextToken(); err != nil {
		t.Fatal(err)
	}
	chunk := tk.SkipBytes(2)
	if !bytes.Equal(chunk, []byte(" 8")) {
		t.Errorf("expected %q got %q", " 8", chunk)
	}
	next, err := tk.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if next != (Token{Kind: Integer, Value: "9"}) {
		t.Errorf("expected 9, got %v", next)
	}
	if p := tk.CurrentPosition(); p != 5 {
		t.Errorf("expected position 5, got %d", p)
	}
}

func TestIndirectReferenceLookahead(t *testing.T) {
	// "12 0 R" must tokenize as three tokens; the R-detection happens in
	// objparser, not here - the tokenizer just has to expose two-token
	// lookahead so the parser can make that call.
	tk, err := Tokenize([]byte("12 0 R"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tk) != 3 {
		t.Fatalf("expected 3 tokens, got %v", tk)
	}
	if !tk[2].IsOther("R") {
		t.Errorf("expected R keyword, got %v", tk[2])
	}
}

func TestComments(t *testing.T) {
	tk, err := Tokenize([]byte("1 % a comment\n2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tk) != 2 {
		t.Fatalf("expected comment to be skipped, got %v", tk)
	}
}

func TestStrings_Kind(t *testing.T) {
	for k := EOF; k <= Other; k++ {
		if k.String() == "<invalid token>" {
			t.Errorf("kind %d should stringify", k)
		}
	}
	if Kind(Other + 1).String() != "<invalid token>" {
		t.Error("out of range kind should report <invalid token>")
	}
}
