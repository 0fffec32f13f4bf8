package cmap

import (
	"errors"
	"fmt"

	tokenizer "github.com/benoitkugler/pstokenizer"
	"golang.org/x/text/encoding/unicode"
)

// ErrBadCMap reports a CMap resource this parser could not make sense of.
var ErrBadCMap = errors.New("cmap: malformed CMap resource")

var utf16Dec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()

// Parse reads a CMap program, either embedded as a PDF stream (CID
// CMaps, PDF 1.7 §9.7.5.3) or a ToUnicode CMap (§9.10.3). Both use the
// same PostScript-like surface syntax, so one parser handles both;
// which tables end up populated depends only on which operators the
// program actually uses.
//
// Grounded on the teacher's fonts/cmaps/parser.go, trimmed to the
// operators spec.md requires (codespacerange, bfchar, bfrange,
// cidrange, usecmap) and dropping CIDSystemInfo/version bookkeeping
// this engine's Font view does not need.
func Parse(data []byte) (*CMap, error) {
	p := &parser{tk: tokenizer.NewTokenizer(data), cmap: &CMap{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.cmap, nil
}

type parser struct {
	tk   *tokenizer.Tokenizer
	cmap *CMap
}

// token is a minimal decoded PostScript object: one of string
// (cmapOperand), []byte (hex string), int, float64, or nil at EOF.
func (p *parser) next() (interface{}, error) {
	tok, err := p.tk.NextToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case tokenizer.EOF:
		return nil, nil
	case tokenizer.StringHex:
		return []byte(tok.Value), nil
	case tokenizer.Name:
		return "/" + string(tok.Value), nil
	case tokenizer.Integer:
		v, _ := tok.Int()
		return v, nil
	case tokenizer.Float:
		v, _ := tok.Float()
		return v, nil
	case tokenizer.Other:
		return string(tok.Value), nil
	default:
		return p.next() // skip strings, arrays, dicts: not needed by this engine
	}
}

func (p *parser) run() error {
	var prevName string
	for {
		o, err := p.next()
		if err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		op, isOp := o.(string)
		if !isOp {
			continue
		}
		switch {
		case len(op) > 0 && op[0] == '/':
			prevName = op
		case op == "usecmap":
			p.cmap.UseCMap = prevName
		case op == "begincodespacerange":
			if err := p.parseCodespaceRange(); err != nil {
				return err
			}
		case op == "beginbfchar":
			if err := p.parseBfchar(); err != nil {
				return err
			}
		case op == "beginbfrange":
			if err := p.parseBfrange(); err != nil {
				return err
			}
		case op == "begincidrange":
			if err := p.parseCIDRange(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseCodespaceRange() error {
	for {
		o, err := p.next()
		if err != nil || o == nil {
			return err
		}
		if s, ok := o.(string); ok {
			if s == "endcodespacerange" {
				return nil
			}
			return ErrBadCMap
		}
		low, ok := o.([]byte)
		if !ok {
			return ErrBadCMap
		}
		o, err = p.next()
		if err != nil || o == nil {
			return err
		}
		high, ok := o.([]byte)
		if !ok {
			return ErrBadCMap
		}
		cs, err := newCodespace(low, high)
		if err != nil {
			return err
		}
		p.cmap.Codespaces = append(p.cmap.Codespaces, cs)
	}
}

func (p *parser) parseBfchar() error {
	for {
		o, err := p.next()
		if err != nil || o == nil {
			return err
		}
		if s, ok := o.(string); ok {
			if s == "endbfchar" {
				return nil
			}
			return ErrBadCMap
		}
		src, ok := o.([]byte)
		if !ok {
			return ErrBadCMap
		}
		code := bytesToCode(src)

		o, err = p.next()
		if err != nil || o == nil {
			return err
		}
		var dest []rune
		switch v := o.(type) {
		case []byte:
			dest, err = hexToRunes(v)
			if err != nil {
				dest = []rune{MissingCodeRune}
			}
		default:
			dest = []rune{MissingCodeRune}
		}
		p.cmap.bfEntries = append(p.cmap.bfEntries, bfEntry{From: code, To: code, Dest: dest})
	}
}

func (p *parser) parseBfrange() error {
	for {
		o, err := p.next()
		if err != nil || o == nil {
			return err
		}
		if s, ok := o.(string); ok {
			if s == "endbfrange" {
				return nil
			}
			return ErrBadCMap
		}
		loB, ok := o.([]byte)
		if !ok {
			return ErrBadCMap
		}
		o, err = p.next()
		if err != nil || o == nil {
			return err
		}
		hiB, ok := o.([]byte)
		if !ok {
			return ErrBadCMap
		}
		lo, hi := bytesToCode(loB), bytesToCode(hiB)

		o, err = p.next()
		if err != nil || o == nil {
			return err
		}
		switch v := o.(type) {
		case []byte:
			r, err := hexToRunes(v)
			if err != nil || len(r) == 0 {
				r = []rune{MissingCodeRune}
			}
			p.cmap.bfEntries = append(p.cmap.bfEntries, bfEntry{From: lo, To: hi, Dest: []rune{r[0]}})
		default:
			// Array form [<d1> <d2> ...]; the tokenizer surfaces array
			// contents as individual tokens without container markers in
			// this parser's reduced grammar, so collect hi-lo+1 hex values.
			count := int(hi - lo)
			runes := make([]rune, 0, count+1)
			first := o
			for i := 0; i <= count; i++ {
				var item interface{}
				if i == 0 {
					item = first
				} else {
					item, err = p.next()
					if err != nil {
						return err
					}
				}
				hb, ok := item.([]byte)
				if !ok {
					break
				}
				r, err := hexToRunes(hb)
				if err != nil || len(r) == 0 {
					runes = append(runes, MissingCodeRune)
					continue
				}
				runes = append(runes, r[0])
			}
			p.cmap.bfEntries = append(p.cmap.bfEntries, bfEntry{From: lo, To: hi, Dest: runes})
		}
	}
}

func (p *parser) parseCIDRange() error {
	for {
		o, err := p.next()
		if err != nil || o == nil {
			return err
		}
		if s, ok := o.(string); ok {
			if s == "endcidrange" {
				return nil
			}
			return ErrBadCMap
		}
		loB, ok := o.([]byte)
		if !ok {
			return ErrBadCMap
		}
		o, err = p.next()
		if err != nil || o == nil {
			return err
		}
		hiB, ok := o.([]byte)
		if !ok {
			return ErrBadCMap
		}
		cs, err := newCodespace(loB, hiB)
		if err != nil {
			return err
		}

		o, err = p.next()
		if err != nil || o == nil {
			return err
		}
		start, ok := o.(int)
		if !ok {
			return ErrBadCMap
		}
		p.cmap.CIDRanges = append(p.cmap.CIDRanges, CIDRange{Codespace: cs, CIDStart: CID(start)})
	}
}

func newCodespace(low, high []byte) (Codespace, error) {
	if len(low) != len(high) || len(low) == 0 || len(low) > 4 {
		return Codespace{}, fmt.Errorf("%w: invalid codespace range width %d", ErrBadCMap, len(low))
	}
	return Codespace{NumBytes: len(low), Low: bytesToCode(low), High: bytesToCode(high)}, nil
}

func bytesToCode(b []byte) CharCode {
	var code CharCode
	for _, v := range b {
		code = code<<8 | CharCode(v)
	}
	return code
}

// hexToRunes decodes a ToUnicode CMap's UTF-16BE destination bytes to
// runes (PDF 1.7 §9.10.3: bfchar/bfrange destinations are UTF-16BE).
func hexToRunes(b []byte) ([]rune, error) {
	decoded, err := utf16Dec.Bytes(b)
	if err != nil {
		return nil, err
	}
	return []rune(string(decoded)), nil
}
