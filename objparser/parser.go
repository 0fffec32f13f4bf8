// Package objparser assembles the tokens produced by package tokenizer
// into object.Object values: ISO 32000-1:2008 §7.3 object syntax (C1 in
// spec.md). It knows nothing about indirect-object bookkeeping beyond
// recognizing the "N G obj ... endobj" header and the "N G R" reference
// grammar; locating and caching objects by number is package xref/document.
package objparser

import (
	"errors"
	"fmt"

	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/tokenizer"
)

var (
	errArrayNotTerminated      = errors.New("objparser: unterminated array")
	errDictionaryCorrupt       = errors.New("objparser: corrupted dictionary")
	errDictionaryDuplicateKey  = errors.New("objparser: duplicate dictionary key")
	errDictionaryNotTerminated = errors.New("objparser: unterminated dictionary")

	// ErrEOF is returned by ParseObject when the input is exhausted
	// before another object starts; package content loops on it to find
	// the end of a content stream.
	ErrEOF = errors.New("objparser: unexpected end of input")
)

// Parser turns a token stream into object.Object values. A Parser only
// handles one chunk of PDF syntax (an object definition, a content
// stream, ...); it has no notion of stream bodies, which require knowing
// the active filters and so are handled one level up.
type Parser struct {
	tokens tokenizer.Tokenizer

	// Lenient relaxes a handful of syntax rules real-world PDF writers
	// violate, per spec.md §4.1 "Lenient mode".
	Lenient bool

	// ContentStreamMode disallows indirect references (not legal operands
	// in a content stream) and turns unrecognized keywords into Command
	// values instead of erroring; used by package content.
	ContentStreamMode bool
}

// Command is a bare content-stream operator keyword, e.g. "Tj" or "re".
// Only meaningful when Parser.ContentStreamMode is set.
type Command string

func (Command) isObject()       {}
func (c Command) Clone() object.Object { return c }

// New creates a Parser reading from data.
func New(data []byte) *Parser {
	return NewFromTokenizer(tokenizer.New(data))
}

// NewFromTokenizer creates a Parser that continues reading from an
// already-positioned Tokenizer (used by the xref reader, which needs to
// parse several objects from one file without re-slicing it each time).
func NewFromTokenizer(tk tokenizer.Tokenizer) *Parser {
	return &Parser{tokens: tk}
}

// Position returns the current byte offset in the underlying token stream.
func (p *Parser) Position() int { return p.tokens.CurrentPosition() }

// RemainingBytes returns the unread input past the current position,
// for a caller (package content's inline-image reader) that needs to
// scan raw bytes the tokenizer would otherwise misinterpret.
func (p *Parser) RemainingBytes() []byte { return p.tokens.Bytes() }

// SkipBytes consumes n raw bytes verbatim, bypassing tokenization.
func (p *Parser) SkipBytes(n int) []byte { return p.tokens.SkipBytes(n) }

// ParseObject reads the single object at the front of data.
func ParseObject(data []byte) (object.Object, error) {
	return New(data).ParseObject()
}

// ParseObject reads one object and advances past it.
func (p *Parser) ParseObject() (object.Object, error) {
	tk, err := p.tokens.NextToken()
	if err != nil {
		return nil, err
	}

	switch tk.Kind {
	case tokenizer.EOF:
		return nil, ErrEOF
	case tokenizer.Name:
		return object.Name(tk.Value), nil
	case tokenizer.String:
		return object.String{Bytes: []byte(tk.Value), Form: object.Literal}, nil
	case tokenizer.StringHex:
		return object.String{Bytes: []byte(tk.Value), Form: object.Hex}, nil
	case tokenizer.StartArray:
		return p.parseArray()
	case tokenizer.StartDict:
		return p.parseDictOrStream()
	case tokenizer.Real:
		f, err := tk.Float()
		if err != nil {
			return nil, err
		}
		return object.Real(f), nil
	case tokenizer.Integer:
		return p.parseNumericOrReference(tk)
	case tokenizer.Other:
		return p.parseKeyword(tk.Value)
	default:
		return nil, fmt.Errorf("objparser: unexpected token %s", tk.Kind)
	}
}

func (p *Parser) parseArray() (object.Array, error) {
	arr := object.Array{}
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return nil, err
		}
		switch tk.Kind {
		case tokenizer.EndArray:
			_, _ = p.tokens.NextToken()
			return arr, nil
		case tokenizer.EOF:
			return nil, errArrayNotTerminated
		default:
			obj, err := p.ParseObject()
			if err != nil {
				return nil, err
			}
			arr = append(arr, obj)
		}
	}
}

// parseDictOrStream parses "<< ... >>" and, when immediately followed by
// the "stream" keyword, the stream body per spec.md §4.1 "Stream bodies".
// Locating the actual end of the body requires knowing /Length and the
// active filters, which this package cannot resolve (it may be an
// indirect reference); callers needing stream content use
// StreamBodyOffset once they have resolved /Length themselves.
func (p *Parser) parseDictOrStream() (object.Object, error) {
	start := p.tokens.CurrentPosition()
	dict, err := p.parseDict(false)
	if err != nil && p.Lenient {
		// retry from the start of the dictionary tolerating a missing value
		// before end-of-line, a pattern seen from PDF producers that emit
		// "/Key\n>>" instead of "/Key null\n>>"
		p.tokens.SetPosition(start)
		dict, err = p.parseDict(true)
	}
	if err != nil {
		return nil, err
	}

	tk, err := p.tokens.PeekToken()
	if err != nil || !tk.IsOther("stream") {
		return dict, nil
	}
	_, _ = p.tokens.NextToken() // consume "stream"

	// Per §7.3.8.1: the keyword is followed by CRLF or LF (not CR alone)
	// before the data starts.
	raw := p.tokens.Bytes()
	skip := 0
	if len(raw) >= 2 && raw[0] == '\r' && raw[1] == '\n' {
		skip = 2
	} else if len(raw) >= 1 && raw[0] == '\n' {
		skip = 1
	} else if p.Lenient && len(raw) >= 1 && raw[0] == '\r' {
		skip = 1
	}
	p.tokens.SkipBytes(skip)

	return object.Stream{
		Dict: dict,
		Source: object.StreamSource{
			Kind:   object.SourceFile,
			Offset: int64(p.tokens.CurrentPosition()),
		},
	}, nil
}

func (p *Parser) parseDict(relaxed bool) (object.Dictionary, error) {
	d := object.NewDictionary()
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return object.Dictionary{}, err
		}
		switch tk.Kind {
		case tokenizer.EndDict:
			_, _ = p.tokens.NextToken()
			return d, nil
		case tokenizer.EOF:
			return object.Dictionary{}, errDictionaryNotTerminated
		case tokenizer.Name:
			key := object.Name(tk.Value)
			_, _ = p.tokens.NextToken() // consume the key

			var value object.Object
			if relaxed && p.atEOLBeforeNextToken() {
				value = object.String{Form: object.Literal}
			} else {
				value, err = p.ParseObject()
				if err != nil {
					return object.Dictionary{}, err
				}
			}

			// "Specifying the null object as the value of a dictionary
			// entry ... shall be equivalent to omitting the entry
			// entirely" (§7.3.7).
			if _, isNull := value.(object.Null); !isNull {
				if _, has := d.Get(key); has && !relaxed {
					return object.Dictionary{}, errDictionaryDuplicateKey
				}
				d.Set(key, value)
			}
		default:
			return object.Dictionary{}, errDictionaryCorrupt
		}
	}
}

// atEOLBeforeNextToken is a coarse heuristic: it only looks at the raw
// byte right after the current cursor, which is sufficient to distinguish
// "/Key\n/NextKey" from "/Key (value)".
func (p *Parser) atEOLBeforeNextToken() bool {
	raw := p.tokens.Bytes()
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t') {
		i++
	}
	return i < len(raw) && (raw[i] == '\n' || raw[i] == '\r')
}

func (p *Parser) parseKeyword(kw string) (object.Object, error) {
	switch kw {
	case "null":
		return object.Null{}, nil
	case "true":
		return object.Boolean(true), nil
	case "false":
		return object.Boolean(false), nil
	default:
		if p.ContentStreamMode {
			return Command(kw), nil
		}
		if p.Lenient {
			return object.Null{}, nil
		}
		return nil, fmt.Errorf("objparser: unexpected keyword %q", kw)
	}
}

// parseNumericOrReference disambiguates a bare Integer from the start of
// an "N G R" indirect reference, which needs two tokens of lookahead.
func (p *Parser) parseNumericOrReference(first tokenizer.Token) (object.Object, error) {
	n, err := first.Int()
	if err != nil {
		return nil, err
	}

	if p.ContentStreamMode {
		return object.Integer(n), nil
	}

	next, err := p.tokens.PeekToken()
	if err != nil {
		return nil, err
	}
	gen, genErr := next.Int()
	if next.Kind != tokenizer.Integer || genErr != nil {
		return object.Integer(n), nil
	}

	afterGen, _ := p.tokens.PeekPeekToken()
	if !afterGen.IsOther("R") {
		return object.Integer(n), nil
	}

	_, _ = p.tokens.NextToken() // consume generation
	_, _ = p.tokens.NextToken() // consume "R"
	if n < 0 || gen < 0 {
		return nil, fmt.Errorf("objparser: invalid reference %d %d R", n, gen)
	}
	return object.Reference{Number: uint32(n), Generation: uint16(gen)}, nil
}

// ParseIndirect parses "N G obj <object> endobj", returning the object
// number, generation, and parsed value. Callers that only need the header
// use ParseIndirectHeader.
func ParseIndirect(data []byte, lenient bool) (number uint32, generation uint16, value object.Object, err error) {
	p := New(data)
	p.Lenient = lenient
	return p.ParseIndirect()
}

// ParseIndirect reads "N G obj <object> endobj" starting at the current
// position. For a stream it stops at the start of the stream body and
// does not look for "endobj".
func (p *Parser) ParseIndirect() (number uint32, generation uint16, value object.Object, err error) {
	n, g, err := p.parseIndirectHeader()
	if err != nil {
		return 0, 0, nil, err
	}

	value, err = p.ParseObject()
	if err != nil {
		return n, g, nil, fmt.Errorf("objparser: object %d %d: %w", n, g, err)
	}
	if _, isStream := value.(object.Stream); isStream {
		return n, g, value, nil
	}

	tk, err := p.tokens.NextToken()
	if err != nil {
		return n, g, value, err
	}
	if !tk.IsOther("endobj") && !p.Lenient {
		return n, g, value, fmt.Errorf("objparser: object %d %d: expected endobj, got %v", n, g, tk)
	}
	return n, g, value, nil
}

// ParseIndirectHeader parses "N G obj" and returns a Parser positioned
// right after it, for callers (xref) that cannot assume "endobj"
// immediately follows the object value, as is the case for streams whose
// body must be located via /Length before "endstream endobj" is reached.
func ParseIndirectHeader(data []byte) (number uint32, generation uint16, p *Parser, err error) {
	p = New(data)
	number, generation, err = p.parseIndirectHeader()
	return number, generation, p, err
}

func (p *Parser) parseIndirectHeader() (number uint32, generation uint16, err error) {
	tk, err := p.tokens.NextToken()
	if err != nil {
		return 0, 0, err
	}
	n, err := tk.Int()
	if tk.Kind != tokenizer.Integer || err != nil || n < 0 {
		return 0, 0, errors.New("objparser: missing object number")
	}

	tk, err = p.tokens.NextToken()
	if err != nil {
		return 0, 0, err
	}
	g, err := tk.Int()
	if tk.Kind != tokenizer.Integer || err != nil || g < 0 {
		return 0, 0, errors.New("objparser: missing generation number")
	}

	tk, err = p.tokens.NextToken()
	if err != nil {
		return 0, 0, err
	}
	if !tk.IsOther("obj") {
		return 0, 0, fmt.Errorf("objparser: expected \"obj\", got %v", tk)
	}
	return uint32(n), uint16(g), nil
}

// StreamBodyOffset returns the file offset where the payload following
// "<< ... >> stream" starts, for a Stream whose Source.Kind is
// object.SourceFile. It exists so callers that already parsed the
// dictionary via ParseObject can read the raw bytes themselves once
// /Length has been resolved.
func StreamBodyOffset(s object.Stream) (int64, bool) {
	if s.Source.Kind != object.SourceFile {
		return 0, false
	}
	return s.Source.Offset, true
}
