package xref

import (
	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/objparser"
	"github.com/corvuspdf/engine/tokenizer"
)

// recoverByScan rebuilds table and trailer by scanning the whole file for
// "N G obj" headers and "trailer" dictionaries, ignoring whatever the
// xref table/streams claim. This is the last resort for a file whose
// cross-reference chain cannot be trusted (spec.md §4.2 "Recovery"),
// grounded on the teacher's bypassXrefSection in reader/file/read.go,
// adapted to scan an in-memory buffer with the tokenizer directly instead
// of a line-oriented reader.
func recoverByScan(data []byte, table *Table, trailer *Trailer) error {
	var trailerDicts []object.Dictionary
	var fallbackRoot *object.Reference

	tk := tokenizer.New(data)
	for {
		startPos := tk.CurrentPosition()
		first, err := tk.NextToken()
		if err != nil || first.Kind == tokenizer.EOF {
			break
		}

		if first.IsOther("trailer") {
			p := objparser.NewFromTokenizer(tk)
			obj, err := p.ParseObject()
			if err == nil {
				if d, ok := object.AsDictionary(obj); ok {
					trailerDicts = append(trailerDicts, d)
				}
				tk.SetPosition(p.Position())
			}
			continue
		}

		if first.Kind != tokenizer.Integer {
			continue
		}
		n, err := first.Int()
		if err != nil || n < 0 {
			continue
		}

		second, err := tk.PeekToken()
		if err != nil || second.Kind != tokenizer.Integer {
			continue
		}
		gen, err := second.Int()
		if err != nil || gen < 0 {
			continue
		}

		third, err := tk.PeekPeekToken()
		if err != nil || !third.IsOther("obj") {
			continue
		}

		_, _ = tk.NextToken() // consume generation
		_, _ = tk.NextToken() // consume "obj"

		table.set(uint32(n), Entry{Kind: KindInUse, Offset: int64(startPos), Generation: uint16(gen)})

		// Opportunistically remember a Catalog, in case no trailer
		// dictionary is ever found (an xref-stream-only file whose
		// streams are themselves unparsable).
		p := objparser.NewFromTokenizer(tk)
		obj, err := p.ParseObject()
		if err == nil {
			if d, ok := object.AsDictionary(obj); ok {
				if t, ok := d.Get("Type"); ok {
					if name, ok := object.AsName(t); ok && name == "Catalog" {
						ref := object.Reference{Number: uint32(n), Generation: uint16(gen)}
						fallbackRoot = &ref
					}
				}
			}
			tk.SetPosition(p.Position())
		}
	}

	for i := len(trailerDicts) - 1; i >= 0; i-- {
		trailer.merge(trailerDicts[i])
	}
	if !trailer.HasRoot && fallbackRoot != nil {
		trailer.Root, trailer.HasRoot = *fallbackRoot, true
	}
	if trailer.Size == 0 {
		trailer.Size = len(table.entries)
	}
	return nil
}
