package pdfwriter

import (
	"fmt"
	"sort"

	"github.com/corvuspdf/engine/document"
	"github.com/corvuspdf/engine/object"
)

// FromDocument copies every live object of an opened document into a
// fresh Writer, resolving each stream's bytes to SourceMemory so the
// result can be serialized, and renumbering objects densely from 1
// (spec.md §4.6 "Round-trip: open a file, write it back out, and
// reopen the result with no loss of pages, metadata, or extracted
// text"). It preserves original object numbers when doc has no gaps in
// its number space below the original Size, since that keeps the
// output closer to the source for easier diffing; where the original
// table is sparse (free objects never emitted), the written object
// numbers shift down to avoid gaps classical xref tables must otherwise
// mark free.
func FromDocument(doc *document.Document) (w *Writer, root object.Reference, info *object.Reference, err error) {
	w = NewWriter()

	numbers := doc.ObjectNumbers()
	// Allocate in original order so the output stays close to source
	// order, which helps anyone diffing before/after a round trip.
	sortedNumbers := append([]uint32(nil), numbers...)
	sort.Slice(sortedNumbers, func(i, j int) bool { return sortedNumbers[i] < sortedNumbers[j] })

	direct := make(map[uint32]object.Object, len(sortedNumbers))
	for _, n := range sortedNumbers {
		obj, derr := doc.GetObject(n, 0)
		if derr != nil {
			return nil, object.Reference{}, nil, fmt.Errorf("pdfwriter: resolving object %d: %w", n, derr)
		}
		direct[n] = obj
	}

	renumber := make(map[uint32]uint32, len(sortedNumbers))
	for _, n := range sortedNumbers {
		// Object-stream and xref-stream containers (PDF 1.7 §7.5.7,
		// §7.5.8) are the ones this rewrite flattens: every object they
		// held now has its own top-level entry above, so the container
		// itself is now unreferenced and would only be dead weight in
		// the rewritten file.
		if isContainerObject(direct[n]) {
			continue
		}
		renumber[n] = w.Alloc().Number
	}

	for _, n := range sortedNumbers {
		if _, keep := renumber[n]; !keep {
			continue
		}
		rewritten, rerr := rewriteRefs(direct[n], renumber)
		if rerr != nil {
			return nil, object.Reference{}, nil, rerr
		}
		if stream, ok := rewritten.(object.Stream); ok {
			resolved, serr := resolveStreamSource(doc, stream)
			if serr != nil {
				return nil, object.Reference{}, nil, serr
			}
			rewritten = resolved
		}
		w.Set(object.Reference{Number: renumber[n]}, rewritten)
	}

	trailer := doc.Trailer()
	if !trailer.HasRoot {
		return nil, object.Reference{}, nil, fmt.Errorf("pdfwriter: source document has no /Root")
	}
	root = object.Reference{Number: renumber[trailer.Root.Number]}
	if trailer.Info != nil {
		if newNum, ok := renumber[trailer.Info.Number]; ok {
			ref := object.Reference{Number: newNum}
			info = &ref
		}
	}
	return w, root, info, nil
}

// resolveStreamSource materializes a stream's raw (still filtered)
// bytes into SourceMemory, since a file-offset source only makes sense
// relative to the original document's backing bytes.
func resolveStreamSource(doc *document.Document, stream object.Stream) (object.Stream, error) {
	if stream.Source.Kind == object.SourceMemory {
		return stream, nil
	}
	raw, err := doc.RawStreamBytes(stream)
	if err != nil {
		return stream, err
	}
	stream.Source = object.StreamSource{Kind: object.SourceMemory, Bytes: raw}
	return stream, nil
}

// rewriteRefs returns a deep copy of o with every Reference renumbered
// per renumber, so the rewritten object graph is internally consistent
// under its new, densely packed object numbers.
func rewriteRefs(o object.Object, renumber map[uint32]uint32) (object.Object, error) {
	switch v := o.(type) {
	case object.Reference:
		newNum, ok := renumber[v.Number]
		if !ok {
			return object.Null{}, nil
		}
		return object.Reference{Number: newNum}, nil
	case object.Array:
		out := make(object.Array, len(v))
		for i, e := range v {
			rewritten, err := rewriteRefs(e, renumber)
			if err != nil {
				return nil, err
			}
			out[i] = rewritten
		}
		return out, nil
	case object.Dictionary:
		out := object.NewDictionary()
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			rewritten, err := rewriteRefs(val, renumber)
			if err != nil {
				return nil, err
			}
			out.Set(k, rewritten)
		}
		return out, nil
	case object.Stream:
		dict, err := rewriteRefs(v.Dict, renumber)
		if err != nil {
			return nil, err
		}
		return object.Stream{Dict: dict.(object.Dictionary), Source: v.Source}, nil
	default:
		return o, nil
	}
}

// isContainerObject reports whether o is an object-stream or xref-stream
// container (PDF 1.7 §7.5.7 /Type /ObjStm, §7.5.8 /Type /XRef), which
// FromDocument flattens rather than copies verbatim.
func isContainerObject(o object.Object) bool {
	stream, ok := object.AsStream(o)
	if !ok {
		return false
	}
	typ, ok := stream.Dict.Get("Type")
	if !ok {
		return false
	}
	name, ok := object.AsName(typ)
	return ok && (name == "ObjStm" || name == "XRef")
}
