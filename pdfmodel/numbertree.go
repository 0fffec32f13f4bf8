package pdfmodel

import (
	"github.com/corvuspdf/engine/document"
	"github.com/corvuspdf/engine/object"
)

// numberTreeEntry is one leaf of a PDF number tree (PDF 1.7 §7.9.7):
// an integer key and its associated direct object.
type numberTreeEntry struct {
	Key   int
	Value object.Object
}

// walkNumberTree accumulates every /Nums entry of a number tree node
// and its /Kids, in key order. Grounded on the shape of the teacher's
// model/namestree.go DestTree.LookupTable (tree walk, accumulate into
// one map/slice), generalized from name trees to number trees since
// spec.md §4.4 needs /PageLabels rather than /Dests.
func walkNumberTree(doc *document.Document, root object.Dictionary, depth int) ([]numberTreeEntry, error) {
	if depth > 64 {
		return nil, nil // runaway /Kids cycle guard
	}

	var out []numberTreeEntry
	if numsObj, ok := root.Get("Nums"); ok {
		resolved, err := doc.Resolve(numsObj)
		if err != nil {
			return nil, err
		}
		arr, _ := object.AsArray(resolved)
		for i := 0; i+1 < len(arr); i += 2 {
			keyObj, err := doc.Resolve(arr[i])
			if err != nil {
				return nil, err
			}
			n, ok := object.AsNumber(keyObj)
			if !ok {
				continue
			}
			valObj, err := doc.Resolve(arr[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, numberTreeEntry{Key: int(n), Value: valObj})
		}
	}

	if kidsObj, ok := root.Get("Kids"); ok {
		resolved, err := doc.Resolve(kidsObj)
		if err != nil {
			return nil, err
		}
		kids, _ := object.AsArray(resolved)
		for _, k := range kids {
			kidObj, err := doc.Resolve(k)
			if err != nil {
				return nil, err
			}
			kidDict, ok := object.AsDictionary(kidObj)
			if !ok {
				continue
			}
			entries, err := walkNumberTree(doc, kidDict, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
		}
	}

	return out, nil
}
