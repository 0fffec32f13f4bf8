package filters

import (
	"fmt"

	"github.com/corvuspdf/engine/object"
)

// Resolver dereferences an indirect object, following spec.md §4.1; xref
// streams and inline images instead pass a resolver that returns its
// argument unchanged, since their /Filter and /DecodeParms entries must be
// direct (PDF 1.7 §7.5.8.2).
type Resolver func(object.Object) (object.Object, error)

// direct is the Resolver used where the spec forbids indirect references.
func direct(o object.Object) (object.Object, error) { return o, nil }

// FromDict builds the filter chain named by dict's /Filter and
// /DecodeParms entries, resolving indirect references through resolve.
// A nil /Filter yields an empty, valid chain.
func FromDict(dict object.Dictionary, resolve Resolver) ([]Filter, error) {
	filterObj, _ := dict.Get("Filter")
	filterObj, err := resolve(filterObj)
	if err != nil {
		return nil, err
	}
	if filterObj == nil {
		return nil, nil
	}

	var names object.Array
	switch v := filterObj.(type) {
	case object.Name:
		names = object.Array{v}
	case object.Array:
		names = v
	default:
		return nil, fmt.Errorf("filters: invalid /Filter value %T", filterObj)
	}

	out := make([]Filter, 0, len(names))
	for _, n := range names {
		n, err = resolve(n)
		if err != nil {
			return nil, err
		}
		name, ok := object.AsName(n)
		if !ok {
			return nil, fmt.Errorf("filters: /Filter array entry is not a name")
		}
		out = append(out, Filter{Name: string(name)})
	}

	parmsObj, _ := dict.Get("DecodeParms")
	parmsObj, err = resolve(parmsObj)
	if err != nil {
		return nil, err
	}
	switch p := parmsObj.(type) {
	case nil:
	case object.Array:
		if len(p) != len(out) {
			return nil, fmt.Errorf("filters: /DecodeParms array length %d != filter count %d", len(p), len(out))
		}
		for i, parm := range p {
			parm, err = resolve(parm)
			if err != nil {
				return nil, err
			}
			out[i].Params = paramsFromObject(parm)
		}
	case object.Dictionary:
		if len(out) != 1 {
			return nil, fmt.Errorf("filters: /DecodeParms as a single dict requires exactly one filter, got %d", len(out))
		}
		out[0].Params = paramsFromObject(p)
	default:
		return nil, fmt.Errorf("filters: invalid /DecodeParms value %T", parmsObj)
	}

	return out, nil
}

// FromDictDirect is FromDict with a no-op resolver, for contexts where
// indirect references are not legal (xref streams, object stream prologs).
func FromDictDirect(dict object.Dictionary) ([]Filter, error) {
	return FromDict(dict, direct)
}

func paramsFromObject(o object.Object) map[string]int {
	d, ok := object.AsDictionary(o)
	if !ok {
		return nil
	}
	out := make(map[string]int, d.Len())
	d.Range(func(key object.Name, value object.Object) {
		switch v := value.(type) {
		case object.Integer:
			out[string(key)] = int(v)
		case object.Boolean:
			if v {
				out[string(key)] = 1
			} else {
				out[string(key)] = 0
			}
		}
	})
	return out
}
