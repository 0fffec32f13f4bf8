package object

import (
	"reflect"
	"testing"
)

func TestDictionaryOrderPreserved(t *testing.T) {
	d := NewDictionary()
	d.Set("Type", Name("Catalog"))
	d.Set("Pages", Reference{Number: 2})
	d.Set("Outlines", Null{})

	want := []Name{"Type", "Pages", "Outlines"}
	if got := d.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected key order %v, got %v", want, got)
	}

	// overwriting an existing key must not reorder it
	d.Set("Pages", Reference{Number: 3})
	if got := d.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("overwrite reordered keys: %v", got)
	}
	v, ok := d.Get("Pages")
	if !ok || v != (Reference{Number: 3}) {
		t.Errorf("expected updated value, got %v", v)
	}
}

func TestDictionaryDelete(t *testing.T) {
	d := NewDictionary()
	d.Set("A", Integer(1))
	d.Set("B", Integer(2))
	d.Set("C", Integer(3))
	d.Delete("B")
	want := []Name{"A", "C"}
	if got := d.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if _, ok := d.Get("B"); ok {
		t.Error("expected B to be gone")
	}
}

func TestDictionaryClone(t *testing.T) {
	d := NewDictionary()
	d.Set("Kids", Array{Reference{Number: 1}, Reference{Number: 2}})
	clone := d.Clone().(Dictionary)
	clone.Set("Kids", Array{Reference{Number: 9}})

	orig, _ := d.Get("Kids")
	if reflect.DeepEqual(orig, Array{Reference{Number: 9}}) {
		t.Error("clone must be independent of the original")
	}
}

func TestAsHelpers(t *testing.T) {
	if _, ok := AsNumber(Integer(4)); !ok {
		t.Error("Integer should be a number")
	}
	if _, ok := AsNumber(Real(4.5)); !ok {
		t.Error("Real should be a number")
	}
	if _, ok := AsNumber(Name("x")); ok {
		t.Error("Name should not be a number")
	}
	if _, ok := AsString(String{Bytes: []byte("hi")}); !ok {
		t.Error("String should be recognized")
	}

	s := Stream{Dict: NewDictionary()}
	s.Dict.Set("Length", Integer(0))
	if d, ok := AsDictionary(s); !ok || d.Len() != 1 {
		t.Error("AsDictionary should unwrap a Stream's dict")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := Array{String{Bytes: []byte("a")}, Integer(1)}
	b := a.Clone().(Array)
	b[0] = String{Bytes: []byte("changed")}
	if reflect.DeepEqual(a[0], b[0]) {
		t.Error("Array.Clone must deep-copy elements")
	}
}
