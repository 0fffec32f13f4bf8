// Package xref resolves a PDF file's cross-reference information (C2 in
// spec.md): the classical xref table, cross-reference streams, hybrid
// files mixing both, /Prev chains across incremental updates, and object
// streams. It never interprets what an object means (that is package
// document); it only answers "where do the bytes for object N live".
//
// Grounded on the teacher's reader/file/xreftable.go and reader/file/read.go
// (the newer, object-stream-aware generation of the teacher's xref code).
package xref

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/objparser"
	"github.com/corvuspdf/engine/tokenizer"
)

// EntryKind discriminates the three kinds of cross-reference entry (PDF
// 1.7 §7.5.4, and xref-stream types 0/1/2 per §7.5.8.3).
type EntryKind uint8

const (
	KindFree EntryKind = iota
	KindInUse
	KindCompressed
)

// Entry locates one object's bytes.
type Entry struct {
	Kind EntryKind

	// Offset is the byte offset of "N G obj" in the source, valid when
	// Kind == KindInUse.
	Offset int64

	Generation uint16

	// StreamNumber/StreamIndex locate a compressed object inside an
	// object stream, valid when Kind == KindCompressed.
	StreamNumber uint32
	StreamIndex  int
}

// Table maps object numbers to the xref entry that locates them. The zero
// Table is not usable; use NewTable.
type Table struct {
	entries map[uint32]Entry
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table { return &Table{entries: make(map[uint32]Entry)} }

// Lookup returns the entry for objNum, if any. A missing entry is not an
// error: per §7.3.10 an indirect reference to an undefined object resolves
// to the null object, a decision left to package document.
func (t *Table) Lookup(objNum uint32) (Entry, bool) {
	e, ok := t.entries[objNum]
	return e, ok
}

// Size returns the number of distinct object numbers known to the table.
func (t *Table) Size() int { return len(t.entries) }

// Numbers returns every object number the table knows about, unordered.
func (t *Table) Numbers() []uint32 {
	out := make([]uint32, 0, len(t.entries))
	for n := range t.entries {
		out = append(out, n)
	}
	return out
}

// setIfAbsent records e for objNum unless an entry already exists. Used
// while walking the /Prev chain newest-section-first: an object number
// seen in a later (more recent) section must not be overwritten by an
// earlier one (spec.md §2 "most recent update wins").
func (t *Table) setIfAbsent(objNum uint32, e Entry) {
	if _, ok := t.entries[objNum]; ok {
		return
	}
	t.entries[objNum] = e
}

// set unconditionally overwrites the entry for objNum, used by the
// full-file recovery scan, which instead walks the file forwards so the
// last definition seen is the most recent one.
func (t *Table) set(objNum uint32, e Entry) {
	t.entries[objNum] = e
}

// Trailer holds the document-level metadata carried in the PDF trailer
// (classical "trailer" dict or merged from xref-stream dicts).
type Trailer struct {
	Root    object.Reference
	HasRoot bool
	Info    *object.Reference
	Encrypt object.Object
	ID      object.Array
	Size    int
}

// merge folds in fields from d that are not already set, matching the
// teacher's trailer.parseTrailerInfo: the first (most recent) trailer
// dict processed wins for each field, later (older) ones only fill gaps.
func (tr *Trailer) merge(d object.Dictionary) {
	if tr.Size == 0 {
		if sz, ok := d.Get("Size"); ok {
			if n, ok := object.AsNumber(sz); ok {
				tr.Size = int(n)
			}
		}
	}
	if !tr.HasRoot {
		if r, ok := d.Get("Root"); ok {
			if ref, ok := object.AsReference(r); ok {
				tr.Root, tr.HasRoot = ref, true
			}
		}
	}
	if tr.Info == nil {
		if i, ok := d.Get("Info"); ok {
			if ref, ok := object.AsReference(i); ok {
				tr.Info = &ref
			}
		}
	}
	if tr.Encrypt == nil {
		if e, ok := d.Get("Encrypt"); ok {
			tr.Encrypt = e
		}
	}
	if tr.ID == nil {
		if id, ok := d.Get("ID"); ok {
			if arr, ok := object.AsArray(id); ok {
				tr.ID = arr
			}
		}
	}
}

// Warning is a non-fatal condition surfaced while building the table
// (spec.md §6, e.g. "xref chain broken, recovered by full scan").
type Warning struct {
	Message string
}

var errNoStartXRef = errors.New("xref: no \"startxref\" keyword found")

// Build parses data's full cross-reference chain and trailer. It follows
// /Prev (and hybrid /XRefStm) links back through every incremental
// update; if the chain is broken at any point it falls back to a
// full-file recovery scan (spec.md §4.2 "Recovery").
func Build(data []byte, lenient bool) (*Table, Trailer, []Warning, error) {
	table := NewTable()
	var trailer Trailer
	var warnings []Warning

	offset, err := locateStartXRef(data)
	if err == nil {
		err = walkChain(data, offset, table, &trailer)
	}
	if err != nil {
		if !lenient {
			return nil, Trailer{}, warnings, err
		}
		warnings = append(warnings, Warning{Message: "xref chain broken (" + err.Error() + "), recovering by full scan"})
		table = NewTable()
		trailer = Trailer{}
		if rerr := recoverByScan(data, table, &trailer); rerr != nil {
			return nil, Trailer{}, warnings, rerr
		}
	}

	if !trailer.HasRoot {
		if lenient {
			warnings = append(warnings, Warning{Message: "xref: no /Root in any trailer, recovering by full scan"})
			table = NewTable()
			trailer = Trailer{}
			if rerr := recoverByScan(data, table, &trailer); rerr != nil {
				return nil, Trailer{}, warnings, rerr
			}
		}
		if !trailer.HasRoot {
			return table, trailer, warnings, errors.New("xref: no /Root entry found")
		}
	}

	return table, trailer, warnings, nil
}

// locateStartXRef finds the byte offset named by the last "startxref"
// keyword in the file (PDF 1.7 §7.5.5). Unlike the teacher, which reads a
// live io.ReadSeeker backwards in chunks, this module keeps the whole
// file in memory (see document.Document), so a single LastIndex suffices.
func locateStartXRef(data []byte) (int64, error) {
	i := bytes.LastIndex(data, []byte("startxref"))
	if i == -1 {
		return 0, errNoStartXRef
	}
	rest := data[i+len("startxref"):]
	eof := bytes.Index(rest, []byte("%%EOF"))
	if eof == -1 {
		eof = len(rest)
	}
	n, err := strconv.ParseInt(string(bytes.TrimSpace(rest[:eof])), 10, 64)
	if err != nil || n < 0 || int(n) >= len(data) {
		return 0, fmt.Errorf("xref: corrupt startxref offset: %w", err)
	}
	return n, nil
}

// walkChain follows /Prev links starting at offset, filling table and
// trailer. Each section visited is recorded to guard against a /Prev
// cycle.
func walkChain(data []byte, offset int64, table *Table, trailer *Trailer) error {
	visited := map[int64]bool{}
	for offset != 0 {
		if visited[offset] {
			return nil
		}
		visited[offset] = true

		if offset < 0 || int(offset) >= len(data) {
			return fmt.Errorf("xref: section offset %d out of range", offset)
		}

		tk := tokenizer.New(data[offset:])
		peek, err := tk.PeekToken()
		if err != nil {
			return err
		}

		var next int64
		if peek.IsOther("xref") {
			next, err = parseClassicSectionAt(data, offset, table, trailer)
		} else {
			next, err = parseXRefStreamAt(data, offset, table, trailer)
		}
		if err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// parseClassicSectionAt parses one "xref ... trailer <<...>>" section
// (PDF 1.7 §7.5.4) located at offset, recording its entries and trailer
// fields, and returns the /Prev offset (0 if none).
func parseClassicSectionAt(data []byte, offset int64, table *Table, trailer *Trailer) (int64, error) {
	tk := tokenizer.New(data[offset:])
	if _, err := tk.NextToken(); err != nil { // consume "xref"
		return 0, err
	}

	for {
		peek, err := tk.PeekToken()
		if err != nil {
			return 0, err
		}
		if peek.IsOther("trailer") {
			_, _ = tk.NextToken()
			break
		}
		if err := parseSubsection(&tk, table); err != nil {
			return 0, err
		}
	}

	p := objparser.NewFromTokenizer(tk)
	obj, err := p.ParseObject()
	if err != nil {
		return 0, fmt.Errorf("xref: trailer: %w", err)
	}
	dict, ok := object.AsDictionary(obj)
	if !ok {
		return 0, fmt.Errorf("xref: trailer is not a dictionary (got %T)", obj)
	}
	trailer.merge(dict)

	if xrefStm, ok := dict.Get("XRefStm"); ok {
		if n, ok := object.AsNumber(xrefStm); ok {
			// Hybrid-reference file (§7.5.8.4): process the hidden
			// xref stream now; its own /Prev is ignored, a rule
			// enforced by only reading its return value for entries.
			if _, err := parseXRefStreamAt(data, int64(n), table, trailer); err != nil {
				return 0, fmt.Errorf("xref: hybrid XRefStm: %w", err)
			}
		}
	}

	return prevOffset(dict), nil
}

func parseSubsection(tk *tokenizer.Tokenizer, table *Table) error {
	startTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	start, err := startTok.Int()
	if startTok.Kind != tokenizer.Integer || err != nil {
		return fmt.Errorf("xref: invalid subsection start object number")
	}

	countTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	count, err := countTok.Int()
	if countTok.Kind != tokenizer.Integer || err != nil {
		return fmt.Errorf("xref: invalid subsection object count")
	}

	for i := 0; i < count; i++ {
		offTok, err := tk.NextToken()
		if err != nil {
			return err
		}
		off, err := strconv.ParseInt(offTok.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("xref: invalid entry offset: %w", err)
		}

		genTok, err := tk.NextToken()
		if err != nil {
			return err
		}
		gen, err := genTok.Int()
		if err != nil {
			return fmt.Errorf("xref: invalid entry generation: %w", err)
		}

		typeTok, err := tk.NextToken()
		if err != nil {
			return err
		}
		if typeTok.Kind != tokenizer.Other || (typeTok.Value != "f" && typeTok.Value != "n") {
			return errors.New("xref: corrupt subsection entry type")
		}

		objNum := uint32(start + i)
		if typeTok.Value == "f" {
			table.setIfAbsent(objNum, Entry{Kind: KindFree, Generation: uint16(gen)})
			continue
		}
		if off == 0 {
			continue // in-use entry at offset 0 is a known producer bug; skip it
		}
		table.setIfAbsent(objNum, Entry{Kind: KindInUse, Offset: off, Generation: uint16(gen)})
	}
	return nil
}

// prevOffset implements offsetFromObject from the teacher: /Prev is
// specified as a direct integer, but some writers emit "N 0 R" instead.
func prevOffset(d object.Dictionary) int64 {
	v, ok := d.Get("Prev")
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case object.Integer:
		return int64(t)
	case object.Reference:
		return int64(t.Number)
	default:
		return 0
	}
}
