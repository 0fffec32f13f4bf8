package document

import (
	"fmt"

	"github.com/corvuspdf/engine/filters"
	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/objparser"
	"github.com/corvuspdf/engine/pdferr"
	"github.com/corvuspdf/engine/xref"
)

// Document is the typed root of an opened PDF (spec.md §3 "Document").
// It owns the backing bytes, the merged xref table, and a bounded
// object cache; every higher-level view (pdfmodel.PDFDocument,
// pdfmodel.Page, pdfmodel.Font) resolves references through it.
type Document struct {
	data []byte

	Version Version

	table     *xref.Table
	trailer   xref.Trailer
	cache     *objectCache
	warnings  []Warning
	parseOpts ParseOptions
	memOpts   MemoryOptions

	recoveryUsed bool

	objStreams map[uint32][]object.Object
	resolving  map[uint32]bool // circular-reference guard, reset per top-level call
}

// Version is the (major, minor) PDF version claimed by the file header
// (spec.md §3 "Document: version").
type Version struct{ Major, Minor int }

// headerVersion reads the "%PDF-M.m" banner from the first bytes of the
// file (PDF 1.7 §7.5.2). Grounded on the teacher's headerVersion in
// reader/file/read.go, adapted to return a structured Version instead of
// the raw "M.m" string.
func headerVersion(data []byte) (Version, bool) {
	const prefix = "%PDF-"
	if len(data) < len(prefix)+3 || string(data[:len(prefix)]) != prefix {
		return Version{}, false
	}
	rest := data[len(prefix):]
	var major, minor int
	if _, err := fmt.Sscanf(string(rest[:3]), "%d.%d", &major, &minor); err != nil {
		return Version{}, false
	}
	return Version{Major: major, Minor: minor}, true
}

// Open parses data's xref chain and trailer and returns a ready
// Document. No object bodies are read yet unless memOpts disables lazy
// loading, per spec.md §4.2's lazy/eager duality.
func Open(data []byte, parseOpts ParseOptions, memOpts MemoryOptions) (*Document, error) {
	table, trailer, warnings, err := xref.Build(data, parseOpts.LenientSyntax)
	if err != nil {
		return nil, &pdferr.StructuralError{Kind: pdferr.KindXRef, Context: "trailer", Err: err}
	}

	version, _ := headerVersion(data)

	d := &Document{
		data:       data,
		Version:    version,
		table:      table,
		trailer:    trailer,
		cache:      newObjectCache(memOpts.CacheSize),
		parseOpts:  parseOpts,
		memOpts:    memOpts,
		objStreams: make(map[uint32][]object.Object),
		resolving:  make(map[uint32]bool),
	}
	for _, w := range warnings {
		d.addWarning(Warning{Kind: "xref", Message: w.Message, Recovered: true})
		if w.Message != "" {
			d.recoveryUsed = true
		}
	}

	if !memOpts.LazyLoading {
		for _, num := range table.Numbers() {
			if _, err := d.GetObject(num, 0); err != nil && parseOpts.StopOnFirstError {
				return d, err
			}
		}
	}

	return d, nil
}

func (d *Document) addWarning(w Warning) {
	if d.parseOpts.CollectWarnings {
		d.warnings = append(d.warnings, w)
	}
}

// Warnings returns the warnings collected so far, if ParseOptions.CollectWarnings was set.
func (d *Document) Warnings() []Warning { return d.warnings }

// RecoveryUsed reports whether the xref chain was unusable and a
// full-file scan rebuilt it (spec.md §4.2 "recovery_used flag").
func (d *Document) RecoveryUsed() bool { return d.recoveryUsed }

// Trailer returns the merged trailer dictionary fields.
func (d *Document) Trailer() xref.Trailer { return d.trailer }

// CacheStats exposes the object cache's hit/miss counters.
func (d *Document) CacheStats() Stats { return d.cache.stats() }

// ObjectNumbers returns every object number the merged xref table knows
// about, unordered. Used by package pdfwriter to enumerate a document's
// live objects when rewriting a file (spec.md §4.6 "Authoring/rewrite").
func (d *Document) ObjectNumbers() []uint32 { return d.table.Numbers() }

// Resolve follows o if it is a Reference, returning the direct object it
// points to (or Null if undefined, per §7.3.10). Non-reference objects
// pass through unchanged.
func (d *Document) Resolve(o object.Object) (object.Object, error) {
	ref, ok := object.AsReference(o)
	if !ok {
		return o, nil
	}
	return d.GetObject(ref.Number, ref.Generation)
}

// GetObject implements the get_object(num, gen) contract of spec.md
// §4.2: cache lookup, xref lookup, load (direct or compressed), cache
// insert. An undefined object resolves to Null, not an error.
func (d *Document) GetObject(num uint32, gen uint16) (object.Object, error) {
	if cached, ok := d.cache.get(num); ok {
		return cached, nil
	}

	entry, ok := d.table.Lookup(num)
	if !ok {
		return object.Null{}, nil
	}

	if d.resolving[num] {
		// A malicious or cyclic graph pointed back at an object still
		// being resolved; per the teacher's resolveObjectNumber, break
		// the cycle with null rather than recursing forever.
		return object.Null{}, nil
	}
	d.resolving[num] = true
	defer delete(d.resolving, num)

	var (
		value object.Object
		err   error
	)
	switch entry.Kind {
	case xref.KindFree:
		return object.Null{}, &pdferr.StructuralError{Kind: pdferr.KindObject, Context: fmt.Sprintf("object %d", num), Err: fmt.Errorf("free object referenced")}
	case xref.KindCompressed:
		value, err = d.resolveCompressed(entry)
	default:
		value, err = d.resolveDirect(num, gen, entry)
	}
	if err != nil {
		return nil, err
	}

	d.cache.put(num, value)
	return value, nil
}

func (d *Document) resolveDirect(num uint32, gen uint16, entry xref.Entry) (object.Object, error) {
	if entry.Offset < 0 || int(entry.Offset) >= len(d.data) {
		return nil, &pdferr.StructuralError{Kind: pdferr.KindXRef, Context: fmt.Sprintf("object %d", num), Err: fmt.Errorf("offset %d out of range", entry.Offset)}
	}

	gotNum, gotGen, value, err := objparser.ParseIndirect(d.data[entry.Offset:], d.parseOpts.LenientSyntax)
	if err != nil {
		return nil, &pdferr.StructuralError{Kind: pdferr.KindObject, Context: fmt.Sprintf("object %d %d", num, gen), Err: err}
	}
	if (gotNum != num || gotGen != entry.Generation) && !d.parseOpts.LenientSyntax {
		return nil, &pdferr.StructuralError{Kind: pdferr.KindObject, Context: fmt.Sprintf("object %d %d", num, gen), Err: fmt.Errorf("header declares %d %d, xref expected %d %d", gotNum, gotGen, num, entry.Generation)}
	}
	if gotNum != num || gotGen != entry.Generation {
		d.addWarning(Warning{Kind: "object", Message: fmt.Sprintf("object %d: header/xref generation mismatch", num), Recovered: true})
	}

	stream, ok := value.(object.Stream)
	if !ok {
		return value, nil
	}
	return d.materializeStream(num, stream, entry.Offset)
}

// materializeStream resolves a lazily parsed stream's raw byte range
// using its (possibly indirect) /Length, without decoding the filters
// yet; filter decoding happens on demand in DecodedStreamBytes, which
// does not cache its result and does not consult
// MemoryOptions.MaxStreamSizeForInlineDecode.
func (d *Document) materializeStream(num uint32, stream object.Stream, objOffset int64) (object.Object, error) {
	bodyOffsetRel, ok := objparser.StreamBodyOffset(stream)
	if !ok {
		return stream, nil
	}
	bodyStart := objOffset + bodyOffsetRel

	lengthObj, _ := stream.Dict.Get("Length")
	resolvedLength, err := d.Resolve(lengthObj)
	if err != nil {
		return nil, err
	}
	length, ok := object.AsNumber(resolvedLength)
	if !ok || length < 0 || bodyStart+int64(length) > int64(len(d.data)) {
		recovered, rerr := d.recoverStreamLength(stream, bodyStart)
		if rerr != nil {
			return nil, &pdferr.StructuralError{Kind: pdferr.KindObject, Context: fmt.Sprintf("object %d", num), Err: rerr}
		}
		length = float64(recovered)
		d.addWarning(Warning{Kind: "stream", Message: fmt.Sprintf("object %d: /Length missing or wrong, recovered by scanning for endstream", num), Recovered: true})
	}

	stream.Source = object.StreamSource{Kind: object.SourceFile, Offset: bodyStart, Length: int64(length)}
	return stream, nil
}

// recoverStreamLength implements spec.md §4.1's "on mismatch in lenient
// mode, the parser scans forward for endstream": it tries each filter's
// Skipper to find the true end of the encoded data, falling back to a
// literal search for the "endstream" keyword.
func (d *Document) recoverStreamLength(stream object.Stream, bodyStart int64) (int64, error) {
	if !d.parseOpts.LenientSyntax {
		return 0, fmt.Errorf("missing or invalid /Length")
	}
	chain, ferr := filters.FromDict(stream.Dict, d.Resolve)
	if ferr == nil && len(chain) > 0 {
		if sk, ok := filters.SkipperFor(chain[0]); ok {
			if n, err := sk.Skip(d.data[bodyStart:]); err == nil {
				return int64(n), nil
			}
		}
	}
	idx := indexOf(d.data[bodyStart:], "endstream")
	if idx < 0 {
		return 0, fmt.Errorf("no /Length and no \"endstream\" found")
	}
	end := idx
	for end > 0 && (d.data[bodyStart+int64(end)-1] == '\n' || d.data[bodyStart+int64(end)-1] == '\r') {
		end--
	}
	return int64(end), nil
}

func indexOf(haystack []byte, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if string(haystack[i:i+n]) == needle {
			return i
		}
	}
	return -1
}

func (d *Document) resolveCompressed(entry xref.Entry) (object.Object, error) {
	objs, err := d.objectStream(entry.StreamNumber)
	if err != nil {
		return nil, err
	}
	if entry.StreamIndex < 0 || entry.StreamIndex >= len(objs) {
		return nil, &pdferr.StructuralError{Kind: pdferr.KindXRef, Context: fmt.Sprintf("compressed object in stream %d", entry.StreamNumber), Err: fmt.Errorf("index %d out of range (%d objects)", entry.StreamIndex, len(objs))}
	}
	return objs[entry.StreamIndex], nil
}

// objectStream decodes and parses object stream streamNum's N compressed
// objects, caching the result (spec.md §4.2 "resolve the container
// object stream ... Parse the requested object from the correct
// offset").
func (d *Document) objectStream(streamNum uint32) ([]object.Object, error) {
	if objs, ok := d.objStreams[streamNum]; ok {
		return objs, nil
	}

	raw, err := d.GetObject(streamNum, 0)
	if err != nil {
		return nil, err
	}
	stream, ok := object.AsStream(raw)
	if !ok {
		return nil, fmt.Errorf("object stream %d: not a stream", streamNum)
	}

	decoded, err := d.DecodedStreamBytes(stream)
	if err != nil {
		return nil, err
	}

	firstObj, _ := stream.Dict.Get("First")
	first, ok := object.AsNumber(firstObj)
	if !ok {
		return nil, fmt.Errorf("object stream %d: missing /First", streamNum)
	}

	prolog, err := xref.ParseObjectStreamProlog(decoded, int(first))
	if err != nil {
		return nil, err
	}

	objs := make([]object.Object, len(prolog.Numbers))
	for i := range objs {
		start, end, err := prolog.Extent(decoded, i)
		if err != nil {
			return nil, err
		}
		obj, err := objparser.ParseObject(decoded[start:end])
		if err != nil {
			return nil, fmt.Errorf("object stream %d, entry %d: %w", streamNum, i, err)
		}
		objs[i] = obj
	}

	d.objStreams[streamNum] = objs
	return objs, nil
}

// DecodedStreamBytes returns stream's fully filter-decoded payload,
// reading its raw bytes from the document's backing buffer first if
// needed (spec.md §4.3: filters applied in order, outermost first).
func (d *Document) DecodedStreamBytes(stream object.Stream) ([]byte, error) {
	var raw []byte
	switch stream.Source.Kind {
	case object.SourceDecoded:
		return stream.Source.Bytes, nil
	case object.SourceMemory:
		raw = stream.Source.Bytes
	case object.SourceFile:
		start, end := stream.Source.Offset, stream.Source.Offset+stream.Source.Length
		if start < 0 || end > int64(len(d.data)) || end < start {
			return nil, fmt.Errorf("stream body [%d:%d] out of range", start, end)
		}
		raw = d.data[start:end]
	}

	chain, err := filters.FromDict(stream.Dict, d.Resolve)
	if err != nil {
		return nil, &pdferr.FilterError{Err: err}
	}
	decoded, warnings, err := filters.Decode(chain, raw)
	if err != nil {
		return nil, &pdferr.FilterError{Err: err}
	}
	for _, w := range warnings {
		d.addWarning(Warning{Kind: "filter", Message: w.Filter + ": " + w.Message, Recovered: true})
	}
	return decoded, nil
}

// RawStreamBytes returns stream's payload exactly as stored (still
// filtered if it declares a /Filter chain), reading from the
// document's backing buffer for a file-offset source. Used by package
// pdfwriter when copying a stream object unchanged into a rewritten
// file, since re-decoding and re-encoding would be lossy for filters
// this engine only partially models (e.g. JBIG2/JPX passthrough).
func (d *Document) RawStreamBytes(stream object.Stream) ([]byte, error) {
	switch stream.Source.Kind {
	case object.SourceMemory:
		return stream.Source.Bytes, nil
	case object.SourceFile:
		start, end := stream.Source.Offset, stream.Source.Offset+stream.Source.Length
		if start < 0 || end > int64(len(d.data)) || end < start {
			return nil, fmt.Errorf("stream body [%d:%d] out of range", start, end)
		}
		return d.data[start:end], nil
	default:
		return d.DecodedStreamBytes(stream)
	}
}

// Root returns the trailer's /Root catalog dictionary.
func (d *Document) Root() (object.Dictionary, error) {
	if !d.trailer.HasRoot {
		return object.Dictionary{}, &pdferr.StructuralError{Kind: pdferr.KindObject, Context: "trailer", Err: fmt.Errorf("missing /Root")}
	}
	obj, err := d.GetObject(d.trailer.Root.Number, d.trailer.Root.Generation)
	if err != nil {
		return object.Dictionary{}, err
	}
	dict, ok := object.AsDictionary(obj)
	if !ok {
		return object.Dictionary{}, &pdferr.StructuralError{Kind: pdferr.KindObject, Context: "trailer", Err: fmt.Errorf("/Root is not a dictionary")}
	}
	return dict, nil
}

// NewVisitedSet returns an empty set for circular-reference detection
// during a single traversal (spec.md §4.2 "per-operation visited set"),
// e.g. walking the page tree's Kids/Parent links.
func NewVisitedSet() map[object.Reference]bool { return make(map[object.Reference]bool) }
