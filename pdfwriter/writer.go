// Package pdfwriter serializes an in-memory object graph back to PDF
// file bytes (spec.md §4.6 "Authoring/rewrite"): header, body, a
// classical xref table or an xref stream, and trailer. Grounded on the
// teacher's model/writer/writer.go (the output type's offset-tracking
// WriteObject/CreateObject pattern and writeHeader/writeFooter shape),
// generalized from the teacher's one-call-site Document.Write() into a
// graph of already-built object.Object values so it can serialize
// either a rewritten document (package document's live objects, see
// rewrite.go) or a document assembled fresh through content.Builder and
// pdfmodel types.
package pdfwriter

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/encoding/unicode"

	"github.com/corvuspdf/engine/filters"
	"github.com/corvuspdf/engine/object"
)

// Options configures serialization, matching SPEC_FULL.md's
// WriterOptions: whether to emit a compact xref stream instead of a
// classical table, the claimed PDF version, and whether stream bodies
// not already filtered get Flate-compressed on the way out.
type Options struct {
	UseXRefStreams  bool
	PDFVersion      string // e.g. "1.7"; empty defaults to "1.7"
	CompressStreams bool
}

// DefaultOptions returns spec.md §4.6's literal defaults: classical
// xref, PDF 1.7, streams left as given (no surprise re-compression).
func DefaultOptions() Options {
	return Options{PDFVersion: "1.7"}
}

// Writer accumulates a renumbered object graph and serializes it.
// Grounded on the teacher's output type, but object-graph based instead
// of write-as-you-go: CreateObject/WriteObject there wrote eagerly to
// an io.Writer as the document model walked itself; here the graph is
// built first (so a rewrite can renumber and a fresh build can forward-
// reference pages from the tree root) and flushed once by WriteTo.
type Writer struct {
	objects map[uint32]object.Object
	next    uint32
}

// NewWriter returns an empty Writer; object number 0 is reserved (the
// free-list head, PDF 1.7 §7.5.4), so the first allocated object is 1.
func NewWriter() *Writer {
	return &Writer{objects: make(map[uint32]object.Object), next: 1}
}

// Alloc reserves the next object number without content, for forward
// references (e.g. a page needs its parent's number before the parent
// is itself written).
func (w *Writer) Alloc() object.Reference {
	ref := object.Reference{Number: w.next, Generation: 0}
	w.next++
	return ref
}

// Add allocates a new object number and stores o under it.
func (w *Writer) Add(o object.Object) object.Reference {
	ref := w.Alloc()
	w.objects[ref.Number] = o
	return ref
}

// Set stores o under an already-allocated reference (from Alloc),
// completing a forward reference.
func (w *Writer) Set(ref object.Reference, o object.Object) {
	w.objects[ref.Number] = o
}

var utf16Enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// EncodeTextString encodes s as a UTF-16BE PDF text string (PDF 1.7
// §7.9.2.2's "Unicode text string" form), grounded on the teacher's
// output.EncodeTextString.
func EncodeTextString(s string) (object.String, error) {
	enc, err := utf16Enc.NewEncoder().String(s)
	if err != nil {
		return object.String{}, fmt.Errorf("pdfwriter: invalid text string %q: %w", s, err)
	}
	return object.String{Bytes: []byte(enc), Form: object.Literal}, nil
}

// WriteTo serializes the accumulated object graph: header, one "N 0 obj
// ... endobj" per live object, then a classical xref table or xref
// stream per opts, and the trailer/startxref/%%EOF footer.
func (w *Writer) WriteTo(dst io.Writer, opts Options, root object.Reference, info *object.Reference, id object.Array) error {
	if opts.PDFVersion == "" {
		opts.PDFVersion = "1.7"
	}

	cw := &countingWriter{w: dst}
	writeHeader(cw, opts.PDFVersion)

	numbers := make([]uint32, 0, len(w.objects))
	for n := range w.objects {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	offsets := make(map[uint32]int64, len(numbers))
	maxNum := uint32(0)
	for _, n := range numbers {
		if n > maxNum {
			maxNum = n
		}
		offsets[n] = cw.written
		if err := writeObjectBody(cw, n, w.objects[n], opts); err != nil {
			return err
		}
	}

	if opts.UseXRefStreams {
		return writeXRefStream(cw, numbers, offsets, maxNum, root, info, id)
	}
	return writeClassicXref(cw, maxNum, offsets, root, info, id)
}

func writeHeader(w io.Writer, version string) {
	fmt.Fprintf(w, "%%PDF-%s\n", version)
	// Per PDF 1.7 §7.5.2, a binary file's header must be followed by a
	// comment line with at least four bytes >= 128, so naive text tools
	// treat the file as binary.
	w.Write([]byte{'%', 200, 200, 200, 200, '\n'})
}

func writeObjectBody(w *countingWriter, num uint32, o object.Object, opts Options) error {
	fmt.Fprintf(w, "%d 0 obj\n", num)
	if stream, ok := o.(object.Stream); ok {
		data, dict, err := prepareStream(stream, opts)
		if err != nil {
			return fmt.Errorf("pdfwriter: object %d: %w", num, err)
		}
		dict.Set("Length", object.Integer(len(data)))
		var buf bytes.Buffer
		object.Write(&buf, dict)
		w.Write(buf.Bytes())
		w.Write([]byte("\nstream\n"))
		w.Write(data)
		w.Write([]byte("\nendstream"))
	} else {
		var buf bytes.Buffer
		object.Write(&buf, o)
		w.Write(buf.Bytes())
	}
	w.Write([]byte("\nendobj\n"))
	return nil
}

// prepareStream returns the bytes to place in the stream body and the
// (possibly adjusted) dictionary to write: if opts.CompressStreams and
// the stream carries no /Filter yet, its in-memory bytes are
// Flate-encoded and /Filter is set; otherwise its bytes are written as
// already stored (spec.md §4.6: "authoring never silently recompresses
// a stream that already declares a filter chain").
func prepareStream(stream object.Stream, opts Options) ([]byte, object.Dictionary, error) {
	dict := stream.Dict.Clone().(object.Dictionary)
	if stream.Source.Kind != object.SourceMemory {
		return nil, dict, fmt.Errorf("stream source must be resolved to memory before writing")
	}
	data := stream.Source.Bytes
	if opts.CompressStreams {
		if _, has := dict.Get("Filter"); !has {
			encoded, err := filters.Encode("FlateDecode", data, nil)
			if err != nil {
				return nil, dict, err
			}
			dict.Set("Filter", object.Name("FlateDecode"))
			data = encoded
		}
	}
	return data, dict, nil
}

func writeClassicXref(w *countingWriter, maxNum uint32, offsets map[uint32]int64, root object.Reference, info *object.Reference, id object.Array) error {
	xrefOffset := w.written
	var b bytes.Buffer
	b.WriteString("xref\n")
	fmt.Fprintf(&b, "0 %d\n", maxNum+1)
	b.WriteString("0000000000 65535 f \n")
	for n := uint32(1); n <= maxNum; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&b, "%010d 00000 n \n", off)
		} else {
			b.WriteString("0000000000 65535 f \n")
		}
	}
	b.WriteString("trailer\n")
	writeTrailerDict(&b, int(maxNum)+1, root, info, id)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "startxref\n%d\n%%%%EOF", xrefOffset)
	_, err := w.Write(b.Bytes())
	return err
}

func writeTrailerDict(b *bytes.Buffer, size int, root object.Reference, info *object.Reference, id object.Array) {
	dict := object.NewDictionary()
	dict.Set("Size", object.Integer(size))
	dict.Set("Root", root)
	if info != nil {
		dict.Set("Info", *info)
	}
	if id != nil {
		dict.Set("ID", id)
	}
	object.Write(b, dict)
}

type countingWriter struct {
	w       io.Writer
	written int64
	err     error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.written += int64(n)
	if err != nil {
		c.err = err
	}
	return n, err
}

