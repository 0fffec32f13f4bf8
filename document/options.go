// Package document assembles package xref's cross-reference table and
// package objparser's object parser into the Document type spec.md §3
// describes: the typed root that owns the byte source, the xref, and a
// bounded object cache, and answers get_object(num, gen) on demand.
//
// Grounded on the teacher's reader/file package (context/xRefTable), with
// the cache made an explicit bounded LRU per spec.md §4.2 rather than the
// teacher's unbounded map.
package document

// ParseOptions controls how a Document tolerates malformed input
// (spec.md §4.1 "Lenient mode", §6 "Environment / config").
type ParseOptions struct {
	LenientSyntax    bool
	CollectWarnings  bool
	MaxRecoveryBytes int64
	StopOnFirstError bool
}

// DefaultParseOptions matches the teacher's default posture: lenient
// enough to open real-world files, warnings discarded unless asked for.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{LenientSyntax: true, CollectWarnings: false}
}

// MemoryOptions controls caching and loading strategy (spec.md §4.2
// "Memory options").
type MemoryOptions struct {
	CacheSize                    int
	LazyLoading                  bool
	MemoryMapping                bool
	MaxStreamSizeForInlineDecode int64
}

// DefaultMemoryOptions is a reasonable default for desktop-sized
// documents: lazy loading, a few thousand cached objects, no mmap (this
// module keeps the whole source in memory, see Document.data).
func DefaultMemoryOptions() MemoryOptions {
	return MemoryOptions{CacheSize: 4096, LazyLoading: true, MaxStreamSizeForInlineDecode: 1 << 20}
}

// Warning is a non-fatal condition encountered while opening or resolving
// (spec.md §6 "Warnings ... carry the same kinds with a recovered: true
// flag").
type Warning struct {
	Kind      string
	Message   string
	Recovered bool
}
