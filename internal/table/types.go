// Package table loads HITMAN-style JSON string tables, extracts their
// "en" strings into flat editable records, and writes edited documents
// back out with the surrounding structure intact.
package table

import (
	"fmt"

	"locedit/internal/escape"
	"locedit/internal/jsontree"
)

// Format identifies the string-table dialect of a document.
type Format int

const (
	FormatUnknown Format = iota
	// FormatDLGE is a flat list of objects each carrying "Language" and
	// "String"; composite strings embed //(...)\\ position markers.
	FormatDLGE
	// FormatLOCR is a list of per-language blocks: each block is a list
	// whose first element tags the language and whose remaining elements
	// are {"String", "StringHash"} items.
	FormatLOCR
)

func (f Format) String() string {
	switch f {
	case FormatDLGE:
		return "DLGE"
	case FormatLOCR:
		return "LOCR"
	}
	return "UNKNOWN"
}

// Segment is one editable span of a record. Prefix is the verbatim
// position marker preceding the span (empty when the record has none)
// and is never edited or escaped. Display holds the editor-escaped text.
type Segment struct {
	RowID   string
	Prefix  string
	Display string
}

// Record is one extracted "en" string. Its locator fields address the
// leaf in the parsed tree:
//   - DLGE: Item is the index in the top-level list (Block is -1).
//   - LOCR: Block is the language block's index in the outer list and
//     Item the string item's index within that block; Hash holds the
//     compact literal of the StringHash seen at load time and must still
//     match when the record is written back.
type Record struct {
	Item     int
	Block    int
	Hash     string
	Line     int // 1-based; 0 when line recovery failed
	Baseline string
	Segments []Segment
}

// CurrentRaw reassembles the record's raw string from its segments.
func (r *Record) CurrentRaw() string {
	var out string
	for _, seg := range r.Segments {
		out += seg.Prefix + escape.ToRaw(seg.Display)
	}
	return out
}

// Dirty reports whether the record differs from its saved baseline.
func (r *Record) Dirty() bool {
	return r.CurrentRaw() != r.Baseline
}

// Document is one loaded string-table file. Root is the parsed tree,
// preserved verbatim except for the string leaves rewritten at save
// time. Records are ordered by their position in the file.
type Document struct {
	Path    string
	Format  Format
	Root    *jsontree.Node
	Records []*Record
}

// Dirty reports whether any record has unsaved changes.
func (d *Document) Dirty() bool {
	for _, r := range d.Records {
		if r.Dirty() {
			return true
		}
	}
	return false
}

// Row IDs are derived from structural position and stay fixed for the
// lifetime of a load; they double as undo keys and TSV identifiers.

func dialogueRowID(fileIdx, itemIdx, segIdx int) string {
	return fmt.Sprintf("f%d_i%d_s%d", fileIdx, itemIdx, segIdx)
}

func blockRowID(fileIdx, blockIdx, itemIdx int) string {
	return fmt.Sprintf("f%d_lb%d_si%d", fileIdx, blockIdx, itemIdx)
}
