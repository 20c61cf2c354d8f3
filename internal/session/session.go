// Package session owns one editing session: the loaded documents, a row
// index keyed by stable row IDs, the undo/redo log, and a search cursor.
// All mutation funnels through Apply so the edit log sees every change.
package session

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog/log"

	"locedit/internal/editlog"
	"locedit/internal/jsontree"
	"locedit/internal/table"
	"locedit/internal/transfer"
)

// rowRef resolves a row ID to its live segment.
type rowRef struct {
	doc *table.Document
	rec *table.Record
	seg int
}

// RowView is a read-only snapshot of one row for display.
type RowView struct {
	ID      string
	File    string
	Line    int
	Prefix  string
	Display string
	Dirty   bool
}

// Session is not safe for concurrent use; all interaction happens on a
// single goroutine, matching the editor's command loop.
type Session struct {
	InputDir string

	docs   []*table.Document
	rows   map[string]*rowRef
	order  []string
	log    *editlog.Log
	cursor searchCursor
}

// Load builds a session from every table file under dir.
func Load(ctx context.Context, dir string, undoLimit int) (*Session, *table.LoadSummary, error) {
	docs, sum, err := table.LoadFolder(ctx, dir)
	if err != nil {
		return nil, nil, err
	}

	s := &Session{
		InputDir: dir,
		docs:     docs,
		rows:     make(map[string]*rowRef),
		log:      editlog.New(undoLimit),
	}
	for _, doc := range docs {
		for _, rec := range doc.Records {
			for segIdx, seg := range rec.Segments {
				s.rows[seg.RowID] = &rowRef{doc: doc, rec: rec, seg: segIdx}
				s.order = append(s.order, seg.RowID)
			}
		}
	}
	return s, sum, nil
}

// RowIDs returns every row ID in file order.
func (s *Session) RowIDs() []string { return s.order }

// Row returns a snapshot of one row.
func (s *Session) Row(id string) (RowView, bool) {
	ref, ok := s.rows[id]
	if !ok {
		return RowView{}, false
	}
	seg := ref.rec.Segments[ref.seg]
	return RowView{
		ID:      id,
		File:    ref.doc.Path,
		Line:    ref.rec.Line,
		Prefix:  seg.Prefix,
		Display: seg.Display,
		Dirty:   ref.rec.Dirty(),
	}, true
}

// Dirty reports whether any loaded document has unsaved changes.
func (s *Session) Dirty() bool {
	for _, doc := range s.docs {
		if doc.Dirty() {
			return true
		}
	}
	return false
}

// Documents exposes the loaded set, primarily for saving.
func (s *Session) Documents() []*table.Document { return s.docs }

// apply writes a display value to a row without touching the edit log.
// It is the callback handed to undo/redo.
func (s *Session) apply(id, display string) error {
	ref, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("unknown row %s", id)
	}
	ref.rec.Segments[ref.seg].Display = display
	return nil
}

// Edit sets a row's display text and records the step. Setting a row to
// its current value is a no-op and leaves the history untouched.
func (s *Session) Edit(id, display string) error {
	ref, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("unknown row %s", id)
	}
	old := ref.rec.Segments[ref.seg].Display
	if old == display {
		return nil
	}
	ref.rec.Segments[ref.seg].Display = display
	s.log.Record(editlog.Single{Row: id, Old: old, New: display})
	return nil
}

// Undo reverts the most recent step. ok is false when there is nothing
// to undo.
func (s *Session) Undo() (*editlog.Result, bool) { return s.log.Undo(s.apply) }

// Redo re-applies the most recently undone step.
func (s *Session) Redo() (*editlog.Result, bool) { return s.log.Redo(s.apply) }

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.log.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.log.CanRedo() }

// Save writes every document to outDir. A save that persisted at least
// one file is a checkpoint: the undo and redo stacks are cleared. A
// pass where nothing reached disk keeps the history intact, since the
// edits it describes are still unpersisted.
func (s *Session) Save(ctx context.Context, outDir string) (*table.SaveSummary, error) {
	sum, err := table.SaveAll(ctx, s.docs, outDir)
	if err != nil {
		return sum, err
	}
	if sum.FilesSaved > 0 {
		s.log.Clear()
	}
	return sum, nil
}

// searchTerm compiles a case-insensitive literal matcher.
func searchTerm(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
}

type searchCursor struct {
	term    string
	matches []string
	pos     int
}

// Find starts a new search over the current row texts and positions the
// cursor on the first match. Matching is a case-insensitive literal
// substring test on the display text.
func (s *Session) Find(term string) (string, bool) {
	s.cursor = searchCursor{term: term, matches: s.FindAll(term)}
	if len(s.cursor.matches) == 0 {
		return "", false
	}
	return s.cursor.matches[0], true
}

// FindAll returns every matching row ID in file order.
func (s *Session) FindAll(term string) []string {
	if term == "" {
		return nil
	}
	re := searchTerm(term)
	var matches []string
	for _, id := range s.order {
		ref := s.rows[id]
		if re.MatchString(ref.rec.Segments[ref.seg].Display) {
			matches = append(matches, id)
		}
	}
	return matches
}

// Next advances the cursor, wrapping past the last match.
func (s *Session) Next() (string, bool) {
	if len(s.cursor.matches) == 0 {
		return "", false
	}
	s.cursor.pos = (s.cursor.pos + 1) % len(s.cursor.matches)
	return s.cursor.matches[s.cursor.pos], true
}

// Prev steps the cursor back, wrapping before the first match.
func (s *Session) Prev() (string, bool) {
	if len(s.cursor.matches) == 0 {
		return "", false
	}
	s.cursor.pos = (s.cursor.pos - 1 + len(s.cursor.matches)) % len(s.cursor.matches)
	return s.cursor.matches[s.cursor.pos], true
}

// SearchTerm returns the active search term, if any.
func (s *Session) SearchTerm() string { return s.cursor.term }

// Current returns the row under the search cursor.
func (s *Session) Current() (string, bool) {
	if len(s.cursor.matches) == 0 {
		return "", false
	}
	return s.cursor.matches[s.cursor.pos], true
}

// ReplaceCurrent rewrites the search term inside the row under the
// cursor and records a single undoable step. It reports false when no
// search is active or the row no longer contains the term.
func (s *Session) ReplaceCurrent(replacement string) (string, bool) {
	id, ok := s.Current()
	if !ok {
		return "", false
	}
	ref := s.rows[id]
	re := searchTerm(s.cursor.term)
	old := ref.rec.Segments[ref.seg].Display
	updated := re.ReplaceAllLiteralString(old, replacement)
	if updated == old {
		return id, false
	}
	if err := s.Edit(id, updated); err != nil {
		return id, false
	}
	return id, true
}

// ReplaceAll rewrites every occurrence of term across all rows as one
// undoable batch. Rows the replacement leaves unchanged are excluded
// from the batch. Returns the number of rows changed.
func (s *Session) ReplaceAll(term, replacement string) int {
	if term == "" {
		return 0
	}
	re := searchTerm(term)
	batch := editlog.Batch{
		Kind: editlog.ReplaceAll,
		Old:  make(map[string]string),
		New:  make(map[string]string),
	}
	for _, id := range s.order {
		ref := s.rows[id]
		old := ref.rec.Segments[ref.seg].Display
		updated := re.ReplaceAllLiteralString(old, replacement)
		if updated == old {
			continue
		}
		ref.rec.Segments[ref.seg].Display = updated
		batch.Old[id] = old
		batch.New[id] = updated
	}
	if len(batch.New) == 0 {
		return 0
	}
	s.log.Record(batch)
	log.Info().Str("term", term).Int("rows", len(batch.New)).Msg("Replace-all applied")
	return len(batch.New)
}

// PendingDiff renders a unified diff of every dirty document against
// its loaded state, in the shape the files would take on disk.
func (s *Session) PendingDiff() (string, error) {
	var out string
	for _, doc := range s.docs {
		if !doc.Dirty() {
			continue
		}
		before := jsontree.Encode(doc.Root)
		after, _, _ := table.Render(doc)
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(before)),
			B:        difflib.SplitLines(string(after)),
			FromFile: doc.Path + " (saved)",
			ToFile:   doc.Path + " (pending)",
			Context:  3,
		})
		if err != nil {
			return "", fmt.Errorf("diff %s: %w", doc.Path, err)
		}
		out += text
	}
	return out, nil
}

// ExportTSV writes every row to w in transfer format.
func (s *Session) ExportTSV(w io.Writer, appVersion string) error {
	rows := make([]transfer.Row, 0, len(s.order))
	for _, id := range s.order {
		ref := s.rows[id]
		rows = append(rows, transfer.Row{ID: id, Display: ref.rec.Segments[ref.seg].Display})
	}
	return transfer.Export(w, rows, transfer.Metadata{
		SourceFolder: s.InputDir,
		AppVersion:   appVersion,
	})
}

// ImportReport summarizes a TSV import.
type ImportReport struct {
	Updated int
	// Skipped lists rows that could not be applied: unknown IDs plus
	// lines the parser rejected.
	Skipped []string
	// VersionMismatch is set when the file was exported by a different
	// application version. Informational only.
	VersionMismatch bool
}

// ImportTSV applies rows from a transfer file. Unknown row IDs are
// skipped and reported; rows whose text is unchanged are ignored. All
// applied rows form one undoable batch.
func (s *Session) ImportTSV(r io.Reader, appVersion string) (*ImportReport, error) {
	rows, meta, skipped, err := transfer.Import(r)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Skipped: skipped}
	if meta.AppVersion != "" && meta.AppVersion != appVersion {
		report.VersionMismatch = true
		log.Warn().
			Str("file_version", meta.AppVersion).
			Str("app_version", appVersion).
			Msg("Transfer file was exported by a different version")
	}

	batch := editlog.Batch{
		Kind: editlog.Import,
		Old:  make(map[string]string),
		New:  make(map[string]string),
	}
	for _, row := range rows {
		ref, ok := s.rows[row.ID]
		if !ok {
			log.Warn().Str("row", row.ID).Msg("Import references unknown row")
			report.Skipped = append(report.Skipped, fmt.Sprintf("unknown row %s", row.ID))
			continue
		}
		old := ref.rec.Segments[ref.seg].Display
		if old == row.Display {
			continue
		}
		ref.rec.Segments[ref.seg].Display = row.Display
		batch.Old[row.ID] = old
		batch.New[row.ID] = row.Display
	}
	if len(batch.New) > 0 {
		s.log.Record(batch)
	}
	report.Updated = len(batch.New)
	log.Info().Int("updated", report.Updated).Int("skipped", len(report.Skipped)).Msg("Import complete")
	return report, nil
}
