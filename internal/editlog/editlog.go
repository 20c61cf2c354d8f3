// Package editlog keeps the undo/redo history for row edits. Entries
// are a closed set: a single-row edit, or a batch covering every row a
// replace-all or import actually changed, reverted as one unit.
package editlog

import "github.com/rs/zerolog/log"

// DefaultLimit bounds each stack. Oldest entries are evicted silently
// once the limit is reached; losing undo history past a hundred steps
// is an accepted trade.
const DefaultLimit = 100

// BatchKind says which compound operation produced a Batch entry.
type BatchKind int

const (
	ReplaceAll BatchKind = iota
	Import
)

func (k BatchKind) String() string {
	if k == Import {
		return "import"
	}
	return "replace-all"
}

// Entry is one undoable action.
type Entry interface{ entry() }

// Single records one row edit.
type Single struct {
	Row string
	Old string
	New string
}

// Batch records a compound edit over many rows at once. Old and New
// hold the display text before and after, keyed by row; rows whose
// value did not change are never included.
type Batch struct {
	Kind BatchKind
	Old  map[string]string
	New  map[string]string
}

func (Single) entry() {}
func (Batch) entry()  {}

// ApplyFunc writes a display value back to a live row. It fails when
// the row no longer exists or can no longer be updated.
type ApplyFunc func(row, display string) error

// Result reports how an undo or redo went. Failed rows were skipped;
// the rest of the entry was still applied.
type Result struct {
	Applied int
	Failed  []string
}

// Log is a pair of bounded stacks. It is not safe for concurrent use;
// all mutation happens on the single interaction thread.
type Log struct {
	limit int
	undo  []Entry
	redo  []Entry
}

// New creates a Log holding at most limit entries per stack.
func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Record pushes a new action onto the undo stack and invalidates any
// redo history: once the user edits again, the old future is gone.
func (l *Log) Record(e Entry) {
	l.undo = push(l.undo, e, l.limit)
	l.redo = nil
}

// CanUndo reports whether an undo step is available.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Depth returns the current undo and redo stack sizes.
func (l *Log) Depth() (undo, redo int) { return len(l.undo), len(l.redo) }

// Clear drops both stacks. Called after a successful save: there is no
// undoing past a persisted checkpoint.
func (l *Log) Clear() {
	l.undo = nil
	l.redo = nil
}

// Undo reverts the most recent entry through apply. Rows that fail are
// skipped and reported; whatever was successfully reverted is pushed
// onto the redo stack so the step remains re-doable. Returns false on
// an empty stack (a no-op, not an error).
func (l *Log) Undo(apply ApplyFunc) (*Result, bool) {
	if len(l.undo) == 0 {
		return nil, false
	}
	e := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]

	res, inverse := applyEntry(e, apply, false)
	if inverse != nil {
		l.redo = push(l.redo, inverse, l.limit)
	}
	return res, true
}

// Redo re-applies the most recently undone entry, symmetrically to
// Undo.
func (l *Log) Redo(apply ApplyFunc) (*Result, bool) {
	if len(l.redo) == 0 {
		return nil, false
	}
	e := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]

	res, inverse := applyEntry(e, apply, true)
	if inverse != nil {
		l.undo = push(l.undo, inverse, l.limit)
	}
	return res, true
}

// applyEntry applies one direction of an entry and returns the entry to
// push onto the opposite stack, restricted to the rows that actually
// took the change.
func applyEntry(e Entry, apply ApplyFunc, forward bool) (*Result, Entry) {
	res := &Result{}
	switch e := e.(type) {
	case Single:
		value := e.Old
		if forward {
			value = e.New
		}
		if err := apply(e.Row, value); err != nil {
			log.Warn().Err(err).Str("row", e.Row).Msg("Undo/redo skipped row")
			res.Failed = append(res.Failed, e.Row)
			return res, nil
		}
		res.Applied = 1
		return res, e
	case Batch:
		source := e.Old
		if forward {
			source = e.New
		}
		applied := make(map[string]bool, len(source))
		for row, value := range source {
			if err := apply(row, value); err != nil {
				log.Warn().Err(err).Str("row", row).Str("op", e.Kind.String()).Msg("Undo/redo skipped row")
				res.Failed = append(res.Failed, row)
				continue
			}
			applied[row] = true
			res.Applied++
		}
		if len(applied) == 0 {
			return res, nil
		}
		inverse := Batch{
			Kind: e.Kind,
			Old:  make(map[string]string, len(applied)),
			New:  make(map[string]string, len(applied)),
		}
		for row := range applied {
			inverse.Old[row] = e.Old[row]
			inverse.New[row] = e.New[row]
		}
		return res, inverse
	}
	return res, nil
}

func push(stack []Entry, e Entry, limit int) []Entry {
	stack = append(stack, e)
	if len(stack) > limit {
		stack = stack[1:]
	}
	return stack
}
