package editlog

import (
	"fmt"
	"testing"
)

// rowStore is a minimal apply target for exercising the log.
type rowStore map[string]string

func (s rowStore) apply(row, display string) error {
	if _, ok := s[row]; !ok {
		return fmt.Errorf("no such row %q", row)
	}
	s[row] = display
	return nil
}

func TestUndoRedoSingle(t *testing.T) {
	store := rowStore{"f0_i0_s0": "B"}
	l := New(0)
	l.Record(Single{Row: "f0_i0_s0", Old: "A", New: "B"})

	res, ok := l.Undo(store.apply)
	if !ok || res.Applied != 1 {
		t.Fatalf("undo: ok=%v res=%+v", ok, res)
	}
	if store["f0_i0_s0"] != "A" {
		t.Fatalf("after undo got %q, want A", store["f0_i0_s0"])
	}

	res, ok = l.Redo(store.apply)
	if !ok || res.Applied != 1 {
		t.Fatalf("redo: ok=%v res=%+v", ok, res)
	}
	if store["f0_i0_s0"] != "B" {
		t.Fatalf("after redo got %q, want B", store["f0_i0_s0"])
	}
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	store := rowStore{"r": "x"}
	l := New(0)
	if _, ok := l.Undo(store.apply); ok {
		t.Fatal("undo on empty stack reported ok")
	}
	if _, ok := l.Redo(store.apply); ok {
		t.Fatal("redo on empty stack reported ok")
	}
	if store["r"] != "x" {
		t.Fatalf("store mutated: %q", store["r"])
	}
}

func TestRecordClearsRedo(t *testing.T) {
	store := rowStore{"r": "c"}
	l := New(0)
	l.Record(Single{Row: "r", Old: "a", New: "b"})
	if _, ok := l.Undo(store.apply); !ok {
		t.Fatal("undo failed")
	}
	if !l.CanRedo() {
		t.Fatal("expected redo available after undo")
	}
	l.Record(Single{Row: "r", Old: "a", New: "c"})
	if l.CanRedo() {
		t.Fatal("redo stack should be cleared by a new action")
	}
}

func TestBatchUndoRevertsAllRows(t *testing.T) {
	store := rowStore{"r1": "X", "r2": "X", "r3": "keep"}
	l := New(0)
	l.Record(Batch{
		Kind: ReplaceAll,
		Old:  map[string]string{"r1": "a", "r2": "b"},
		New:  map[string]string{"r1": "X", "r2": "X"},
	})

	res, ok := l.Undo(store.apply)
	if !ok || res.Applied != 2 || len(res.Failed) != 0 {
		t.Fatalf("batch undo: ok=%v res=%+v", ok, res)
	}
	if store["r1"] != "a" || store["r2"] != "b" || store["r3"] != "keep" {
		t.Fatalf("unexpected store after batch undo: %v", store)
	}

	res, ok = l.Redo(store.apply)
	if !ok || res.Applied != 2 {
		t.Fatalf("batch redo: ok=%v res=%+v", ok, res)
	}
	if store["r1"] != "X" || store["r2"] != "X" {
		t.Fatalf("unexpected store after batch redo: %v", store)
	}
}

func TestBatchUndoSkipsMissingRows(t *testing.T) {
	// r2 vanished since the batch was recorded.
	store := rowStore{"r1": "X"}
	l := New(0)
	l.Record(Batch{
		Kind: Import,
		Old:  map[string]string{"r1": "a", "r2": "b"},
		New:  map[string]string{"r1": "X", "r2": "Y"},
	})

	res, ok := l.Undo(store.apply)
	if !ok {
		t.Fatal("undo reported empty stack")
	}
	if res.Applied != 1 || len(res.Failed) != 1 || res.Failed[0] != "r2" {
		t.Fatalf("partial batch undo: %+v", res)
	}
	if store["r1"] != "a" {
		t.Fatalf("r1 not reverted: %q", store["r1"])
	}

	// Only the reverted portion is re-doable.
	res, ok = l.Redo(store.apply)
	if !ok || res.Applied != 1 || len(res.Failed) != 0 {
		t.Fatalf("redo of partial batch: ok=%v res=%+v", ok, res)
	}
	if store["r1"] != "X" {
		t.Fatalf("r1 not re-applied: %q", store["r1"])
	}
}

func TestSingleUndoFailurePushesNothing(t *testing.T) {
	store := rowStore{}
	l := New(0)
	l.Record(Single{Row: "gone", Old: "a", New: "b"})

	res, ok := l.Undo(store.apply)
	if !ok {
		t.Fatal("undo reported empty stack")
	}
	if res.Applied != 0 || len(res.Failed) != 1 {
		t.Fatalf("failed single undo: %+v", res)
	}
	if l.CanRedo() {
		t.Fatal("nothing was reverted, redo stack must stay empty")
	}
}

func TestLimitEvictsOldest(t *testing.T) {
	store := rowStore{"r": ""}
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Record(Single{Row: "r", Old: fmt.Sprint(i), New: fmt.Sprint(i + 1)})
	}
	undo, _ := l.Depth()
	if undo != 3 {
		t.Fatalf("undo depth = %d, want 3", undo)
	}
	// Only the three most recent steps remain.
	for want := 4; want >= 2; want-- {
		if _, ok := l.Undo(store.apply); !ok {
			t.Fatal("undo failed")
		}
		if store["r"] != fmt.Sprint(want) {
			t.Fatalf("store = %q, want %d", store["r"], want)
		}
	}
	if l.CanUndo() {
		t.Fatal("evicted entries should be gone")
	}
}

func TestClearDropsBothStacks(t *testing.T) {
	store := rowStore{"r": "b"}
	l := New(0)
	l.Record(Single{Row: "r", Old: "a", New: "b"})
	l.Undo(store.apply)
	l.Record(Single{Row: "r", Old: "a", New: "c"})
	l.Clear()
	if l.CanUndo() || l.CanRedo() {
		t.Fatal("Clear left entries behind")
	}
}
