package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/zonetile/zonetile/internal/state"
)

func testSnapshot(class string) state.Snapshot {
	return state.Snapshot{Assignments: map[int]map[string]map[int]state.WindowKey{
		0: {"halves": {0: {Class: class, Title: "t", Desktop: 0}}},
	}}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	want := testSnapshot("term")
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	key := got.Assignments[0]["halves"][0]
	if key.Class != "term" || key.Title != "t" {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	snap, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Assignments) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestWriterFlushesLatestOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	w := NewWriter(path, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// A burst of enqueues; only the last one must survive.
	for _, class := range []string{"a", "b", "c", "final"} {
		w.Enqueue(testSnapshot(class))
	}
	w.Close()

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if key := got.Assignments[0]["halves"][0]; key.Class != "final" {
		t.Fatalf("class = %q, want final", key.Class)
	}
}

func TestWriterEnqueueAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	w := NewWriter(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.Close()
	w.Enqueue(testSnapshot("late")) // must not panic or block

	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
