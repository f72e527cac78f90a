// Package store persists the assignment snapshot to disk. Writes go through
// a single background goroutine with a one-slot mailbox: a new snapshot
// replaces any queued one, so a burst of mutations costs at most one write.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zonetile/zonetile/internal/state"
)

// Writer owns the state file and serializes writes to it.
type Writer struct {
	path string
	log  *slog.Logger

	mu      sync.Mutex
	pending *state.Snapshot
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewWriter starts the background writer for path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		path: path,
		log:  logger,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules a snapshot write. Never blocks; an unwritten queued
// snapshot is replaced.
func (w *Writer) Enqueue(snap state.Snapshot) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &snap
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close flushes any queued snapshot and stops the writer.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		<-w.wake

		w.mu.Lock()
		snap := w.pending
		w.pending = nil
		closed := w.closed
		w.mu.Unlock()

		if snap != nil {
			if err := Save(w.path, *snap); err != nil {
				w.log.Warn("state write failed", "path", w.path, "error", err)
			}
		}
		if closed {
			// One last drain in case Enqueue raced Close.
			w.mu.Lock()
			snap = w.pending
			w.pending = nil
			w.mu.Unlock()
			if snap != nil {
				if err := Save(w.path, *snap); err != nil {
					w.log.Warn("state write failed", "path", w.path, "error", err)
				}
			}
			return
		}
	}
}

// Save writes a snapshot to path atomically (temp file then rename).
func Save(path string, snap state.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Load reads a snapshot from path. A missing file yields an empty snapshot.
func Load(path string) (state.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state.Snapshot{}, nil
		}
		return state.Snapshot{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return state.Snapshot{}, fmt.Errorf("failed to decode state file: %w", err)
	}
	return snap, nil
}
