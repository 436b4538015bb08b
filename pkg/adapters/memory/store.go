// Package memory provides an in-process record sink.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/hdt/pkg/domain"
)

// Recorder implements ports.RecordSink in memory.
// Safe for concurrent use.
type Recorder struct {
	mu      sync.RWMutex
	records []domain.TrialRecord
	closed  bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append stores a copy of the record.
func (r *Recorder) Append(ctx context.Context, rec domain.TrialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// Records returns a copy of everything appended so far.
func (r *Recorder) Records() []domain.TrialRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.TrialRecord(nil), r.records...)
}

// Block returns the records of one block (staircase name, training, ...).
func (r *Recorder) Block(name string) []domain.TrialRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.TrialRecord
	for _, rec := range r.records {
		if rec.Block == name {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of records.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Close marks the recorder closed. Records stay readable.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}
