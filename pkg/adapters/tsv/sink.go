// Package tsv implements the tab-separated session log.
package tsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/hdt/pkg/domain"
)

// Extension of the log files.
const Extension = ".tsv"

// ErrClosed is returned when appending to a closed sink.
var ErrClosed = errors.New("tsv sink is closed")

// BaseName returns the file stem used for a participant's log.
func BaseName(participantID string) string {
	return fmt.Sprintf("sub-%s_s_hdt", participantID)
}

// ResolvePath picks a log path in dir that does not overwrite a previous
// session: "<base>.tsv" when free, otherwise "<base>_<x>.tsv" where x is the
// letter after the highest single-letter suffix already present ("a" if none).
func ResolvePath(dir, participantID string) (string, error) {
	base := BaseName(participantID)
	primary := filepath.Join(dir, base+Extension)
	if _, err := os.Stat(primary); err != nil {
		if os.IsNotExist(err) {
			return primary, nil
		}
		return "", fmt.Errorf("failed to check log file: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list log directory: %w", err)
	}

	next := 0
	prefix := base + "_"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, Extension) {
			continue
		}
		suffix := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(name, prefix), Extension))
		if len(suffix) != 1 || suffix[0] < 'a' || suffix[0] > 'z' {
			continue
		}
		next = max(next, int(suffix[0]-'a')+1)
	}
	if next > 'z'-'a' {
		return "", fmt.Errorf("no free log suffix left for %s in %s", base, dir)
	}

	return filepath.Join(dir, fmt.Sprintf("%s_%c%s", base, 'a'+next, Extension)), nil
}

// Sink appends trial records to a TSV file.
// The file is opened, appended to and closed for every record so that a crash
// loses at most the record in flight.
type Sink struct {
	path   string
	mu     sync.Mutex
	closed bool
}

// Create resolves a fresh log path under dir and writes the header rows.
func Create(dir, participantID string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure output directory: %w", err)
	}
	path, err := ResolvePath(dir, participantID)
	if err != nil {
		return nil, err
	}
	s := &Sink{path: path}
	if err := s.writeRows([]string{domain.ParticipantIDLabel, participantID}, domain.Columns); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the sink writes to.
func (s *Sink) Path() string {
	return s.path
}

// Append writes one record.
func (s *Sink) Append(ctx context.Context, rec domain.TrialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.writeRows(rec.Row())
}

func (s *Sink) writeRows(rows ...[]string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write log row: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Close marks the sink closed. Nothing is held open between records.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
