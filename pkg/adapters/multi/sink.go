// Package multi fans trial records out to several sinks.
package multi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
)

// Sink writes every record to a primary sink and to any number of mirrors.
// A primary failure is returned; mirror failures are logged and skipped so
// that an unreachable dashboard never stops a session.
type Sink struct {
	primary ports.RecordSink
	mirrors []ports.RecordSink
	logger  *slog.Logger
}

// New creates a fan-out sink.
func New(primary ports.RecordSink, mirrors ...ports.RecordSink) *Sink {
	return &Sink{
		primary: primary,
		mirrors: mirrors,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used to report mirror failures.
func (s *Sink) WithLogger(logger *slog.Logger) *Sink {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Sink) Append(ctx context.Context, rec domain.TrialRecord) error {
	if err := s.primary.Append(ctx, rec); err != nil {
		return err
	}
	for i, m := range s.mirrors {
		if err := m.Append(ctx, rec); err != nil {
			s.logger.Warn("Mirror sink append failed", "mirror", i, "err", err)
		}
	}
	return nil
}

// Close closes every sink and joins the errors.
func (s *Sink) Close() error {
	errs := []error{}
	if err := s.primary.Close(); err != nil {
		errs = append(errs, fmt.Errorf("primary: %w", err))
	}
	for i, m := range s.mirrors {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mirror %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
