// Package sqlite stores trial records in a SQLite database so several
// sessions can be queried together.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS trials (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	participant   TEXT NOT NULL,
	session       TEXT NOT NULL,
	block         TEXT NOT NULL,
	trial         TEXT NOT NULL,
	delay         REAL,
	button        TEXT,
	response_code INTEGER,
	confidence    INTEGER,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trials_session ON trials(participant, session);
`

// Sink implements ports.RecordSink on a SQLite table.
type Sink struct {
	db          *sql.DB
	participant string
	session     string
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a throwaway database.
func Open(path, participant, session string) (*Sink, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Sink{db: db, participant: participant, session: session}, nil
}

func (s *Sink) Append(ctx context.Context, rec domain.TrialRecord) error {
	var (
		delay  sql.NullFloat64
		button sql.NullString
		code   sql.NullInt64
		conf   sql.NullInt64
	)
	if rec.Delay != nil {
		delay = sql.NullFloat64{Float64: *rec.Delay, Valid: true}
	}
	if rec.Button != "" {
		button = sql.NullString{String: rec.Button, Valid: true}
	}
	if rec.Code != nil {
		code = sql.NullInt64{Int64: int64(*rec.Code), Valid: true}
	}
	if rec.Confidence != nil {
		conf = sql.NullInt64{Int64: int64(*rec.Confidence), Valid: true}
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trials (participant, session, block, trial, delay, button, response_code, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.participant, s.session, rec.Block, rec.Trial, delay, button, code, conf, ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Records returns the records of the sink's session in insertion order.
func (s *Sink) Records(ctx context.Context) ([]domain.TrialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT block, trial, delay, button, response_code, confidence, created_at
		 FROM trials WHERE participant = ? AND session = ? ORDER BY id`,
		s.participant, s.session,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []domain.TrialRecord
	for rows.Next() {
		var (
			rec     domain.TrialRecord
			delay   sql.NullFloat64
			button  sql.NullString
			code    sql.NullInt64
			conf    sql.NullInt64
			created string
		)
		if err := rows.Scan(&rec.Block, &rec.Trial, &delay, &button, &code, &conf, &created); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if delay.Valid {
			rec.Delay = &delay.Float64
		}
		rec.Button = button.String
		if code.Valid {
			c := domain.ResponseCode(code.Int64)
			rec.Code = &c
		}
		if conf.Valid {
			c := int(conf.Int64)
			rec.Confidence = &c
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Sessions lists the session identifiers stored for a participant.
func (s *Sink) Sessions(ctx context.Context, participant string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT session FROM trials WHERE participant = ? ORDER BY session`, participant)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Sink) Close() error {
	return s.db.Close()
}
