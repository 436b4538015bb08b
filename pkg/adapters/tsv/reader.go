package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aretw0/hdt/pkg/domain"
)

// ErrMalformed is returned for a file that is not a session log.
var ErrMalformed = errors.New("malformed session log")

// ReadFile parses a session log written by Sink.
func ReadFile(path string) (string, []domain.TrialRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a session log and returns the participant ID and the records.
// Timestamps are not part of the file and are left zero.
func Read(r io.Reader) (string, []domain.TrialRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rows) < 2 || len(rows[0]) != 2 || rows[0][0] != domain.ParticipantIDLabel {
		return "", nil, fmt.Errorf("%w: missing participant header", ErrMalformed)
	}
	participant := rows[0][1]

	records := make([]domain.TrialRecord, 0, len(rows)-2)
	for i, row := range rows[2:] {
		rec, err := parseRow(row)
		if err != nil {
			return "", nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, i+3, err)
		}
		records = append(records, rec)
	}
	return participant, records, nil
}

func parseRow(row []string) (domain.TrialRecord, error) {
	if len(row) != len(domain.Columns) {
		return domain.TrialRecord{}, fmt.Errorf("expected %d fields, got %d", len(domain.Columns), len(row))
	}
	rec := domain.TrialRecord{Block: row[0], Trial: row[1]}

	if row[2] != domain.NotApplicable {
		v, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return rec, fmt.Errorf("delay: %w", err)
		}
		rec.Delay = &v
	}
	if row[3] != domain.NotApplicable {
		rec.Button = row[3]
	}
	if row[4] != domain.NotApplicable {
		n, err := strconv.Atoi(row[4])
		if err != nil {
			return rec, fmt.Errorf("response code: %w", err)
		}
		code := domain.ResponseCode(n)
		rec.Code = &code
	}
	if row[5] != domain.NotApplicable {
		n, err := strconv.Atoi(row[5])
		if err != nil {
			return rec, fmt.Errorf("confidence: %w", err)
		}
		rec.Confidence = &n
	}
	return rec, nil
}
