package domain

import (
	"strconv"
	"time"
)

// Block names used for records that do not belong to a staircase.
const (
	BlockTraining      = "Training"
	BlockPostTask      = "Post_task_question"
	NotApplicable      = "NA"
	ParticipantIDLabel = "Participant ID"
)

// Columns is the header row of the session log.
var Columns = []string{"Staircase_name", "Trial", "Current Delay", "Button", "Response_code", "Confidence"}

// TrialRecord is one row of the session log.
// Nil pointer fields are written as "NA".
type TrialRecord struct {
	Block      string        `json:"block"`
	Trial      string        `json:"trial"`
	Delay      *float64      `json:"delay,omitempty"`
	Button     string        `json:"button,omitempty"`
	Code       *ResponseCode `json:"response_code,omitempty"`
	Confidence *int          `json:"confidence,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// NewTrialRecord builds the record of an administered trial.
func NewTrialRecord(block string, trial int, delay float64, resp Response, confidence int) TrialRecord {
	code := resp.Code
	return TrialRecord{
		Block:      block,
		Trial:      strconv.Itoa(trial),
		Delay:      &delay,
		Button:     resp.Label,
		Code:       &code,
		Confidence: &confidence,
		Timestamp:  time.Now(),
	}
}

// NewQuestionRecord builds the record of a post-task rating question.
func NewQuestionRecord(label string, rating int) TrialRecord {
	return TrialRecord{
		Block:      BlockPostTask,
		Trial:      label,
		Confidence: &rating,
		Timestamp:  time.Now(),
	}
}

// Row renders the record in column order.
func (r TrialRecord) Row() []string {
	row := []string{r.Block, r.Trial, NotApplicable, NotApplicable, NotApplicable, NotApplicable}
	if r.Delay != nil {
		row[2] = FormatDelay(*r.Delay)
	}
	if r.Button != "" {
		row[3] = r.Button
	}
	if r.Code != nil {
		row[4] = strconv.Itoa(int(*r.Code))
	}
	if r.Confidence != nil {
		row[5] = strconv.Itoa(*r.Confidence)
	}
	return row
}

// FormatDelay prints a delay without a trailing ".0" for whole milliseconds.
func FormatDelay(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
