package domain

import "fmt"

// ResponseCode is the numeric code written to the log for a participant's judgement.
type ResponseCode int

const (
	CodeBefore   ResponseCode = 0  // Beeps heard before the heartbeat
	CodeSameTime ResponseCode = -1 // Beeps heard in sync with the heartbeat
	CodeAfter    ResponseCode = 1  // Beeps heard after the heartbeat
)

// Button labels as shown to the participant, in presentation order.
const (
	LabelBefore   = "before"
	LabelSameTime = "same time"
	LabelAfter    = "after"
)

// Buttons lists the judgement options in the order they are offered.
var Buttons = []string{LabelBefore, LabelSameTime, LabelAfter}

// Signal is the staircase-level meaning of a response.
// The zero value is not a valid signal.
type Signal int

const (
	SignalUnknown Signal = iota
	// SignalRepeat marks an ambiguous trial: it is re-administered and never
	// reaches the staircase.
	SignalRepeat
	// SignalIncrease counts toward the n-up rule (delay goes up).
	SignalIncrease
	// SignalDecrease counts toward the n-down rule (delay goes down).
	SignalDecrease
)

func (s Signal) String() string {
	switch s {
	case SignalRepeat:
		return "repeat"
	case SignalIncrease:
		return "increase"
	case SignalDecrease:
		return "decrease"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Valid reports whether s is one of the three recognised categories.
func (s Signal) Valid() bool {
	return s == SignalRepeat || s == SignalIncrease || s == SignalDecrease
}

// Signal maps a response code onto its staircase signal.
// "same time" is treated as a repeat trial; "before" pushes the delay up and
// "after" pushes it down.
func (c ResponseCode) Signal() (Signal, error) {
	switch c {
	case CodeSameTime:
		return SignalRepeat, nil
	case CodeBefore:
		return SignalIncrease, nil
	case CodeAfter:
		return SignalDecrease, nil
	default:
		return SignalUnknown, fmt.Errorf("%w: code %d", ErrInvalidResponse, int(c))
	}
}

// Response is the outcome of a single trial as returned by a TrialRunner.
type Response struct {
	Label string       `json:"label"`
	Code  ResponseCode `json:"code"`
}

// ResponseFromLabel builds a Response from one of the button labels.
func ResponseFromLabel(label string) (Response, error) {
	switch label {
	case LabelBefore:
		return Response{Label: label, Code: CodeBefore}, nil
	case LabelSameTime:
		return Response{Label: label, Code: CodeSameTime}, nil
	case LabelAfter:
		return Response{Label: label, Code: CodeAfter}, nil
	default:
		return Response{}, fmt.Errorf("%w: unknown button %q", ErrInvalidResponse, label)
	}
}

// Signal is a shorthand for r.Code.Signal().
func (r Response) Signal() (Signal, error) {
	return r.Code.Signal()
}
