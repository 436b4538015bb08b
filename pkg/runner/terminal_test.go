package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTerminal(input string) (*Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	noSleep := func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return NewTerminal(strings.NewReader(input), out, WithSleeper(noSleep)), out
}

func TestTerminal_Input(t *testing.T) {
	term, out := newTerminal("  my answer \n")

	val, err := term.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my answer", val)
	assert.Equal(t, "> ", out.String())

	_, err = term.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTerminal_CancelWords(t *testing.T) {
	for _, word := range []string{"quit", "EXIT", "esc"} {
		t.Run(word, func(t *testing.T) {
			term, _ := newTerminal(word + "\n")
			_, err := term.Confidence(context.Background(), "How confident?")
			assert.ErrorIs(t, err, domain.ErrCancelled)
		})
	}
}

func TestTerminal_InputHonoursContext(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	term := NewTerminal(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := term.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTerminal_CloseStopsPumpAfterCancelledInput(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	term := NewTerminal(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := term.Input(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// a line typed after the prompt gave up leaves the pump waiting on a reader
	written := make(chan struct{})
	go func() {
		_, _ = w.Write([]byte("late answer\n"))
		close(written)
	}()
	<-written

	require.NoError(t, term.Close())
	require.NoError(t, term.Close())

	select {
	case <-term.stopped:
	case <-time.After(time.Second):
		t.Fatal("input pump still running after Close")
	}

	_, err = term.Input(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTerminal_ConfidenceRetries(t *testing.T) {
	term, out := newTerminal("abc\n150\n-3\n85\n")

	n, err := term.Confidence(context.Background(), "How confident are you in your response?")
	require.NoError(t, err)
	assert.Equal(t, 85, n)
	assert.Equal(t, 3, strings.Count(out.String(), InvalidRatingMessage))
}

func TestTerminal_Choose(t *testing.T) {
	options := []string{domain.LabelBefore, domain.LabelSameTime, domain.LabelAfter}

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"ByNumber", "3\n", 2},
		{"ByLabel", "Same Time\n", 1},
		{"RetriesInvalid", "4\nsoon\n1\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, out := newTerminal(tt.input)
			idx, err := term.Choose(context.Background(), "Are the beeps ___ your heartbeat?", options)
			require.NoError(t, err)
			assert.Equal(t, tt.want, idx)
			assert.Contains(t, out.String(), "2) same time")
		})
	}
}

func TestTerminal_ShowPage(t *testing.T) {
	page := ports.Page{ID: "intro", Title: "Welcome", Content: "Listen carefully."}

	term, out := newTerminal("p\n\n")
	term.Renderer = func(s string) (string, error) { return "Rendered: " + s, nil }

	// "p" is ignored on the first page, ENTER moves on
	nav, err := term.ShowPage(context.Background(), page, true)
	require.NoError(t, err)
	assert.Equal(t, ports.NavNext, nav)
	assert.Contains(t, out.String(), "Rendered: # Welcome")
	assert.NotContains(t, out.String(), "[p] previous")

	term, out = newTerminal("back\n")
	nav, err = term.ShowPage(context.Background(), page, false)
	require.NoError(t, err)
	assert.Equal(t, ports.NavPrevious, nav)
	assert.Contains(t, out.String(), "[p] previous")
}

func TestTerminal_Rate(t *testing.T) {
	term, out := newTerminal("61\n")
	q := ports.Question{Label: "TaskGeneral", Question: "I find the task", Anchors: []string{"Very unpleasant", "Very pleasant"}}

	n, err := term.Rate(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 61, n)
	assert.Contains(t, out.String(), "0 = Very unpleasant, 100 = Very pleasant")
}

func TestTerminal_OperatorAndCountdown(t *testing.T) {
	term, out := newTerminal("\n")
	ctx := context.Background()

	require.NoError(t, term.WaitOperator(ctx, "RESEARCHER:\nPress ENTER when you are ready to begin task"))
	require.NoError(t, term.Countdown(ctx, 3))
	require.NoError(t, term.Notify(ctx, "Continuing"))

	s := out.String()
	assert.Contains(t, s, "Press ENTER when you are ready to begin task")
	assert.Contains(t, s, "3\n2\n1\n")
	assert.Contains(t, s, "Continuing")
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), 0))
}
