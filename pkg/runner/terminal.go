package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
	"github.com/fatih/color"
)

// InvalidRatingMessage is shown when a rating is not an integer in 0..100.
const InvalidRatingMessage = "INVALID INPUT. Please enter a number between 0 and 100."

// ErrClosed is returned by Input once the terminal has been closed.
var ErrClosed = errors.New("terminal closed")

// ContentRenderer transforms page content before output (markdown to ANSI).
type ContentRenderer func(string) (string, error)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Terminal implements ports.Prompter over line-oriented text IO.
type Terminal struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	sleep       Sleeper
	cancelWords map[string]struct{}
	system      *color.Color
	warn        *color.Color

	inputChan chan inputResult
	startOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}
}

var _ ports.Prompter = (*Terminal)(nil)

type inputResult struct {
	text string
	err  error
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithRenderer configures the content renderer for instruction pages.
func WithRenderer(renderer ContentRenderer) TerminalOption {
	return func(t *Terminal) {
		t.Renderer = renderer
	}
}

// WithSleeper replaces the countdown clock.
func WithSleeper(s Sleeper) TerminalOption {
	return func(t *Terminal) {
		t.sleep = s
	}
}

// WithCancelWords replaces the words that abort the session.
func WithCancelWords(words ...string) TerminalOption {
	return func(t *Terminal) {
		t.cancelWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			t.cancelWords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// NewTerminal creates a prompter reading r and writing w.
// Nil arguments default to stdin and stdout.
func NewTerminal(r io.Reader, w io.Writer, opts ...TerminalOption) *Terminal {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	t := &Terminal{
		Reader: bufio.NewReader(r),
		Writer: w,
		sleep:  Sleep,
		system: color.New(color.FgCyan, color.Bold),
		warn:   color.New(color.FgYellow),
		done:   make(chan struct{}),
	}
	WithCancelWords("quit", "exit", "esc")(t)

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *Terminal) initPump() {
	t.startOnce.Do(func() {
		t.inputChan = make(chan inputResult)
		t.stopped = make(chan struct{})
		go t.pump()
	})
}

// pump forwards lines until EOF or Close. A read already blocked on the
// underlying reader only returns once that reader yields.
func (t *Terminal) pump() {
	defer close(t.stopped)
	for {
		text, err := t.Reader.ReadString('\n')
		if text != "" && !t.send(inputResult{text: text}) {
			return
		}
		if err != nil {
			if err == io.EOF {
				close(t.inputChan)
				return
			}
			if !t.send(inputResult{err: err}) {
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (t *Terminal) send(res inputResult) bool {
	select {
	case t.inputChan <- res:
		return true
	case <-t.done:
		return false
	}
}

// Close stops the input pump. Lines read after Close are dropped and
// further calls to Input return ErrClosed.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

// Input reads one sanitized line. Cancel words yield domain.ErrCancelled.
func (t *Terminal) Input(ctx context.Context) (string, error) {
	t.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.done:
			return "", ErrClosed
		default:
			fmt.Fprint(t.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.done:
			return "", ErrClosed
		case res, ok := <-t.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}

			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				t.warn.Fprintf(t.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			if _, stop := t.cancelWords[strings.ToLower(clean)]; stop {
				return "", domain.ErrCancelled
			}
			return clean, nil
		}
	}
}

// ShowPage prints a page and waits for "n" (or ENTER) to go on, or "p" to go back.
func (t *Terminal) ShowPage(ctx context.Context, page ports.Page, first bool) (ports.Navigation, error) {
	content := page.Content
	if page.Title != "" {
		content = "# " + page.Title + "\n\n" + content
	}
	if t.Renderer != nil {
		if rendered, err := t.Renderer(content); err == nil {
			content = rendered
		}
	}
	fmt.Fprintln(t.Writer)
	fmt.Fprintln(t.Writer, strings.TrimSpace(content))
	fmt.Fprintln(t.Writer)

	hint := "[ENTER/n] next"
	if !first {
		hint += "  [p] previous"
	}

	for {
		fmt.Fprintln(t.Writer, hint)
		in, err := t.Input(ctx)
		if err != nil {
			return ports.NavNext, err
		}
		switch strings.ToLower(in) {
		case "", "n", "next":
			return ports.NavNext, nil
		case "p", "prev", "previous", "b", "back":
			if !first {
				return ports.NavPrevious, nil
			}
		}
	}
}

// Choose prints numbered options and accepts either the number or the label.
func (t *Terminal) Choose(ctx context.Context, prompt string, options []string) (int, error) {
	fmt.Fprintln(t.Writer, prompt)
	for i, opt := range options {
		fmt.Fprintf(t.Writer, "  %d) %s\n", i+1, opt)
	}

	for {
		in, err := t.Input(ctx)
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		for i, opt := range options {
			if strings.EqualFold(in, opt) {
				return i, nil
			}
		}
		t.warn.Fprintf(t.Writer, "Please choose one of: %s\n", strings.Join(options, ", "))
	}
}

// Confidence asks for a rating between 0 and 100 until a valid one is given.
func (t *Terminal) Confidence(ctx context.Context, prompt string) (int, error) {
	fmt.Fprintln(t.Writer, prompt)
	return t.readRating(ctx)
}

// Rate asks a questionnaire item. Anchors label the two ends of the scale.
func (t *Terminal) Rate(ctx context.Context, q ports.Question) (int, error) {
	fmt.Fprintln(t.Writer, q.Question)
	if len(q.Anchors) == 2 {
		fmt.Fprintf(t.Writer, "0 = %s, 100 = %s\n", q.Anchors[0], q.Anchors[1])
	}
	return t.readRating(ctx)
}

func (t *Terminal) readRating(ctx context.Context) (int, error) {
	for {
		in, err := t.Input(ctx)
		if err != nil {
			return 0, err
		}
		if n, ok := ParseRating(in); ok {
			return n, nil
		}
		t.warn.Fprintln(t.Writer, InvalidRatingMessage)
	}
}

// WaitOperator prints msg and blocks until a line is entered.
func (t *Terminal) WaitOperator(ctx context.Context, msg string) error {
	t.system.Fprintf(t.Writer, "\n%s\n", msg)
	_, err := t.Input(ctx)
	return err
}

// Notify prints msg.
func (t *Terminal) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.system.Fprintf(t.Writer, "%s\n", msg)
	return nil
}

// Countdown prints seconds down to 1, one per second.
func (t *Terminal) Countdown(ctx context.Context, seconds int) error {
	for i := seconds; i > 0; i-- {
		fmt.Fprintf(t.Writer, "%d\n", i)
		if err := t.sleep(ctx, time.Second); err != nil {
			return err
		}
	}
	return nil
}
