package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
)

// scriptedPrompter answers prompts from fixed scripts.
type scriptedPrompter struct {
	mu sync.Mutex

	navs        []ports.Navigation
	choices     []int
	confidence  int
	ratings     map[string]int
	confidenceE error

	shown    []string
	choose   []string
	notices  []string
	operator []string
}

func (p *scriptedPrompter) ShowPage(ctx context.Context, page ports.Page, first bool) (ports.Navigation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, page.ID)
	if len(p.navs) == 0 {
		return ports.NavNext, nil
	}
	nav := p.navs[0]
	p.navs = p.navs[1:]
	return nav, nil
}

func (p *scriptedPrompter) Choose(ctx context.Context, prompt string, options []string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.choose = append(p.choose, prompt)
	if len(p.choices) == 0 {
		return 0, nil
	}
	c := p.choices[0]
	p.choices = p.choices[1:]
	return c, nil
}

func (p *scriptedPrompter) Confidence(ctx context.Context, prompt string) (int, error) {
	if p.confidenceE != nil {
		return 0, p.confidenceE
	}
	return p.confidence, ctx.Err()
}

func (p *scriptedPrompter) Rate(ctx context.Context, q ports.Question) (int, error) {
	return p.ratings[q.Label], ctx.Err()
}

func (p *scriptedPrompter) WaitOperator(ctx context.Context, msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.operator = append(p.operator, msg)
	return ctx.Err()
}

func (p *scriptedPrompter) Notify(ctx context.Context, msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, msg)
	return ctx.Err()
}

func (p *scriptedPrompter) Countdown(ctx context.Context, seconds int) error {
	return ctx.Err()
}

// fakeDevice records triggered delays.
type fakeDevice struct {
	mu      sync.Mutex
	delays  []int
	err     error
	closed  bool
	closeFn func() error
}

func (d *fakeDevice) Trigger(ctx context.Context, delayMs int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delays = append(d.delays, delayMs)
	return d.err
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.closeFn != nil {
		return d.closeFn()
	}
	return nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

var (
	respBefore   = domain.Response{Label: domain.LabelBefore, Code: domain.CodeBefore}
	respSameTime = domain.Response{Label: domain.LabelSameTime, Code: domain.CodeSameTime}
	respAfter    = domain.Response{Label: domain.LabelAfter, Code: domain.CodeAfter}
)

// scriptedTrials answers the n-th trial with responses[n], repeating the last one.
func scriptedTrials(responses ...domain.Response) (ports.TrialRunner, func() []float64) {
	var (
		mu     sync.Mutex
		n      int
		values []float64
	)
	fn := ports.TrialRunnerFunc(func(ctx context.Context, delay float64) (domain.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		values = append(values, delay)
		i := min(n, len(responses)-1)
		n++
		return responses[i], nil
	})
	return fn, func() []float64 {
		mu.Lock()
		defer mu.Unlock()
		return append([]float64(nil), values...)
	}
}

var errBoom = errors.New("boom")
