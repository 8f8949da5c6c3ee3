package viz

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pairmass/internal/sim"
)

const (
	tickInterval = 100 * time.Millisecond
	rateHistory  = 60
	barWidth     = 50
)

type tickMsg time.Time

type doneMsg struct {
	result *sim.Result
	err    error
}

// RunFunc starts a run that reports to obs and stops when ctx is canceled.
type RunFunc func(ctx context.Context, obs sim.Observer) (*sim.Result, error)

// Progress follows a run. OnEvent may be called from any worker; the
// Bubble Tea side only reads the counters.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64

	title  string
	start  time.Time
	last   int64
	rates  []float64
	cancel context.CancelFunc
	run    func() tea.Msg

	result   *sim.Result
	err      error
	finished bool
	quit     bool
}

// NewProgress returns a model with no run attached, useful as a plain
// sim.Observer.
func NewProgress(title string) *Progress {
	return &Progress{title: title, start: time.Now()}
}

func (p *Progress) OnEvent(done, total int) {
	p.total.Store(int64(total))
	for {
		cur := p.done.Load()
		if int64(done) <= cur || p.done.CompareAndSwap(cur, int64(done)) {
			return
		}
	}
}

// Done returns the number of completed events and the run length.
func (p *Progress) Done() (done, total int64) {
	return p.done.Load(), p.total.Load()
}

// Fraction returns the completed share of the run in [0, 1].
func (p *Progress) Fraction() float64 {
	done, total := p.Done()
	if total <= 0 {
		return 0
	}
	return min(float64(done)/float64(total), 1)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (p *Progress) Init() tea.Cmd {
	if p.run == nil {
		return tick()
	}
	return tea.Batch(tick(), p.run)
}

func (p *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			p.quit = true
			if p.cancel != nil {
				p.cancel()
			}
			if p.run == nil || p.finished {
				return p, tea.Quit
			}
		}
	case tickMsg:
		done := p.done.Load()
		p.rates = append(p.rates, float64(done-p.last)/tickInterval.Seconds())
		if len(p.rates) > rateHistory {
			p.rates = p.rates[1:]
		}
		p.last = done
		return p, tick()
	case doneMsg:
		p.result, p.err, p.finished = msg.result, msg.err, true
		return p, tea.Quit
	}
	return p, nil
}

func (p *Progress) View() string {
	done, total := p.Done()
	elapsed := time.Since(p.start)

	var b strings.Builder
	b.WriteString(Title.Render(p.title) + "\n\n")
	b.WriteString(ProgressBar(p.Fraction(), barWidth))
	b.WriteString(fmt.Sprintf(" %5.1f%%\n\n", 100*p.Fraction()))
	b.WriteString(MetricLabel.Render("events   ") + MetricValue.Render(fmt.Sprintf("%d / %d", done, total)) + "\n")
	b.WriteString(MetricLabel.Render("elapsed  ") + MetricValue.Render(elapsed.Round(time.Second/10).String()) + "\n")
	if elapsed > 0 {
		b.WriteString(MetricLabel.Render("rate     ") + MetricValue.Render(fmt.Sprintf("%.0f ev/s", float64(done)/elapsed.Seconds())) + "\n")
	}
	b.WriteString(Sparkline(p.rates, rateHistory) + "\n\n")

	switch {
	case p.quit && !p.finished:
		b.WriteString(KeyHint.Render("stopping..."))
	default:
		b.WriteString(KeyHint.Render("q: stop and keep completed events"))
	}
	return Panel.Render(b.String())
}

// RunLive runs fn under a progress view and returns its result once the run
// finishes or the user stops it.
func RunLive(ctx context.Context, title string, fn RunFunc) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := NewProgress(title)
	p.cancel = cancel
	p.run = func() tea.Msg {
		res, err := fn(ctx, p)
		return doneMsg{result: res, err: err}
	}

	if _, err := tea.NewProgram(p).Run(); err != nil && !p.finished {
		return nil, fmt.Errorf("live view: %w", err)
	}
	return p.result, p.err
}
