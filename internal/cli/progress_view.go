package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sahayak-edu/sahayak/internal/cli/formatter"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
)

type progressMsg int

type runDoneMsg struct {
	run *pipeline.Run
	err error
}

var cancelKey = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))

// progressView shows a live bar while a worksheet run executes. It quits
// only when the run reports back, so cancelling waits for the pipeline to
// stop.
type progressView struct {
	bar     progress.Model
	spin    spinner.Model
	grades  string
	percent int

	cancel     context.CancelFunc
	cancelling bool

	run *pipeline.Run
	err error
}

func newProgressView(req pipeline.Request, cancel context.CancelFunc) progressView {
	bar := progress.New(progress.WithGradient(string(formatter.ColorHeader), string(formatter.ColorGreen)))
	bar.Width = 40
	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StylePurple))
	return progressView{
		bar:    bar,
		spin:   spin,
		grades: formatter.FormatGradeSet(req.Grades),
		cancel: cancel,
	}
}

func (v progressView) Init() tea.Cmd {
	return v.spin.Tick
}

func (v progressView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, cancelKey) && !v.cancelling {
			v.cancelling = true
			if v.cancel != nil {
				v.cancel()
			}
		}
		return v, nil

	case progressMsg:
		if int(msg) > v.percent {
			v.percent = int(msg)
		}
		return v, v.bar.SetPercent(float64(v.percent) / 100)

	case runDoneMsg:
		v.run, v.err = msg.run, msg.err
		return v, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case progress.FrameMsg:
		m, cmd := v.bar.Update(msg)
		v.bar = m.(progress.Model)
		return v, cmd
	}
	return v, nil
}

func (v progressView) View() string {
	if v.run != nil || v.err != nil {
		return ""
	}
	var b strings.Builder
	label := formatter.StageLabel(v.percent)
	if v.cancelling {
		label = "Cancelling..."
	}
	fmt.Fprintf(&b, "%s %s\n", v.spin.View(), formatter.Bold("Generating worksheets for "+v.grades))
	fmt.Fprintf(&b, "  %s %3d%%\n", v.bar.View(), v.percent)
	fmt.Fprintf(&b, "  %s\n", formatter.Dim(label))
	b.WriteString(formatter.Dim("  esc to cancel") + "\n")
	return b.String()
}

// runWithProgressView executes the run in the background and renders the
// live view on w until it finishes.
func runWithProgressView(ctx context.Context, app *App, req pipeline.Request, w io.Writer) (*pipeline.Run, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressView(req, cancel), tea.WithOutput(w), tea.WithContext(ctx))
	done := make(chan runDoneMsg, 1)
	go func() {
		run, err := app.generate(runCtx, req, func(pct int) { p.Send(progressMsg(pct)) })
		done <- runDoneMsg{run: run, err: err}
		p.Send(runDoneMsg{run: run, err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		res := <-done
		if res.err != nil {
			return res.run, res.err
		}
		return res.run, fmt.Errorf("progress view: %w", err)
	}
	res := <-done
	return res.run, res.err
}
