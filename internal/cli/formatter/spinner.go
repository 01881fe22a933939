package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner draws a single status line on w until stopped. It serves the
// one-shot tool commands; the worksheet run uses the bubbletea view.
type Spinner struct {
	w     io.Writer
	style spinner.Spinner
	start time.Time

	mu   sync.Mutex
	msg  string
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:     w,
		style: spinner.Dot,
		msg:   message,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = message
}

func (s *Spinner) Start() {
	s.start = time.Now()
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.done)
	tick := time.NewTicker(s.style.FPS)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-tick.C:
			fmt.Fprint(s.w, s.line(frame))
		}
	}
}

// line renders one frame, e.g. "  ⣾ Writing story (3s)".
func (s *Spinner) line(frame int) string {
	s.mu.Lock()
	msg := s.msg
	s.mu.Unlock()

	glyph := s.style.Frames[frame%len(s.style.Frames)]
	elapsed := time.Since(s.start).Truncate(time.Second)
	return fmt.Sprintf("\r\033[K  %s %s %s", StylePurple.Render(glyph), msg, Dim(fmt.Sprintf("(%s)", elapsed)))
}

// Stop clears the line and waits for the animation to exit. Repeat calls
// return immediately.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.quit)
		<-s.done
	})
}

// StartSpinner starts a spinner and returns its Stop.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
