package teatest

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type echoMsg string

// lineModel collects typed runes and echoes each submitted line back as a
// message produced by a Cmd.
type lineModel struct {
	buf    strings.Builder
	lines  []string
	echoes []string
	slow   bool
}

func (m *lineModel) Init() tea.Cmd { return nil }

func (m *lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyRunes:
			m.buf.WriteString(string(msg.Runes))
		case tea.KeyEnter:
			line := m.buf.String()
			m.buf.Reset()
			if line == "quit" {
				return m, tea.Quit
			}
			m.lines = append(m.lines, line)
			slow := m.slow
			return m, func() tea.Msg {
				if slow {
					time.Sleep(time.Second)
				}
				return echoMsg(line)
			}
		}
	case echoMsg:
		m.echoes = append(m.echoes, string(msg))
	}
	return m, nil
}

func (m *lineModel) View() string { return strings.Join(m.echoes, "\n") }

func TestDriver_SubmitDrainsCmds(t *testing.T) {
	m := &lineModel{}
	d := New(t, m)
	d.DrainInit()

	d.Submit("hello")
	d.Submit("world")

	assert.Equal(t, []string{"hello", "world"}, m.lines)
	assert.Equal(t, "hello\nworld", d.View())
	assert.Contains(t, d.Seen, tea.Msg(echoMsg("world")))
}

func TestDriver_SkipsSlowCmds(t *testing.T) {
	m := &lineModel{slow: true}
	d := New(t, m, WithCmdTimeout(5*time.Millisecond))

	d.Submit("late")
	assert.Equal(t, []string{"late"}, m.lines)
	assert.Empty(t, m.echoes)
}

func TestDriver_QuitStopsInput(t *testing.T) {
	m := &lineModel{}
	d := New(t, m)

	d.Submit("quit")
	assert.True(t, d.Quitting)

	d.Submit("ignored")
	assert.Empty(t, m.lines)
}
