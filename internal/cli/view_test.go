package cli

import (
	"context"
	"regexp"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
	"github.com/sahayak-edu/sahayak/internal/llm"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/teatest"
	"github.com/sahayak-edu/sahayak/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// --- progress view ---

func TestProgressView_TracksStages(t *testing.T) {
	v := newProgressView(pipeline.Request{Grades: domain.NewGradeSet(3, 8)}, nil)

	out := stripANSI(v.View())
	assert.Contains(t, out, "Grade 3, Grade 8")
	assert.Contains(t, out, "Starting")

	m, _ := v.Update(progressMsg(50))
	v = m.(progressView)
	assert.Equal(t, 50, v.percent)
	assert.Contains(t, stripANSI(v.View()), "Extracting text")

	m, _ = v.Update(progressMsg(25))
	v = m.(progressView)
	assert.Equal(t, 50, v.percent, "progress never goes back")
}

func TestProgressView_CancelWaitsForRun(t *testing.T) {
	cancelled := false
	v := newProgressView(pipeline.Request{Grades: domain.NewGradeSet(5)}, func() { cancelled = true })

	m, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	v = m.(progressView)
	assert.True(t, cancelled)
	assert.Nil(t, cmd, "view stays up until the run reports back")
	assert.Contains(t, stripANSI(v.View()), "Cancelling...")

	m, cmd = v.Update(runDoneMsg{err: context.Canceled})
	v = m.(progressView)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, v.err, context.Canceled)
	assert.Empty(t, v.View())
}

func TestProgressView_DrivenRun(t *testing.T) {
	cancels := 0
	d := teatest.New(t, newProgressView(pipeline.Request{Grades: domain.NewGradeSet(4)}, func() { cancels++ }),
		teatest.WithSize(80, 24), teatest.WithCmdTimeout(10*time.Millisecond))
	d.DrainInit()

	d.SendAll(progressMsg(25), progressMsg(75))
	assert.Contains(t, stripANSI(d.View()), "Analyzing content")

	d.PressCtrlC()
	d.PressEsc()
	assert.Equal(t, 1, cancels, "cancel fires once")
	assert.False(t, d.Quitting)

	d.Send(runDoneMsg{err: context.Canceled})
	assert.True(t, d.Quitting)
	assert.ErrorIs(t, d.Model.(progressView).err, context.Canceled)
}

// --- chat view ---

func TestChatView_DrivenConversation(t *testing.T) {
	fake := testutil.NewFakeLLM("Use bottle caps as counters.")
	v := newChatView(context.Background(), testApp(t, fake))
	d := teatest.New(t, v, teatest.WithSize(100, 30))
	d.DrainInit()

	d.Submit("Maths activity for grade 1?")
	require.Len(t, v.messages, 3)
	assert.False(t, v.waiting)
	assert.Equal(t, "Maths activity for grade 1?", v.messages[1].Content)
	assert.Contains(t, stripANSI(d.View()), "Use bottle caps as counters.")

	d.Submit("/quit")
	assert.True(t, d.Quitting)
}

func typeLine(t *testing.T, v *chatView, text string) tea.Cmd {
	t.Helper()
	v.input.SetValue(text)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestChatView_AskAndAnswer(t *testing.T) {
	fake := testutil.NewFakeLLM("Try a sorting game with leaves.")
	app := testApp(t, fake)
	v := newChatView(context.Background(), app)
	require.Len(t, v.messages, 1)
	assert.Equal(t, intelligence.Greeting, v.messages[0].Content)

	cmd := typeLine(t, v, "Activity for grade 2 science?")
	require.NotNil(t, cmd)
	assert.True(t, v.waiting)
	require.Len(t, v.messages, 2)
	assert.Equal(t, domain.RoleUser, v.messages[1].Role)

	v.Update(cmd())
	assert.False(t, v.waiting)
	require.Len(t, v.messages, 3)
	assert.Equal(t, "Try a sorting game with leaves.", v.messages[2].Content)
	assert.Contains(t, stripANSI(v.View()), "Try a sorting game with leaves.")

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].History, "the greeting is not sent as context")
}

func TestChatView_ErrorBecomesApology(t *testing.T) {
	v := newChatView(context.Background(), testApp(t, testutil.NewFailingLLM(llm.ErrTimeout)))

	cmd := typeLine(t, v, "hello")
	require.NotNil(t, cmd)
	v.Update(cmd())
	require.Len(t, v.messages, 3)
	assert.Contains(t, v.messages[2].Content, "I apologize")
}

func TestChatView_QuickPromptAndCommands(t *testing.T) {
	app := testApp(t, testutil.NewFakeLLM("ok"))
	v := newChatView(context.Background(), app)

	assert.Nil(t, typeLine(t, v, "/prompts"))
	assert.Contains(t, v.status, "1. "+intelligence.QuickPrompts[0])

	assert.Nil(t, typeLine(t, v, "/p 99"))
	assert.Contains(t, v.status, "between 1 and")

	cmd := typeLine(t, v, "/p 2")
	require.NotNil(t, cmd)
	assert.Equal(t, intelligence.QuickPrompts[1], v.messages[len(v.messages)-1].Content)
	v.Update(cmd())

	assert.Nil(t, typeLine(t, v, "/save"))
	assert.Contains(t, v.status, "Saved as Conversation 2026-03-10")
	items, err := app.Library.Search(context.Background(), domain.DefaultUserID, "", "conversation")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "3", items[0].Metadata["messages"])

	assert.Nil(t, typeLine(t, v, "/clear"))
	require.Len(t, v.messages, 1)
	assert.Equal(t, intelligence.ResetGreeting, v.messages[0].Content)

	cmd = typeLine(t, v, "/quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestChatView_IgnoresInputWhileWaiting(t *testing.T) {
	v := newChatView(context.Background(), testApp(t, testutil.NewFakeLLM("ok")))
	require.NotNil(t, typeLine(t, v, "first"))
	assert.Nil(t, typeLine(t, v, "second"))
	assert.Len(t, v.messages, 2)
}
