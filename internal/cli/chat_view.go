package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sahayak-edu/sahayak/internal/cli/formatter"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
)

type answerMsg struct {
	reply domain.ChatMessage
	err   error
}

var chatKeys = struct {
	Send key.Binding
	Quit key.Binding
}{
	Send: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Quit: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

const chatHelp = "/prompts quick prompts · /p N ask prompt N · /save · /clear · /quit"

// chatView is a multi-turn conversation with the assistant.
type chatView struct {
	ctx      context.Context
	app      *App
	input    textinput.Model
	viewport viewport.Model

	messages []domain.ChatMessage
	waiting  bool
	status   string
}

func newChatView(ctx context.Context, app *App) *chatView {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.Placeholder = "Ask about lesson plans, worksheets, activities..."
	ti.CharLimit = 2000

	v := &chatView{
		ctx:      ctx,
		app:      app,
		input:    ti,
		viewport: viewport.New(80, 20),
		messages: []domain.ChatMessage{intelligence.NewGreeting(app.now())},
		status:   chatHelp,
	}
	v.refresh()
	return v
}

func (v *chatView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *chatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.viewport.Width = msg.Width
		v.viewport.Height = max(msg.Height-4, 5)
		v.refresh()
		return v, nil

	case answerMsg:
		v.waiting = false
		reply := msg.reply
		if reply.Content == "" && msg.err != nil {
			reply = domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleAssistant, Content: "Error: " + msg.err.Error(), Timestamp: v.app.now()}
		}
		v.messages = append(v.messages, reply)
		v.status = chatHelp
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, chatKeys.Quit) {
			return v, tea.Quit
		}
		if key.Matches(msg, chatKeys.Send) {
			input := strings.TrimSpace(v.input.Value())
			v.input.Reset()
			if input == "" || v.waiting {
				return v, nil
			}
			return v.handleInput(input)
		}
		if msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown {
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return v, cmd
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *chatView) View() string {
	var b strings.Builder
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	if v.waiting {
		b.WriteString(formatter.Dim("SAHAYAK is thinking..."))
	} else {
		b.WriteString(formatter.Dim(v.status))
	}
	b.WriteString("\n")
	b.WriteString(formatter.StylePurple.Render("ask") + formatter.Dim("> "))
	b.WriteString(v.input.View())
	return b.String()
}

func (v *chatView) refresh() {
	v.viewport.SetContent(formatter.FormatChat(v.messages))
	v.viewport.GotoBottom()
}

func (v *chatView) handleInput(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.ToLower(input))
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return v, tea.Quit
	case "/clear":
		v.messages = []domain.ChatMessage{{
			ID: uuid.NewString(), Role: domain.RoleAssistant,
			Content: intelligence.ResetGreeting, Timestamp: v.app.now(),
		}}
		v.status = "Conversation cleared."
		v.refresh()
		return v, nil
	case "/save":
		v.status = v.save()
		return v, nil
	case "/prompts":
		lines := make([]string, len(intelligence.QuickPrompts))
		for i, p := range intelligence.QuickPrompts {
			lines[i] = fmt.Sprintf("%d. %s", i+1, p)
		}
		v.status = strings.Join(lines, "\n")
		return v, nil
	case "/p":
		n := 0
		if len(fields) > 1 {
			n, _ = strconv.Atoi(fields[1])
		}
		if n < 1 || n > len(intelligence.QuickPrompts) {
			v.status = fmt.Sprintf("Pick a prompt between 1 and %d.", len(intelligence.QuickPrompts))
			return v, nil
		}
		input = intelligence.QuickPrompts[n-1]
	}
	return v, v.ask(input)
}

// ask records the question and returns a command that fetches the reply.
func (v *chatView) ask(question string) tea.Cmd {
	history := append([]domain.ChatMessage(nil), v.messages...)
	v.messages = append(v.messages, domain.ChatMessage{
		ID: uuid.NewString(), Role: domain.RoleUser, Content: question, Timestamp: v.app.now(),
	})
	v.waiting = true
	v.refresh()

	ctx, assistant := v.ctx, v.app.Assistant
	return func() tea.Msg {
		reply, err := assistant.Ask(ctx, history, question)
		return answerMsg{reply: reply, err: err}
	}
}

func (v *chatView) save() string {
	if v.app.Library == nil {
		return "The library is not available."
	}
	item, err := intelligence.ConversationItem(v.messages, v.app.now())
	if err != nil {
		return "Could not save: " + err.Error()
	}
	item.UserID = v.app.userID()
	if _, err := v.app.Library.Save(v.ctx, item); err != nil {
		return "Could not save: " + err.Error()
	}
	return "Saved as " + item.Title + "."
}
