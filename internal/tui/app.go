package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/planr/internal/store"
)

type viewState int

const (
	inputView viewState = iota
	loadingView
)

// Sender processes one chat message and returns the stored turn.
type Sender func(message string) (*store.Conversation, error)

type replyMsg struct {
	conversation *store.Conversation
	err          error
}

type App struct {
	state      viewState
	input      inputModel
	spinner    spinner.Model
	transcript transcriptModel
	errMsg     string

	userName string
	send     Sender
}

func NewApp(userName string, send Sender, history []store.Conversation) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	a := &App{
		state:    inputView,
		input:    newInputModel(),
		spinner:  s,
		userName: userName,
		send:     send,
	}
	// history arrives newest first
	for i := len(history) - 1; i >= 0; i-- {
		a.transcript.add(history[i])
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.textarea.Focus(), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 4 {
			a.input.textarea.SetWidth(msg.Width - 4)
		}
		return a, nil
	case replyMsg:
		return a.handleReply(msg)
	}

	switch a.state {
	case inputView:
		return a.updateInput(msg)
	case loadingView:
		return a.updateLoading(msg)
	}

	return a, nil
}

func (a *App) View() string {
	header := titleStyle.Render("planr — chatting as " + a.userName)

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(a.transcript.View())
	sb.WriteString("\n\n")
	if a.errMsg != "" {
		sb.WriteString(errorStyle.Render("Error: ") + a.errMsg + "\n")
	}

	switch a.state {
	case loadingView:
		sb.WriteString(a.spinner.View() + " Thinking...")
	default:
		sb.WriteString(a.input.View())
	}
	return sb.String()
}

func (a *App) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "enter" {
			text := strings.TrimSpace(a.input.Value())
			if text == "" {
				return a, nil
			}
			a.state = loadingView
			a.errMsg = ""
			return a, tea.Batch(a.spinner.Tick, a.submit(text))
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

func (a *App) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	a.state = inputView
	if msg.err != nil {
		a.errMsg = msg.err.Error()
		return a, a.input.textarea.Focus()
	}

	a.transcript.add(*msg.conversation)
	a.input.textarea.Reset()
	return a, a.input.textarea.Focus()
}

func (a *App) submit(text string) tea.Cmd {
	return func() tea.Msg {
		conv, err := a.send(text)
		return replyMsg{conversation: conv, err: err}
	}
}
