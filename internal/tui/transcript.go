package tui

import (
	"strings"

	"github.com/christopherklint97/planr/internal/store"
)

// maxVisibleTurns bounds how much history the chat view renders.
const maxVisibleTurns = 8

type transcriptModel struct {
	turns []store.Conversation
}

func (m *transcriptModel) add(c store.Conversation) {
	m.turns = append(m.turns, c)
}

func (m transcriptModel) View() string {
	if len(m.turns) == 0 {
		return dimStyle.Render("No messages yet.")
	}

	visible := m.turns
	if len(visible) > maxVisibleTurns {
		visible = visible[len(visible)-maxVisibleTurns:]
	}

	var sb strings.Builder
	for i, c := range visible {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(userStyle.Render("you: "))
		sb.WriteString(c.Message)
		sb.WriteString("\n")
		sb.WriteString(assistantStyle.Render("planr: "))
		sb.WriteString(c.Response)
		sb.WriteString(" ")
		sb.WriteString(dimStyle.Render("[" + string(c.Intent) + "]"))
		sb.WriteString("\n")
	}

	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
