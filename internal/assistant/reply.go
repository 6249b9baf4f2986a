package assistant

import "strings"

const (
	replyTasks     = "I can help you manage your tasks. What would you like to do?"
	replySchedule  = "I can help you schedule your time blocks. When would you like to work on this?"
	replyReminders = "I can set up reminders for you. What would you like to be reminded about?"
	replyGreeting  = "Hello! I'm your AI assistant. How can I help you today?"
	replyDefault   = "I understand. How can I assist you further?"
)

// GenerateReply picks a canned reply for a message. It runs its own rules,
// separate from ClassifyIntent, so the two can disagree.
func GenerateReply(message string) string {
	m := strings.ToLower(message)

	switch {
	case strings.Contains(m, "task") || strings.Contains(m, "todo"):
		return replyTasks
	case strings.Contains(m, "schedule") || strings.Contains(m, "time"):
		return replySchedule
	case strings.Contains(m, "reminder"):
		return replyReminders
	case strings.Contains(m, "hello") || strings.Contains(m, "hi"):
		return replyGreeting
	default:
		return replyDefault
	}
}
