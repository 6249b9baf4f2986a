package assistant

import (
	"strings"

	"github.com/christopherklint97/planr/internal/models"
)

// ClassifyIntent maps a message to an intent. Rules are checked in order and
// the first match wins; anything unmatched is a general query.
func ClassifyIntent(message string) models.Intent {
	m := strings.ToLower(message)

	switch {
	case strings.Contains(m, "add") && strings.Contains(m, "task"):
		return models.IntentAddTask
	case strings.Contains(m, "update") && strings.Contains(m, "task"):
		return models.IntentUpdateTask
	case strings.Contains(m, "schedule") || strings.Contains(m, "time block"):
		return models.IntentScheduleTime
	case strings.Contains(m, "reminder"):
		return models.IntentSetReminder
	case strings.Contains(m, "list") && strings.Contains(m, "task"):
		return models.IntentListTasks
	default:
		return models.IntentGeneralQuery
	}
}
