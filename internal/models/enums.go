package models

import "fmt"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for scheduling. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (want low, medium, high or urgent)", s)
	}
	return p, nil
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (want pending, in_progress, completed or cancelled)", s)
	}
	return st, nil
}

// Channel is the medium a message or reply travels over.
type Channel string

const (
	ChannelText  Channel = "text"
	ChannelVoice Channel = "voice"
)

func (c Channel) Valid() bool {
	return c == ChannelText || c == ChannelVoice
}

func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid channel %q (want text or voice)", s)
	}
	return c, nil
}

type ReminderType string

const (
	ReminderTaskDue   ReminderType = "task_due"
	ReminderTimeBlock ReminderType = "time_block"
	ReminderCustom    ReminderType = "custom"
)

func (r ReminderType) Valid() bool {
	switch r {
	case ReminderTaskDue, ReminderTimeBlock, ReminderCustom:
		return true
	}
	return false
}

func ParseReminderType(s string) (ReminderType, error) {
	r := ReminderType(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid reminder type %q (want task_due, time_block or custom)", s)
	}
	return r, nil
}

// Intent is what a user message is asking for.
type Intent string

const (
	IntentAddTask      Intent = "add_task"
	IntentUpdateTask   Intent = "update_task"
	IntentScheduleTime Intent = "schedule_time"
	IntentSetReminder  Intent = "set_reminder"
	IntentListTasks    Intent = "list_tasks"
	IntentGeneralQuery Intent = "general_query"

	// IntentVoiceProcessed is recorded for voice input, which bypasses
	// text classification.
	IntentVoiceProcessed Intent = "voice_input_processed"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentAddTask, IntentUpdateTask, IntentScheduleTime, IntentSetReminder,
		IntentListTasks, IntentGeneralQuery, IntentVoiceProcessed:
		return true
	}
	return false
}
