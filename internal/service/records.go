package service

import (
	"fmt"
	"time"

	"github.com/christopherklint97/planr/internal/store"
)

func (s *Service) CreateUser(email, name string, voicePreference *string) (*store.User, error) {
	if email == "" || name == "" {
		return nil, fmt.Errorf("email and name are required")
	}
	return s.db.CreateUser(&store.User{Email: email, Name: name, VoicePreference: voicePreference})
}

func (s *Service) GetUser(id int64) (*store.User, error) {
	return s.requireUser(id)
}

func (s *Service) CreateTask(t store.Task) (*store.Task, error) {
	if _, err := s.requireUser(t.UserID); err != nil {
		return nil, err
	}
	if t.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", t.Priority)
	}
	created, err := s.db.CreateTask(&t)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created task", "task_id", created.ID, "user_id", created.UserID, "priority", created.Priority)
	return created, nil
}

func (s *Service) UpdateTask(id int64, u store.TaskUpdate) (*store.Task, error) {
	if u.Priority != nil && !u.Priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", *u.Priority)
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", *u.Status)
	}
	return s.db.UpdateTask(id, u)
}

func (s *Service) GetUserTasks(userID int64, f store.TaskFilter) ([]store.Task, error) {
	return s.db.GetUserTasks(userID, f)
}

func (s *Service) DeleteTask(id int64) (*store.Task, error) {
	return s.db.DeleteTask(id)
}

func (s *Service) ConversationHistory(userID int64, limit int) ([]store.Conversation, error) {
	return s.db.GetConversationHistory(userID, limit)
}

func (s *Service) CreateTimeBlock(b store.TimeBlock) (*store.TimeBlock, error) {
	if _, err := s.requireUser(b.UserID); err != nil {
		return nil, err
	}
	if !b.EndTime.After(b.StartTime) {
		return nil, fmt.Errorf("time block must end after it starts")
	}
	return s.db.CreateTimeBlock(&b)
}

func (s *Service) TimeBlocks(userID int64, date *time.Time) ([]store.TimeBlock, error) {
	return s.db.GetUserTimeBlocks(userID, date)
}

func (s *Service) CreateReminder(r store.Reminder) (*store.Reminder, error) {
	if _, err := s.requireUser(r.UserID); err != nil {
		return nil, err
	}
	if !r.ReminderType.Valid() {
		return nil, fmt.Errorf("invalid reminder type %q", r.ReminderType)
	}
	if r.Message == "" {
		return nil, fmt.Errorf("reminder message is required")
	}
	return s.db.CreateReminder(&r)
}

// PendingReminders returns reminders that are due and not yet sent. A nil
// userID covers all users.
func (s *Service) PendingReminders(userID *int64) ([]store.Reminder, error) {
	return s.db.GetPendingReminders(userID, s.now())
}

func (s *Service) MarkReminderSent(id int64) (*store.Reminder, error) {
	return s.db.MarkReminderSent(id)
}
