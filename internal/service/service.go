// Package service implements the assistant's request handlers: it checks
// preconditions, runs the interpreter or planner and persists the results.
package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/christopherklint97/planr/internal/assistant"
	"github.com/christopherklint97/planr/internal/models"
	"github.com/christopherklint97/planr/internal/planner"
	"github.com/christopherklint97/planr/internal/store"
)

var ErrUserNotFound = errors.New("user not found")

type Service struct {
	db     *store.DB
	logger *slog.Logger
	now    func() time.Time
}

func New(db *store.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{db: db, logger: logger, now: time.Now}
}

func (s *Service) requireUser(id int64) (*store.User, error) {
	u, err := s.db.GetUser(id)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	return u, nil
}

type ConversationInput struct {
	UserID       int64
	Message      string
	MessageType  models.Channel
	ResponseType models.Channel // empty means text
}

// ProcessConversation interprets one message and records the turn.
func (s *Service) ProcessConversation(in ConversationInput) (*store.Conversation, error) {
	if _, err := s.requireUser(in.UserID); err != nil {
		return nil, err
	}
	if in.MessageType == "" {
		in.MessageType = models.ChannelText
	}

	turn := assistant.Interpret(in.Message, in.MessageType, in.ResponseType)
	s.logger.Debug("interpreted message",
		"user_id", in.UserID,
		"intent", turn.Intent,
		"message_len", len(in.Message),
	)

	return s.saveTurn(in.UserID, turn)
}

type VoiceInput struct {
	UserID          int64
	AudioData       string // base64
	VoicePreference string
}

func (s *Service) ProcessVoiceInput(in VoiceInput) (*store.Conversation, error) {
	if _, err := s.requireUser(in.UserID); err != nil {
		return nil, err
	}

	turn := assistant.ProcessVoice(in.AudioData, in.VoicePreference)
	s.logger.Debug("processed voice input", "user_id", in.UserID, "audio_len", len(in.AudioData))

	return s.saveTurn(in.UserID, turn)
}

func (s *Service) saveTurn(userID int64, turn assistant.Turn) (*store.Conversation, error) {
	saved, err := s.db.InsertConversation(&store.Conversation{
		UserID:       userID,
		Message:      turn.Message,
		Response:     turn.Reply,
		MessageType:  turn.MessageChannel,
		ResponseType: turn.ReplyChannel,
		Intent:       turn.Intent,
	})
	if err != nil {
		return nil, fmt.Errorf("saving conversation: %w", err)
	}
	return saved, nil
}

type GenerateInput struct {
	UserID    int64
	Date      time.Time
	WorkStart string // HH:MM
	WorkEnd   string // HH:MM
}

// GenerateTimeBlocks plans the user's pending tasks into the working hours
// of the given date and stores the resulting blocks. Existing blocks on the
// calendar are not consulted.
func (s *Service) GenerateTimeBlocks(in GenerateInput) ([]store.TimeBlock, error) {
	if _, err := s.requireUser(in.UserID); err != nil {
		return nil, err
	}

	window, err := planner.NewWindow(in.Date, in.WorkStart, in.WorkEnd)
	if err != nil {
		return nil, err
	}

	tasks, err := s.db.GetUserTasks(in.UserID, store.TaskFilter{Status: models.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("loading pending tasks: %w", err)
	}

	items := make([]planner.WorkItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, planner.WorkItem{
			ID:               t.ID,
			Title:            t.Title,
			Priority:         t.Priority,
			Status:           t.Status,
			EstimatedMinutes: t.EstimatedDuration,
		})
	}

	planned := planner.Generate(items, window)
	s.logger.Info("generated plan",
		"user_id", in.UserID,
		"date", window.Start.Format("2006-01-02"),
		"window", window.Start.Format("15:04")+"-"+window.End.Format("15:04"),
		"pending", len(tasks),
		"blocks", len(planned),
	)
	if len(planned) == 0 {
		return []store.TimeBlock{}, nil
	}

	rows := make([]store.TimeBlock, 0, len(planned))
	for _, b := range planned {
		taskID := b.WorkItemID
		rows = append(rows, store.TimeBlock{
			UserID:        in.UserID,
			TaskID:        &taskID,
			Title:         b.Title,
			StartTime:     b.Start,
			EndTime:       b.End,
			IsAISuggested: b.AISuggested,
		})
	}

	saved, err := s.db.InsertTimeBlocks(rows)
	if err != nil {
		return nil, fmt.Errorf("saving generated blocks: %w", err)
	}
	if err := s.db.SetState(lastPlanKey(in.UserID), window.Start.Format(time.DateOnly)); err != nil {
		return nil, fmt.Errorf("recording plan date: %w", err)
	}
	return saved, nil
}

func lastPlanKey(userID int64) string {
	return fmt.Sprintf("last_plan_date:%d", userID)
}

// LastPlannedDate returns the most recent day (YYYY-MM-DD) blocks were
// generated for, or "" when the user has never planned.
func (s *Service) LastPlannedDate(userID int64) (string, error) {
	d, err := s.db.GetState(lastPlanKey(userID))
	if err != nil {
		return "", fmt.Errorf("reading last plan date: %w", err)
	}
	return d, nil
}
