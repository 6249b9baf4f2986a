package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/planr/internal/models"
	"github.com/christopherklint97/planr/internal/planner"
	"github.com/christopherklint97/planr/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.DB, *store.User) {
	t.Helper()
	db, err := store.OpenPath(filepath.Join(t.TempDir(), "planr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := New(db, nil)
	u, err := svc.CreateUser("ada@example.com", "Ada", nil)
	require.NoError(t, err)
	return svc, db, u
}

func est(n int) *int { return &n }

var testDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestGenerateTimeBlocks(t *testing.T) {
	svc, db, u := newTestService(t)

	for _, tk := range []store.Task{
		{UserID: u.ID, Title: "Medium Task", Priority: models.PriorityMedium, EstimatedDuration: est(45)},
		{UserID: u.ID, Title: "Urgent Task", Priority: models.PriorityUrgent, EstimatedDuration: est(60)},
		{UserID: u.ID, Title: "High Task", Priority: models.PriorityHigh, EstimatedDuration: est(30)},
	} {
		_, err := svc.CreateTask(tk)
		require.NoError(t, err)
	}

	blocks, err := svc.GenerateTimeBlocks(GenerateInput{UserID: u.ID, Date: testDate, WorkStart: "09:00", WorkEnd: "17:00"})
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	want := []struct {
		title      string
		start, end string
	}{
		{"Urgent Task", "09:00", "10:00"},
		{"High Task", "10:15", "10:45"},
		{"Medium Task", "11:00", "11:45"},
	}
	for i, w := range want {
		assert.Equal(t, w.title, blocks[i].Title)
		assert.Equal(t, w.start, blocks[i].StartTime.UTC().Format("15:04"))
		assert.Equal(t, w.end, blocks[i].EndTime.UTC().Format("15:04"))
		assert.True(t, blocks[i].IsAISuggested)
		require.NotNil(t, blocks[i].TaskID)
		assert.NotZero(t, blocks[i].ID)
	}

	stored, err := db.GetUserTimeBlocks(u.ID, &testDate)
	require.NoError(t, err)
	assert.Equal(t, blocks, stored)

	last, err := svc.LastPlannedDate(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", last)
}

func TestGenerateTimeBlocks_OnlyEstimatedPendingTasks(t *testing.T) {
	svc, _, u := newTestService(t)

	_, err := svc.CreateTask(store.Task{UserID: u.ID, Title: "A", Priority: models.PriorityHigh, EstimatedDuration: est(30)})
	require.NoError(t, err)
	_, err = svc.CreateTask(store.Task{UserID: u.ID, Title: "B", Priority: models.PriorityUrgent})
	require.NoError(t, err)
	done, err := svc.CreateTask(store.Task{UserID: u.ID, Title: "C", Priority: models.PriorityUrgent, EstimatedDuration: est(20)})
	require.NoError(t, err)
	completed := models.StatusCompleted
	_, err = svc.UpdateTask(done.ID, store.TaskUpdate{Status: &completed})
	require.NoError(t, err)

	blocks, err := svc.GenerateTimeBlocks(GenerateInput{UserID: u.ID, Date: testDate, WorkStart: "09:00", WorkEnd: "17:00"})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "A", blocks[0].Title)
}

func TestGenerateTimeBlocks_NothingToPlan(t *testing.T) {
	svc, db, u := newTestService(t)

	blocks, err := svc.GenerateTimeBlocks(GenerateInput{UserID: u.ID, Date: testDate, WorkStart: "09:00", WorkEnd: "17:00"})
	require.NoError(t, err)
	assert.Empty(t, blocks)

	_, err = svc.CreateTask(store.Task{UserID: u.ID, Title: "long", EstimatedDuration: est(120)})
	require.NoError(t, err)
	blocks, err = svc.GenerateTimeBlocks(GenerateInput{UserID: u.ID, Date: testDate, WorkStart: "09:00", WorkEnd: "10:00"})
	require.NoError(t, err)
	assert.Empty(t, blocks)

	stored, err := db.GetUserTimeBlocks(u.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, stored)

	last, err := svc.LastPlannedDate(u.ID)
	require.NoError(t, err)
	assert.Empty(t, last, "an empty plan is not recorded")
}

func TestGenerateTimeBlocks_Preconditions(t *testing.T) {
	svc, _, u := newTestService(t)

	_, err := svc.GenerateTimeBlocks(GenerateInput{UserID: u.ID + 99, Date: testDate, WorkStart: "09:00", WorkEnd: "17:00"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GenerateTimeBlocks(GenerateInput{UserID: u.ID, Date: testDate, WorkStart: "nine", WorkEnd: "17:00"})
	assert.ErrorIs(t, err, planner.ErrInvalidClock)
}

func TestProcessConversation(t *testing.T) {
	svc, db, u := newTestService(t)

	conv, err := svc.ProcessConversation(ConversationInput{
		UserID:      u.ID,
		Message:     "Can you add a task for groceries?",
		MessageType: models.ChannelText,
	})
	require.NoError(t, err)
	assert.NotZero(t, conv.ID)
	assert.Equal(t, models.IntentAddTask, conv.Intent)
	assert.Contains(t, conv.Response, "tasks")
	assert.Equal(t, models.ChannelText, conv.ResponseType)

	conv, err = svc.ProcessConversation(ConversationInput{
		UserID:       u.ID,
		Message:      "Schedule my afternoon",
		MessageType:  models.ChannelVoice,
		ResponseType: models.ChannelVoice,
	})
	require.NoError(t, err)
	assert.Equal(t, models.IntentScheduleTime, conv.Intent)
	assert.Equal(t, models.ChannelVoice, conv.MessageType)
	assert.Equal(t, models.ChannelVoice, conv.ResponseType)

	history, err := svc.ConversationHistory(u.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Schedule my afternoon", history[0].Message)

	_, err = svc.ProcessConversation(ConversationInput{UserID: u.ID + 1, Message: "hi"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	stored, err := db.GetConversationHistory(u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestProcessVoiceInput(t *testing.T) {
	svc, _, u := newTestService(t)

	conv, err := svc.ProcessVoiceInput(VoiceInput{UserID: u.ID, AudioData: "UklGRiQAAABXQVZFZm10IBAAAAABAAEA"})
	require.NoError(t, err)
	assert.Equal(t, models.IntentVoiceProcessed, conv.Intent)
	assert.Equal(t, models.ChannelVoice, conv.MessageType)
	assert.Equal(t, models.ChannelText, conv.ResponseType)
	assert.Contains(t, conv.Message, "Processed voice input: UklGRi")

	conv, err = svc.ProcessVoiceInput(VoiceInput{UserID: u.ID, AudioData: "AAAA", VoicePreference: "calm"})
	require.NoError(t, err)
	assert.Equal(t, models.ChannelVoice, conv.ResponseType)

	_, err = svc.ProcessVoiceInput(VoiceInput{UserID: u.ID + 1, AudioData: "AAAA"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecords(t *testing.T) {
	svc, _, u := newTestService(t)

	_, err := svc.CreateTask(store.Task{UserID: u.ID})
	assert.Error(t, err, "title required")
	_, err = svc.CreateTask(store.Task{UserID: u.ID, Title: "x", Priority: "asap"})
	assert.Error(t, err)
	_, err = svc.CreateTask(store.Task{UserID: u.ID + 5, Title: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	bad := models.Status("someday")
	_, err = svc.UpdateTask(1, store.TaskUpdate{Status: &bad})
	assert.Error(t, err)

	start := testDate.Add(9 * time.Hour)
	_, err = svc.CreateTimeBlock(store.TimeBlock{UserID: u.ID, Title: "backwards", StartTime: start, EndTime: start})
	assert.Error(t, err)
	block, err := svc.CreateTimeBlock(store.TimeBlock{UserID: u.ID, Title: "Standup", StartTime: start, EndTime: start.Add(15 * time.Minute)})
	require.NoError(t, err)
	assert.False(t, block.IsAISuggested)

	_, err = svc.CreateReminder(store.Reminder{UserID: u.ID, Message: "x", ReminderTime: start, ReminderType: "weekly"})
	assert.Error(t, err)
}

func TestPendingReminders(t *testing.T) {
	svc, _, u := newTestService(t)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	r, err := svc.CreateReminder(store.Reminder{
		UserID:       u.ID,
		Message:      "Stretch",
		ReminderTime: now.Add(-time.Minute),
		ReminderType: models.ReminderCustom,
	})
	require.NoError(t, err)
	_, err = svc.CreateReminder(store.Reminder{
		UserID:       u.ID,
		Message:      "Tomorrow",
		ReminderTime: now.Add(24 * time.Hour),
		ReminderType: models.ReminderCustom,
	})
	require.NoError(t, err)

	due, err := svc.PendingReminders(&u.ID)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, r.ID, due[0].ID)

	_, err = svc.MarkReminderSent(r.ID)
	require.NoError(t, err)
	due, err = svc.PendingReminders(nil)
	require.NoError(t, err)
	assert.Empty(t, due)
}
