package scheduler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/planr/internal/config"
	"github.com/christopherklint97/planr/internal/models"
	"github.com/christopherklint97/planr/internal/service"
	"github.com/christopherklint97/planr/internal/store"
)

func setup(t *testing.T, notifications bool) (*Scheduler, *service.Service, *store.User, *bytes.Buffer) {
	t.Helper()
	t.Setenv("PLANR_HOME", t.TempDir())

	db, err := store.OpenPath(filepath.Join(t.TempDir(), "planr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.New(db, nil)
	u, err := svc.CreateUser("ada@example.com", "Ada", nil)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.User.ID = u.ID
	cfg.Notifications.Enabled = notifications

	var out bytes.Buffer
	s := New(&cfg, svc, nil)
	s.out = &out
	return s, svc, u, &out
}

func addReminder(t *testing.T, svc *service.Service, userID int64, msg string, at time.Time) *store.Reminder {
	t.Helper()
	r, err := svc.CreateReminder(store.Reminder{
		UserID:       userID,
		Message:      msg,
		ReminderTime: at,
		ReminderType: models.ReminderCustom,
	})
	require.NoError(t, err)
	return r
}

func TestDispatch_DeliversDueReminders(t *testing.T) {
	s, svc, u, out := setup(t, true)

	var delivered []string
	s.notify = func(title, message string) error {
		delivered = append(delivered, message)
		return nil
	}

	addReminder(t, svc, u.ID, "Stand up and stretch", time.Now().Add(-2*time.Minute))
	addReminder(t, svc, u.ID, "Review plan", time.Now().Add(-time.Minute))
	addReminder(t, svc, u.ID, "Not yet", time.Now().Add(time.Hour))

	assert.Equal(t, 2, s.Dispatch())
	assert.Equal(t, []string{"Stand up and stretch", "Review plan"}, delivered)
	assert.Contains(t, out.String(), "Review plan")

	assert.Equal(t, 0, s.Dispatch(), "sent reminders are not delivered twice")
}

func TestDispatch_FailedNotificationStaysPending(t *testing.T) {
	s, svc, u, _ := setup(t, true)
	s.notify = func(title, message string) error { return errors.New("no notification daemon") }

	addReminder(t, svc, u.ID, "Call back", time.Now().Add(-time.Minute))

	assert.Equal(t, 0, s.Dispatch())
	pending, err := svc.PendingReminders(&u.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestDispatch_NotificationsDisabled(t *testing.T) {
	s, svc, u, out := setup(t, false)
	s.notify = func(title, message string) error {
		t.Fatal("notifier must not be called when notifications are disabled")
		return nil
	}

	addReminder(t, svc, u.ID, "Drink water", time.Now().Add(-time.Minute))

	assert.Equal(t, 1, s.Dispatch())
	assert.Contains(t, out.String(), "Drink water")
}

func TestNextAlignedTick(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 7, 42, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 8, 0, 0, time.UTC), nextAlignedTick(now, time.Minute))
	assert.Equal(t, time.Date(2024, 1, 15, 10, 15, 0, 0, time.UTC), nextAlignedTick(now, 15*time.Minute))
	assert.Equal(t, time.Date(2024, 1, 15, 10, 8, 0, 0, time.UTC), nextAlignedTick(now, 0))
}

func TestRun_WritesAndRemovesPID(t *testing.T) {
	s, _, _, _ := setup(t, false)
	s.cfg.Reminders.PollSeconds = 3600

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		pid, err := ReadPID()
		return err == nil && pid == os.Getpid()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	_, err := ReadPID()
	assert.Error(t, err)
}
