package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/planr/internal/config"
	"github.com/christopherklint97/planr/internal/service"
)

// Scheduler polls for due reminders and delivers them.
type Scheduler struct {
	cfg    *config.Config
	svc    *service.Service
	notify Notifier
	logger *slog.Logger
	out    io.Writer
}

func New(cfg *config.Config, svc *service.Service, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		cfg:    cfg,
		svc:    svc,
		notify: SendNotification,
		logger: logger,
		out:    os.Stdout,
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer s.removePID()

	interval := time.Duration(s.cfg.Reminders.PollSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	fmt.Fprintf(s.out, "Reminder loop started (every %s)\n", interval)

	for {
		s.Dispatch()

		nextTick := nextAlignedTick(time.Now(), interval)
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\nReminder loop stopped.")
			return nil
		case <-time.After(time.Until(nextTick)):
		}
	}
}

// Dispatch delivers every reminder that is due and marks it sent. A reminder
// whose notification fails stays pending and is retried on the next tick.
// It returns the number of reminders delivered.
func (s *Scheduler) Dispatch() int {
	var userID *int64
	if s.cfg.User.ID > 0 {
		id := s.cfg.User.ID
		userID = &id
	}

	due, err := s.svc.PendingReminders(userID)
	if err != nil {
		s.logger.Error("loading pending reminders", "error", err)
		return 0
	}

	sent := 0
	for _, r := range due {
		if s.cfg.Notifications.Enabled {
			if err := s.notify("planr", r.Message); err != nil {
				s.logger.Warn("notification failed", "reminder_id", r.ID, "error", err)
				continue
			}
		}
		fmt.Fprintf(s.out, "%s  %s [%s]\n", r.ReminderTime.Local().Format("15:04"), r.Message, r.ReminderType)

		if _, err := s.svc.MarkReminderSent(r.ID); err != nil {
			s.logger.Error("marking reminder sent", "reminder_id", r.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("delivered reminders", "count", sent)
	}
	return sent
}

// nextAlignedTick returns the next multiple of interval after now, so polls
// land on round clock times.
func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = time.Minute
	}
	return now.Truncate(interval).Add(interval)
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "planr.pid"), nil
}

func (s *Scheduler) writePID() error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	path, err := pidPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (s *Scheduler) removePID() {
	if path, err := pidPath(); err == nil {
		os.Remove(path)
	}
}

func ReadPID() (int, error) {
	path, err := pidPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running reminder loop found")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}

	return pid, nil
}
