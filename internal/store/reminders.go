package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/christopherklint97/planr/internal/models"
)

type Reminder struct {
	ID           int64
	UserID       int64
	TaskID       *int64
	TimeBlockID  *int64
	Message      string
	ReminderTime time.Time
	IsSent       bool
	ReminderType models.ReminderType
	CreatedAt    time.Time
}

const reminderColumns = `id, user_id, task_id, time_block_id, message, reminder_time, is_sent, reminder_type, created_at`

func (db *DB) CreateReminder(r *Reminder) (*Reminder, error) {
	result, err := db.Exec(
		`INSERT INTO reminders (user_id, task_id, time_block_id, message, reminder_time, reminder_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, nullID(r.TaskID), nullID(r.TimeBlockID), r.Message,
		formatTime(r.ReminderTime), string(r.ReminderType), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting reminder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading reminder id: %w", err)
	}
	return db.getReminder(id)
}

// GetPendingReminders returns unsent reminders due at or before now, oldest
// first. A nil userID matches every user.
func (db *DB) GetPendingReminders(userID *int64, now time.Time) ([]Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE is_sent = 0 AND reminder_time <= ?`
	args := []any{formatTime(now)}
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY reminder_time ASC, id ASC`
	return db.queryReminders(query, args...)
}

func (db *DB) MarkReminderSent(id int64) (*Reminder, error) {
	result, err := db.Exec(`UPDATE reminders SET is_sent = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("marking reminder sent: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking reminder update: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("reminder with id %d: %w", id, ErrNotFound)
	}
	return db.getReminder(id)
}

func (db *DB) getReminder(id int64) (*Reminder, error) {
	reminders, err := db.queryReminders(`SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return nil, fmt.Errorf("reminder with id %d: %w", id, ErrNotFound)
	}
	return &reminders[0], nil
}

func (db *DB) queryReminders(query string, args ...any) ([]Reminder, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var r Reminder
		var taskID, blockID sql.NullInt64
		var reminderType, timeStr, createdStr string

		if err := rows.Scan(
			&r.ID, &r.UserID, &taskID, &blockID, &r.Message, &timeStr, &r.IsSent, &reminderType, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}

		r.TaskID = idPtr(taskID)
		r.TimeBlockID = idPtr(blockID)
		r.ReminderType = models.ReminderType(reminderType)
		r.ReminderTime = parseTime(timeStr)
		r.CreatedAt = parseTime(createdStr)
		reminders = append(reminders, r)
	}

	return reminders, rows.Err()
}
