package store

import (
	"database/sql"
	"fmt"
	"time"
)

type TimeBlock struct {
	ID            int64
	UserID        int64
	TaskID        *int64
	Title         string
	StartTime     time.Time
	EndTime       time.Time
	IsAISuggested bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const timeBlockColumns = `id, user_id, task_id, title, start_time, end_time, is_ai_suggested, created_at, updated_at`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertTimeBlock(ex execer, b *TimeBlock) (int64, error) {
	now := formatTime(time.Now())
	result, err := ex.Exec(
		`INSERT INTO time_blocks (user_id, task_id, title, start_time, end_time, is_ai_suggested, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, nullID(b.TaskID), b.Title, formatTime(b.StartTime), formatTime(b.EndTime),
		b.IsAISuggested, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting time block: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) CreateTimeBlock(b *TimeBlock) (*TimeBlock, error) {
	id, err := insertTimeBlock(db, b)
	if err != nil {
		return nil, err
	}
	return db.GetTimeBlock(id)
}

// InsertTimeBlocks stores a batch of blocks in one transaction, so either all
// of them are saved or none are.
func (db *DB) InsertTimeBlocks(blocks []TimeBlock) ([]TimeBlock, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(blocks))
	for i := range blocks {
		id, err := insertTimeBlock(tx, &blocks[i])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing time blocks: %w", err)
	}

	saved := make([]TimeBlock, 0, len(ids))
	for _, id := range ids {
		b, err := db.GetTimeBlock(id)
		if err != nil {
			return nil, err
		}
		saved = append(saved, *b)
	}
	return saved, nil
}

func (db *DB) GetTimeBlock(id int64) (*TimeBlock, error) {
	blocks, err := db.queryTimeBlocks(`SELECT `+timeBlockColumns+` FROM time_blocks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("time block with id %d: %w", id, ErrNotFound)
	}
	return &blocks[0], nil
}

// GetUserTimeBlocks lists a user's blocks by start time. When date is set,
// only blocks starting on that calendar day (in date's location) are returned.
func (db *DB) GetUserTimeBlocks(userID int64, date *time.Time) ([]TimeBlock, error) {
	query := `SELECT ` + timeBlockColumns + ` FROM time_blocks WHERE user_id = ?`
	args := []any{userID}
	if date != nil {
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.AddDate(0, 0, 1)
		query += ` AND start_time >= ? AND start_time < ?`
		args = append(args, formatTime(startOfDay), formatTime(endOfDay))
	}
	query += ` ORDER BY start_time ASC, id ASC`
	return db.queryTimeBlocks(query, args...)
}

func (db *DB) queryTimeBlocks(query string, args ...any) ([]TimeBlock, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying time blocks: %w", err)
	}
	defer rows.Close()

	var blocks []TimeBlock
	for rows.Next() {
		var b TimeBlock
		var taskID sql.NullInt64
		var startStr, endStr, createdStr, updatedStr string

		if err := rows.Scan(
			&b.ID, &b.UserID, &taskID, &b.Title, &startStr, &endStr, &b.IsAISuggested, &createdStr, &updatedStr,
		); err != nil {
			return nil, fmt.Errorf("scanning time block: %w", err)
		}

		b.TaskID = idPtr(taskID)
		b.StartTime = parseTime(startStr)
		b.EndTime = parseTime(endStr)
		b.CreatedAt = parseTime(createdStr)
		b.UpdatedAt = parseTime(updatedStr)
		blocks = append(blocks, b)
	}

	return blocks, rows.Err()
}
