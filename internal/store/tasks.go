package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/christopherklint97/planr/internal/models"
)

type Task struct {
	ID                int64
	UserID            int64
	Title             string
	Description       *string
	Priority          models.Priority
	Status            models.Status
	DueDate           *time.Time
	EstimatedDuration *int // minutes
	ActualDuration    *int // minutes
	Tags              []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TaskUpdate changes only the fields that are set. The Clear flags null out
// the matching nullable column.
type TaskUpdate struct {
	Title             *string
	Description       *string
	Priority          *models.Priority
	Status            *models.Status
	DueDate           *time.Time
	EstimatedDuration *int
	ActualDuration    *int
	Tags              []string

	ClearDescription       bool
	ClearDueDate           bool
	ClearEstimatedDuration bool
}

// TaskFilter narrows GetUserTasks. Zero values match everything.
type TaskFilter struct {
	Status   models.Status
	Priority models.Priority
}

const taskColumns = `id, user_id, title, description, priority, status, due_date,
	estimated_duration, actual_duration, tags, created_at, updated_at`

// CreateTask inserts a task. Priority defaults to medium and status to pending.
func (db *DB) CreateTask(t *Task) (*Task, error) {
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.StatusPending
	}
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return nil, err
	}

	now := formatTime(time.Now())
	result, err := db.Exec(
		`INSERT INTO tasks (user_id, title, description, priority, status, due_date,
			estimated_duration, actual_duration, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Title, nullString(t.Description), string(t.Priority), string(t.Status),
		nullTime(t.DueDate), nullInt(t.EstimatedDuration), nullInt(t.ActualDuration),
		tags, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading task id: %w", err)
	}
	return db.GetTask(id)
}

// GetTask returns nil, nil when no task has the given id.
func (db *DB) GetTask(id int64) (*Task, error) {
	tasks, err := db.queryTasks(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

func (db *DB) UpdateTask(id int64, u TaskUpdate) (*Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	switch {
	case u.ClearDescription:
		set("description", nil)
	case u.Description != nil:
		set("description", *u.Description)
	}
	if u.Priority != nil {
		set("priority", string(*u.Priority))
	}
	if u.Status != nil {
		set("status", string(*u.Status))
	}
	switch {
	case u.ClearDueDate:
		set("due_date", nil)
	case u.DueDate != nil:
		set("due_date", formatTime(*u.DueDate))
	}
	switch {
	case u.ClearEstimatedDuration:
		set("estimated_duration", nil)
	case u.EstimatedDuration != nil:
		set("estimated_duration", *u.EstimatedDuration)
	}
	if u.ActualDuration != nil {
		set("actual_duration", *u.ActualDuration)
	}
	if u.Tags != nil {
		tags, err := encodeTags(u.Tags)
		if err != nil {
			return nil, err
		}
		set("tags", tags)
	}

	args = append(args, id)
	result, err := db.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking task update: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("task with id %d: %w", id, ErrNotFound)
	}
	return db.GetTask(id)
}

func (db *DB) GetUserTasks(userID int64, f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(f.Priority))
	}
	query += ` ORDER BY id ASC`
	return db.queryTasks(query, args...)
}

// DeleteTask removes a task and returns the row as it was before deletion.
func (db *DB) DeleteTask(id int64) (*Task, error) {
	t, err := db.GetTask(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task with id %d: %w", id, ErrNotFound)
	}
	if _, err := db.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting task: %w", err)
	}
	return t, nil
}

func (db *DB) queryTasks(query string, args ...any) ([]Task, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var description, dueDate sql.NullString
		var estimated, actual sql.NullInt64
		var priority, status, tags, createdStr, updatedStr string

		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &description, &priority, &status, &dueDate,
			&estimated, &actual, &tags, &createdStr, &updatedStr,
		); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}

		t.Description = stringPtr(description)
		t.Priority = models.Priority(priority)
		t.Status = models.Status(status)
		t.DueDate = timePtr(dueDate)
		t.EstimatedDuration = intPtr(estimated)
		t.ActualDuration = intPtr(actual)
		t.CreatedAt = parseTime(createdStr)
		t.UpdatedAt = parseTime(updatedStr)
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for task %d: %w", t.ID, err)
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(data), nil
}
