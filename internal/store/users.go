package store

import (
	"database/sql"
	"fmt"
	"time"
)

type User struct {
	ID              int64
	Email           string
	Name            string
	VoicePreference *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (db *DB) CreateUser(u *User) (*User, error) {
	now := time.Now()
	result, err := db.Exec(
		`INSERT INTO users (email, name, voice_preference, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.Name, nullString(u.VoicePreference), formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return db.GetUser(id)
}

// GetUser returns nil, nil when no user has the given id.
func (db *DB) GetUser(id int64) (*User, error) {
	var u User
	var voice sql.NullString
	var createdStr, updatedStr string

	err := db.QueryRow(
		`SELECT id, email, name, voice_preference, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &voice, &createdStr, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.VoicePreference = stringPtr(voice)
	u.CreatedAt = parseTime(createdStr)
	u.UpdatedAt = parseTime(updatedStr)
	return &u, nil
}
