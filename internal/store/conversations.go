package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/christopherklint97/planr/internal/models"
)

const DefaultHistoryLimit = 50

type Conversation struct {
	ID           int64
	UserID       int64
	Message      string
	Response     string
	MessageType  models.Channel
	ResponseType models.Channel
	Intent       models.Intent
	CreatedAt    time.Time
}

func (db *DB) InsertConversation(c *Conversation) (*Conversation, error) {
	created := time.Now()
	result, err := db.Exec(
		`INSERT INTO conversations (user_id, message, response, message_type, response_type, intent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Message, c.Response, string(c.MessageType), string(c.ResponseType),
		sql.NullString{String: string(c.Intent), Valid: c.Intent != ""},
		formatTime(created),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading conversation id: %w", err)
	}

	saved := *c
	saved.ID = id
	saved.CreatedAt = parseTime(formatTime(created))
	return &saved, nil
}

// GetConversationHistory returns a user's most recent turns, newest first.
// A limit of zero or less means DefaultHistoryLimit.
func (db *DB) GetConversationHistory(userID int64, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := db.Query(
		`SELECT id, user_id, message, response, message_type, response_type, intent, created_at
		 FROM conversations
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var history []Conversation
	for rows.Next() {
		var c Conversation
		var messageType, responseType, createdStr string
		var intent sql.NullString

		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Message, &c.Response, &messageType, &responseType, &intent, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}

		c.MessageType = models.Channel(messageType)
		c.ResponseType = models.Channel(responseType)
		c.Intent = models.Intent(intent.String)
		c.CreatedAt = parseTime(createdStr)
		history = append(history, c)
	}

	return history, rows.Err()
}
