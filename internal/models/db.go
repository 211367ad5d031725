package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. Only the chat turn service writes messages, and it only
// writes these two roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents a user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	// Add other fields as needed (e.g., DisplayName, LastLoginAt)
}

// Message represents one persisted side of a conversational turn.
// Messages are append-only: once written they are never mutated or deleted
// by this service. Seq is a server-assigned insertion counter that gives a
// strict total order within a conversation even when created_at ties.
type Message struct {
	ID             uuid.UUID `db:"id"`
	Seq            int64     `db:"seq"`
	ConversationID uuid.UUID `db:"conversation_id"`
	UserID         uuid.UUID `db:"user_id"`
	Role           string    `db:"role"` // RoleUser or RoleAssistant
	Content        string    `db:"content"`
	MoodTag        *string   `db:"mood_tag"` // optional self-reported mood on user messages
	Provider       *string   `db:"provider"` // producing provider on assistant messages
	CreatedAt      time.Time `db:"created_at"`
}
