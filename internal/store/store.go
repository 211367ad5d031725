package store

import (
	"context"
	"errors"

	"solace-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// ErrInvalid is returned when an append is missing required fields.
var ErrInvalid = errors.New("invalid message")

// History paging bounds. A non-positive limit is not an error; it falls back
// to DefaultHistoryLimit.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// AppendMessageParams contains the caller-supplied fields of a new message.
// ID, Seq and CreatedAt are assigned by the store.
type AppendMessageParams struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Role           string // models.RoleUser or models.RoleAssistant
	Content        string
	MoodTag        *string
	Provider       *string
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Conversation operations.
	//
	// AppendMessage durably writes one message and returns it with the
	// server-assigned id, seq and timestamp. Once it returns, the message is
	// visible to subsequent ListMessages calls on the same store.
	AppendMessage(ctx context.Context, arg AppendMessageParams) (*models.Message, error)

	// ListMessages returns up to limit messages of the user's conversation
	// strictly older than the message identified by before (newest page when
	// before is nil), ordered oldest first for display. It returns
	// ErrNotFound when before does not identify a message in that
	// conversation.
	ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit int, before *uuid.UUID) ([]models.Message, error)
}
