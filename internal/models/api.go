package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChatTurnRequest defines the body for sending one chat message.
// ConversationID is optional: when absent the turn starts a new conversation.
type ChatTurnRequest struct {
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	Text           string     `json:"text"`
	MoodTag        *string    `json:"mood_tag,omitempty"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// MessageResponse is the API view of a stored message.
type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	MoodTag        *string   `json:"mood_tag,omitempty"`
	Provider       *string   `json:"provider,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMessageResponse maps a DB message to its API view.
func NewMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		MoodTag:        m.MoodTag,
		Provider:       m.Provider,
		CreatedAt:      m.CreatedAt,
	}
}

// ChatTurnResponse is returned when a full turn completed: both sides of the
// exchange are persisted.
type ChatTurnResponse struct {
	UserMessage MessageResponse `json:"user_message"`
	AIMessage   MessageResponse `json:"ai_message"`
	Provider    string          `json:"provider"`
}

// ConversationHistoryResponse is one page of a conversation, oldest first.
// NextCursor, when set, is the id to pass as `before` for the next older page.
type ConversationHistoryResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// DegradedTurnResponse is returned when every provider failed but the user's
// message was still saved. It is deliberately distinct from ErrorResponse so
// clients can render the saved message with a friendly retry hint.
type DegradedTurnResponse struct {
	Error       string           `json:"error"`
	Code        string           `json:"code"`
	UserMessage *MessageResponse `json:"user_message,omitempty"`
}
