package postgres

import (
	"context"
	"errors"
	"fmt"

	"solace-backend/internal/crypto"
	"solace-backend/internal/models"
	"solace-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message content is stored as BYTEA: either the raw UTF-8 text or, when the
// store was built with an AEAD, the AES-GCM ciphertext (nonce-prefixed).

const appendMessage = `-- name: AppendMessage :one
INSERT INTO messages (
    id, conversation_id, user_id, role, content, mood_tag, provider
) VALUES (
    $1, $2, $3, $4, $5, $6, $7
)
RETURNING id, seq, conversation_id, user_id, role, content, mood_tag, provider, created_at;
`

// AppendMessage durably writes one message. The database assigns seq (a
// BIGSERIAL, the conversation's insertion order) and created_at.
func (s *PostgresStore) AppendMessage(ctx context.Context, arg store.AppendMessageParams) (*models.Message, error) {
	if arg.ConversationID == uuid.Nil || arg.UserID == uuid.Nil || arg.Role == "" || arg.Content == "" {
		return nil, store.ErrInvalid
	}

	content := []byte(arg.Content)
	if s.aead != nil {
		var err error
		content, err = crypto.Encrypt(s.aead, content)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt message content: %w", err)
		}
	}

	row := s.db.QueryRow(ctx, appendMessage,
		uuid.New(),
		arg.ConversationID,
		arg.UserID,
		arg.Role,
		content,
		arg.MoodTag,
		arg.Provider,
	)

	msg, err := s.scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("database error appending message: %w", err)
	}
	return msg, nil
}

const getMessageSeq = `-- name: GetMessageSeq :one
SELECT seq FROM messages
WHERE id = $1 AND conversation_id = $2 AND user_id = $3;
`

const listMessagesNewest = `-- name: ListMessagesNewest :many
SELECT id, seq, conversation_id, user_id, role, content, mood_tag, provider, created_at
FROM messages
WHERE conversation_id = $1 AND user_id = $2
ORDER BY seq DESC
LIMIT $3;
`

const listMessagesBefore = `-- name: ListMessagesBefore :many
SELECT id, seq, conversation_id, user_id, role, content, mood_tag, provider, created_at
FROM messages
WHERE conversation_id = $1 AND user_id = $2 AND seq < $3
ORDER BY seq DESC
LIMIT $4;
`

// ListMessages returns one page of the conversation, oldest first. The page
// ends just before the message identified by before; a nil before yields the
// newest page. Paging by seq (not created_at) keeps successive pages free of
// duplicates and gaps even when timestamps tie.
func (s *PostgresStore) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit int, before *uuid.UUID) ([]models.Message, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	if limit > store.MaxHistoryLimit {
		limit = store.MaxHistoryLimit
	}

	var rows pgx.Rows
	var err error
	if before != nil {
		// Resolve the cursor to its insertion position, scoped to the
		// caller's conversation so cursors cannot cross users.
		var beforeSeq int64
		err = s.db.QueryRow(ctx, getMessageSeq, *before, conversationID, userID).Scan(&beforeSeq)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, store.ErrNotFound
			}
			return nil, fmt.Errorf("database error resolving cursor: %w", err)
		}
		rows, err = s.db.Query(ctx, listMessagesBefore, conversationID, userID, beforeSeq, limit)
	} else {
		rows, err = s.db.Query(ctx, listMessagesNewest, conversationID, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("database error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := s.scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	// Query returns newest-first for the LIMIT; flip to ascending for display.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// scanMessage scans one message row and decrypts content when the store holds
// an AEAD.
func (s *PostgresStore) scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	var content []byte
	err := row.Scan(
		&msg.ID,
		&msg.Seq,
		&msg.ConversationID,
		&msg.UserID,
		&msg.Role,
		&content,
		&msg.MoodTag,
		&msg.Provider,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if s.aead != nil {
		content, err = crypto.Decrypt(s.aead, content)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt message %s: %w", msg.ID, err)
		}
	}
	msg.Content = string(content)
	return &msg, nil
}
