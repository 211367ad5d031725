package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solace-backend/internal/llm"
	"solace-backend/internal/models"
	"solace-backend/internal/store"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Chat turn errors. Handlers map these to HTTP status codes.
var (
	ErrInvalidInput        = errors.New("message text cannot be empty")
	ErrStoreFailure        = errors.New("conversation store failure")
	ErrNoProviderAvailable = errors.New("no AI provider available")
	ErrCancelled           = errors.New("chat turn cancelled")
)

// defaultSystemPrompt frames every AI reply. Kept deliberately short; prompt
// quality is not this service's concern.
const defaultSystemPrompt = "You are a supportive wellness companion. " +
	"Listen carefully, respond with warmth, and keep replies concise. " +
	"You are not a medical professional and never present yourself as one."

// Generator produces one reply for a request. Satisfied by *llm.Orchestrator.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (*llm.Result, error)
}

// TurnRequest is one incoming chat message. A nil ConversationID starts a new
// conversation.
type TurnRequest struct {
	ConversationID *uuid.UUID
	Text           string
	MoodTag        *string
}

// TurnResult is a completed turn: both sides of the exchange persisted.
type TurnResult struct {
	UserMessage *models.Message
	AIMessage   *models.Message
	Provider    string
}

// ChatService is the single entry point for chat turns: it validates input,
// persists the user's message, invokes the fallback orchestrator and persists
// the AI's reply.
type ChatService struct {
	store         store.Store
	generator     Generator
	historyWindow int
	systemPrompt  string
}

// NewChatService creates a ChatService. historyWindow is the number of prior
// messages handed to the orchestrator as context (<= 0 selects 10).
func NewChatService(s store.Store, generator Generator, historyWindow int) *ChatService {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &ChatService{
		store:         s,
		generator:     generator,
		historyWindow: historyWindow,
		systemPrompt:  defaultSystemPrompt,
	}
}

// HandleTurn runs one chat turn for the authenticated user.
//
// The user's message is persisted before any provider is called, so a failed
// write aborts the turn with ErrStoreFailure and an AI reply can never exist
// without its triggering message. When orchestration fails terminally the
// returned error wraps ErrNoProviderAvailable and the partial result still
// carries the stored user message so callers can render it.
func (s *ChatService) HandleTurn(ctx context.Context, userID uuid.UUID, req TurnRequest) (*TurnResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	conversationID := uuid.New()
	newConversation := true
	if req.ConversationID != nil && *req.ConversationID != uuid.Nil {
		conversationID = *req.ConversationID
		newConversation = false
	}

	userMsg, err := s.store.AppendMessage(ctx, store.AppendMessageParams{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           models.RoleUser,
		Content:        text,
		MoodTag:        req.MoodTag,
	})
	if err != nil {
		log.Errorf("[ChatService] failed to persist user message (user %s, conversation %s): %v", userID, conversationID, err)
		return nil, fmt.Errorf("%w: persisting user message: %v", ErrStoreFailure, err)
	}

	genReq := llm.GenerateRequest{
		System: s.systemPrompt,
		Prompt: text,
	}
	if req.MoodTag != nil {
		genReq.MoodTag = *req.MoodTag
	}
	if !newConversation {
		genReq.History = s.contextWindow(ctx, conversationID, userID, userMsg.ID)
	}

	result, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		partial := &TurnResult{UserMessage: userMsg}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			// Caller went away; the user message stays, no AI message is written.
			return partial, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		var allFailed *llm.AllProvidersFailedError
		if errors.As(err, &allFailed) {
			for name, perr := range allFailed.Failures {
				log.Warnf("[ChatService] provider %s terminal failure for conversation %s: %s", name, conversationID, perr.Kind)
			}
		}
		log.Errorf("[ChatService] orchestration failed for conversation %s: %v", conversationID, err)
		return partial, fmt.Errorf("%w: %v", ErrNoProviderAvailable, err)
	}

	provider := result.Provider
	aiMsg, err := s.store.AppendMessage(ctx, store.AppendMessageParams{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           models.RoleAssistant,
		Content:        result.Text,
		Provider:       &provider,
	})
	if err != nil {
		log.Errorf("[ChatService] failed to persist AI message (conversation %s, provider %s): %v", conversationID, provider, err)
		return &TurnResult{UserMessage: userMsg}, fmt.Errorf("%w: persisting AI message: %v", ErrStoreFailure, err)
	}

	return &TurnResult{
		UserMessage: userMsg,
		AIMessage:   aiMsg,
		Provider:    provider,
	}, nil
}

// History returns one page of the user's conversation, oldest first.
// Delegates paging semantics to the store; user scoping happens there too.
func (s *ChatService) History(ctx context.Context, userID, conversationID uuid.UUID, limit int, before *uuid.UUID) ([]models.Message, error) {
	messages, err := s.store.ListMessages(ctx, conversationID, userID, limit, before)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err // Propagate not found error
		}
		return nil, fmt.Errorf("%w: listing messages: %v", ErrStoreFailure, err)
	}
	return messages, nil
}

// contextWindow loads the turns preceding the just-written user message. A
// read failure here degrades to an uncontextualized reply rather than failing
// the turn: the user's message is already safe.
func (s *ChatService) contextWindow(ctx context.Context, conversationID, userID, beforeID uuid.UUID) []llm.Turn {
	messages, err := s.store.ListMessages(ctx, conversationID, userID, s.historyWindow, &beforeID)
	if err != nil {
		log.Warnf("[ChatService] failed to load context for conversation %s, replying without history: %v", conversationID, err)
		return nil
	}

	turns := make([]llm.Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, llm.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}
