package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"solace-backend/internal/auth"
	"solace-backend/internal/models"
	"solace-backend/internal/services"
	"solace-backend/internal/store"
	"solace-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// StatusClientClosedRequest is the nginx convention for a caller that
// disconnected before the response was ready.
const StatusClientClosedRequest = 499

// ChatService defines the interface expected from the chat turn service.
type ChatService interface {
	HandleTurn(ctx context.Context, userID uuid.UUID, req services.TurnRequest) (*services.TurnResult, error)
	History(ctx context.Context, userID, conversationID uuid.UUID, limit int, before *uuid.UUID) ([]models.Message, error)
}

// ChatHandlers handles HTTP requests related to chat turns and history.
type ChatHandlers struct {
	chatService ChatService
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService ChatService) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
	}
}

// HandleChatTurn handles POST /v1/chat: one full conversational turn.
func (h *ChatHandlers) HandleChatTurn(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ChatTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()

	result, err := h.chatService.HandleTurn(r.Context(), userID, services.TurnRequest{
		ConversationID: req.ConversationID,
		Text:           req.Text,
		MoodTag:        req.MoodTag,
	})
	if err != nil {
		h.respondTurnError(w, result, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, models.ChatTurnResponse{
		UserMessage: models.NewMessageResponse(result.UserMessage),
		AIMessage:   models.NewMessageResponse(result.AIMessage),
		Provider:    result.Provider,
	})
}

// respondTurnError maps chat service errors to HTTP responses. A failed turn
// whose user message was persisted gets the degraded-service shape so clients
// can keep rendering the saved message.
func (h *ChatHandlers) respondTurnError(w http.ResponseWriter, result *services.TurnResult, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		httputil.RespondError(w, http.StatusBadRequest, "Message text is required")
	case errors.Is(err, services.ErrNoProviderAvailable):
		resp := models.DegradedTurnResponse{
			Error: "The AI companion is temporarily unavailable. Your message was saved; please try again shortly.",
			Code:  "no_provider_available",
		}
		if result != nil && result.UserMessage != nil {
			userMsg := models.NewMessageResponse(result.UserMessage)
			resp.UserMessage = &userMsg
		}
		httputil.RespondJSON(w, http.StatusServiceUnavailable, resp)
	case errors.Is(err, services.ErrCancelled):
		// The client is gone; the status is mostly for access logs.
		httputil.RespondError(w, StatusClientClosedRequest, "Request cancelled")
	case errors.Is(err, services.ErrStoreFailure):
		httputil.RespondError(w, http.StatusBadGateway, "Failed to persist the conversation")
	default:
		log.Errorf("Chat turn handler: unexpected error: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Chat turn failed due to an internal error")
	}
}

// HandleConversationHistory handles GET /v1/conversations/{conversationID}/messages.
// Query params: limit (optional, defaults in the store) and before (optional
// message id cursor from a previous page's next_cursor).
func (h *ChatHandlers) HandleConversationHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		// Unparsable limits fall back to the store default rather than erroring.
		limit, _ = strconv.Atoi(limitStr)
	}

	var before *uuid.UUID
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		beforeID, err := uuid.Parse(beforeStr)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid before cursor")
			return
		}
		before = &beforeID
	}

	messages, err := h.chatService.History(r.Context(), userID, conversationID, limit, before)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Cursor message not found")
			return
		}
		log.Errorf("History handler failed for conversation %s: %v", conversationID, err)
		httputil.RespondError(w, http.StatusBadGateway, "Failed to load conversation history")
		return
	}

	resp := models.ConversationHistoryResponse{
		Messages: make([]models.MessageResponse, 0, len(messages)),
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, models.NewMessageResponse(&messages[i]))
	}
	// Messages are ascending; the oldest entry is the cursor for the next
	// older page. Only offer it when the page was full.
	if limit > 0 && len(messages) == limit {
		resp.NextCursor = messages[0].ID.String()
	} else if limit <= 0 && len(messages) == store.DefaultHistoryLimit {
		resp.NextCursor = messages[0].ID.String()
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
