package handlers

import (
	"encoding/json"
	"net/http"

	"FreelanceHub/server/internal/models"
	"FreelanceHub/server/internal/services"

	"github.com/go-chi/chi/v5"
)

type MessageHandler struct {
	Messages services.MessageService
}

type postMessageRequest struct {
	Content     string   `json:"content"`
	ReplyToID   string   `json:"reply_to_id,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := chi.URLParam(r, "conversation_id")
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.Messages.PostMessage(r.Context(), services.PostMessageInput{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
		ReplyToID:      req.ReplyToID,
		Attachments:    req.Attachments,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Audit serves the raw internal message listing, soft-deleted rows included.
// It sits behind the internal route group and skips the membership gate.
func (h *MessageHandler) Audit(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversation_id")
	page, limit := pagination(r)

	messages, err := h.Messages.ListMessagesAudit(r.Context(), conversationID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"page":     page,
		"limit":    limit,
	})
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := chi.URLParam(r, "conversation_id")
	messageID := chi.URLParam(r, "message_id")
	if err := h.Messages.SoftDeleteMessage(r.Context(), conversationID, messageID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Message deleted",
	})
}
