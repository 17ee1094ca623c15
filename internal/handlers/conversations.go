package handlers

import (
	"encoding/json"
	"net/http"

	"FreelanceHub/server/internal/models"
	"FreelanceHub/server/internal/services"

	"github.com/go-chi/chi/v5"
)

type ConversationHandler struct {
	Conversations services.ConversationService
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, limit := pagination(r)
	summaries, err := h.Conversations.ListConversations(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": summaries,
		"page":          page,
		"limit":         limit,
	})
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := chi.URLParam(r, "conversation_id")
	if conversationID == "" {
		http.Error(w, "Missing conversation ID", http.StatusBadRequest)
		return
	}

	page, limit := pagination(r)
	view, err := h.Conversations.GetConversation(r.Context(), userID, conversationID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type startDirectRequest struct {
	RecipientID     string `json:"recipient_id"`
	Content         string `json:"content"`
	Subject         string `json:"subject,omitempty"`
	LinkedProjectID string `json:"linked_project_id,omitempty"`
	LinkedJobID     string `json:"linked_job_id,omitempty"`
}

func (h *ConversationHandler) StartDirect(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req startDirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, msg, err := h.Conversations.StartOrAppendDirect(r.Context(), services.StartDirectInput{
		CallerID:        userID,
		RecipientID:     req.RecipientID,
		Content:         req.Content,
		Subject:         req.Subject,
		LinkedProjectID: req.LinkedProjectID,
		LinkedJobID:     req.LinkedJobID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"conversation": conv,
		"message":      msg,
	})
}

type setMutedRequest struct {
	Muted bool `json:"muted"`
}

func (h *ConversationHandler) SetMuted(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := chi.URLParam(r, "conversation_id")
	var req setMutedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Conversations.SetMuted(r.Context(), userID, conversationID, req.Muted); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"muted":           req.Muted,
	})
}

func (h *ConversationHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := chi.URLParam(r, "conversation_id")
	if err := h.Conversations.LeaveConversation(r.Context(), userID, conversationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Left conversation",
	})
}
