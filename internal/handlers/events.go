package handlers

import (
	"encoding/json"
	"net/http"

	"FreelanceHub/server/internal/services"
)

// EventHandler is the internal hook the job/project application write paths
// call after their own persistence succeeds. Dispatch is fire-and-forget, so
// this endpoint always answers 202 for a well-formed event.
type EventHandler struct {
	Notifications services.NotificationService
}

type applicationEvent struct {
	Event         string `json:"event"`
	OwnerID       string `json:"owner_id,omitempty"`
	ApplicantID   string `json:"applicant_id"`
	ReviewerID    string `json:"reviewer_id,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id"`
	ListingTitle  string `json:"listing_title,omitempty"`
	NewStatus     string `json:"new_status,omitempty"`
}

const (
	eventApplicationSubmitted     = "application_submitted"
	eventApplicationStatusChanged = "application_status_changed"
)

func (h *EventHandler) HandleApplicationEvent(w http.ResponseWriter, r *http.Request) {
	var ev applicationEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch ev.Event {
	case eventApplicationSubmitted:
		h.Notifications.NotifyNewApplication(r.Context(), ev.OwnerID, ev.ApplicantID,
			ev.ReferenceType, ev.ReferenceID, ev.ListingTitle)
	case eventApplicationStatusChanged:
		h.Notifications.NotifyApplicationStatusChange(r.Context(), ev.ApplicantID,
			ev.ReviewerID, ev.ReferenceID, ev.NewStatus)
	default:
		http.Error(w, "Unknown event", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Event accepted",
	})
}
