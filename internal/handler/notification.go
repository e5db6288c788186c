package handler

import (
	"net/http"

	"github.com/awadhalla/souq/internal/service"
)

// NotificationHandler serves the user's in-app notification feed.
type NotificationHandler struct {
	notifications service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	notifications, err := h.notifications.List(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
