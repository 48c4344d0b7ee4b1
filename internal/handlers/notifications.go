package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/middleware"
)

// NotificationHandler handles notification log requests
type NotificationHandler struct {
	notificationRepo database.NotificationRepositoryInterface
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationRepo database.NotificationRepositoryInterface) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// RegisterRoutes registers notification routes on the given router
// The router should already have the /notifications prefix
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotifications).Methods("GET")
	r.HandleFunc("/{id}/read", h.MarkRead).Methods("POST")
}

// MaxNotificationPageSize caps the limit query parameter
const MaxNotificationPageSize = 200

// ListNotifications lists notifications for the authenticated user, newest
// first. Pass unread=true to restrict to unread ones.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			if parsed > MaxNotificationPageSize {
				limit = MaxNotificationPageSize
			} else {
				limit = parsed
			}
		}
	}

	notifications, err := h.notificationRepo.GetByUserID(r.Context(), user.ID, unreadOnly, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notifications")
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

// MarkRead marks a notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid notification ID")
		return
	}

	ctx := r.Context()
	notification, err := h.notificationRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	if notification.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Notification does not belong to user")
		return
	}

	if err := h.notificationRepo.MarkRead(ctx, id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to mark notification read")
		return
	}

	notification.IsRead = true
	respondJSON(w, http.StatusOK, notification)
}
