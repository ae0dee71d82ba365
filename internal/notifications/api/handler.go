package api

import (
	"encoding/json"
	"net/http"

	"ticketly/internal/auth"
	"ticketly/internal/models"
	"ticketly/internal/notifications"
	"ticketly/internal/svcerr"
	"ticketly/internal/utils"
)

type Handler struct {
	NotificationService *notifications.NotificationService
}

// Dispatch is internal-only; callers treat it as fire-and-forget.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req models.TriggerNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	notification, err := h.NotificationService.Dispatch(r.Context(), req)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to dispatch the notification.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Notification accepted.", notification))
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	list, err := h.NotificationService.List(r.Context(), claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to list notifications.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Notifications successfully retrieved.", list))
}
