package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/auth"
	"ticketly/internal/events"
	"ticketly/internal/models"
	"ticketly/internal/svcerr"
	"ticketly/internal/utils"
)

type Handler struct {
	EventService *events.EventService
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListEvents(r.Context())
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to list events.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events successfully retrieved.", list))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.EventService.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to retrieve the event.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event successfully retrieved.", event))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), req, claims.UserID)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to create the event.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event successfully created.", event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req, claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to update the event.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event successfully updated.", event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	event, err := h.EventService.DeleteEvent(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to delete the event.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event was successfully deleted.", event))
}

// UpdateSeats is the seat-delta endpoint, reachable with an internal bearer
// only.
func (h *Handler) UpdateSeats(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	event, err := h.EventService.ApplySeatDelta(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to update remaining seats.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Remaining seats successfully updated.", event))
}
