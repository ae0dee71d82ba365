package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/auth"
	"ticketly/internal/models"
	"ticketly/internal/svcerr"
	"ticketly/internal/tickets"
	"ticketly/internal/utils"
)

type Handler struct {
	TicketService *tickets.TicketService
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	list, err := h.TicketService.ListTickets(r.Context(), claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to list tickets.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tickets successfully retrieved.", list))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	ticket, err := h.TicketService.GetTicket(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to retrieve the ticket.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket successfully retrieved.", ticket))
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	ticket, err := h.TicketService.CreateTicket(r.Context(), req)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to create the ticket.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket successfully created.", ticket))
}

// ActivateTicket is reachable only with an internal bearer; the settlement
// sweep is its caller.
func (h *Handler) ActivateTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.TicketService.ActivateTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to activate the ticket.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket is now active.", ticket))
}

func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	ticket, err := h.TicketService.CancelTicket(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to cancel the ticket.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket was successfully cancelled.", ticket))
}

func (h *Handler) RefundTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	ticket, err := h.TicketService.RefundTicket(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to refund the ticket.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket will be refunded.", ticket))
}

func (h *Handler) UpdateSeatNumber(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	var req models.UpdateTicketSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	ticket, err := h.TicketService.UpdateSeatNumber(r.Context(), chi.URLParam(r, "id"), req, claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to update the seat number.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seat number successfully updated.", ticket))
}

// DeleteTicket is admin-only, enforced by the route's role middleware.
func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.TicketService.DeleteTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to delete the ticket.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket was successfully deleted.", ticket))
}
