package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/auth"
	"ticketly/internal/models"
	"ticketly/internal/payments"
	"ticketly/internal/svcerr"
	"ticketly/internal/utils"
)

type Handler struct {
	PaymentService *payments.PaymentService
}

// CreatePayment is internal-only: the tickets service is the trusted caller.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	payment, err := h.PaymentService.CreatePayment(r.Context(), req)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to create the payment.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Payment successfully created.", payment))
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	list, err := h.PaymentService.ListPayments(r.Context())
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to list payments.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payments successfully retrieved.", list))
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized.", "missing user claims"))
		return
	}

	payment, err := h.PaymentService.GetPayment(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to retrieve the payment.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment successfully retrieved.", payment))
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body.", err.Error()))
		return
	}

	payment, err := h.PaymentService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to update the payment.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment successfully updated.", payment))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.PaymentService.DeletePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, svcerr.HTTPStatus(err), utils.ErrorResponse("Failed to delete the payment.", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment was successfully deleted.", payment))
}
