// Package payments owns payment intake and settlement. Intake is a trusted
// insert from the tickets service; settlement happens later, in the sweep.
package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/svcerr"
)

type DBLayer interface {
	CreatePayment(ctx context.Context, payment models.Payment) error
	GetPaymentByID(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListPendingPayments(ctx context.Context) ([]models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Payment, error)
	DeletePayment(ctx context.Context, id string) (*models.Payment, error)
}

type PaymentService struct {
	DB  DBLayer
	Log *logger.Logger
}

var validate = validator.New()

func NewPaymentService(db DBLayer, log *logger.Logger) *PaymentService {
	return &PaymentService{DB: db, Log: log}
}

// CreatePayment records a pending charge. The amount is whatever the tickets
// service supplied; no cross-check against the event price happens here.
func (s *PaymentService) CreatePayment(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcerr.Validationf("invalid payment payload: %v", err)
	}

	payment := models.Payment{
		ID:        uuid.NewString(),
		TicketID:  req.TicketID,
		UserID:    req.UserID,
		EventID:   req.EventID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    models.PaymentPending,
		CreatedAt: time.Now(),
	}

	if err := s.DB.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.Log.LogDatabase("INSERT", "payments", fmt.Sprintf("Pending payment %s recorded for ticket %s", payment.ID, payment.TicketID))
	return &payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id, userID string, role models.AuthRole) (*models.Payment, error) {
	payment, err := s.DB.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && payment.UserID != userID {
		return nil, svcerr.Forbiddenf("only an admin or the owner of the payment can access it")
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.DB.ListPayments(ctx)
}

func (s *PaymentService) UpdateStatus(ctx context.Context, id string, req models.UpdatePaymentStatusRequest) (*models.Payment, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcerr.Validationf("invalid status payload: %v", err)
	}
	return s.DB.UpdatePaymentStatus(ctx, id, req.Status)
}

func (s *PaymentService) DeletePayment(ctx context.Context, id string) (*models.Payment, error) {
	return s.DB.DeletePayment(ctx, id)
}
