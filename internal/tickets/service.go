// Package tickets owns the ticket state machine and initiates the
// reservation saga: insert Pending, record the charge with the payments
// service, consume a seat, and hand settlement to the payments sweep. The
// steps are best-effort HTTP calls with no rollback; the known gaps this
// leaves are pinned by tests rather than papered over.
package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ticketly/internal/kafka"
	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/svcerr"
	"ticketly/internal/tickets/qr"
)

type DBLayer interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) error
	GetTicketByID(ctx context.Context, id, ownerID string) (*models.Ticket, error)
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	SetTicketStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error)
	TransitionTicket(ctx context.Context, id, ownerID string, target models.TicketStatus) (*models.Ticket, error)
	UpdateSeatNumber(ctx context.Context, id string, seat uint) (*models.Ticket, error)
	SetQRCode(ctx context.Context, id string, qr []byte) error
	DeleteTicket(ctx context.Context, id string) (*models.Ticket, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Ticket, error)
}

type EventGateway interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ApplySeatDelta(ctx context.Context, eventID string, delta int) error
}

type PaymentGateway interface {
	CreatePayment(ctx context.Context, req models.CreatePaymentRequest) error
}

type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

type EventPublisher interface {
	Publish(topic, key string, value []byte) error
}

type TicketService struct {
	DB        DBLayer
	Events    EventGateway
	Payments  PaymentGateway
	Notifier  Notifier
	Publisher EventPublisher
	QR        *qr.Generator
	Log       *logger.Logger

	// StrictDelete skips the seat restore for already-terminal tickets.
	// The legacy behavior restores unconditionally, double-counting seats
	// for redundant deletes.
	StrictDelete bool
}

var validate = validator.New()

func NewTicketService(db DBLayer, events EventGateway, payments PaymentGateway, notifier Notifier, log *logger.Logger) *TicketService {
	return &TicketService{DB: db, Events: events, Payments: payments, Notifier: notifier, Log: log}
}

// CreateTicket runs the forward path of the reservation saga. Once the
// Pending row is inserted there is no rollback: a failed payment create still
// surfaces an error, and the seat decrement fires regardless and is never
// checked for success.
func (s *TicketService) CreateTicket(ctx context.Context, req models.CreateTicketRequest) (*models.Ticket, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcerr.Validationf("invalid ticket payload: %v", err)
	}
	if !req.ExpirationDate.After(time.Now()) {
		return nil, svcerr.Validationf("card expiration date is in the past")
	}

	event, err := s.Events.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.RemainingSeats < 1 {
		return nil, svcerr.Upstreamf("no more seats are available for this event")
	}
	if event.Date.Before(time.Now()) {
		return nil, svcerr.Upstreamf("this event is not available")
	}
	if req.SeatNumber > event.Capacity {
		return nil, svcerr.Upstreamf("this seat does not exist")
	}

	ticket := models.Ticket{
		ID:           uuid.NewString(),
		EventID:      req.EventID,
		UserID:       req.UserID,
		SeatNumber:   req.SeatNumber,
		Price:        event.Price,
		Status:       models.TicketPending,
		PurchaseDate: time.Now(),
	}

	if err := s.DB.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	s.Log.LogSaga("CREATE", ticket.ID, fmt.Sprintf("Pending ticket inserted for event %s seat %d", ticket.EventID, ticket.SeatNumber))

	payErr := s.Payments.CreatePayment(ctx, models.CreatePaymentRequest{
		Amount:   event.Price,
		Currency: req.Currency,
		UserID:   req.UserID,
		EventID:  req.EventID,
		TicketID: ticket.ID,
	})
	if payErr != nil {
		s.Log.LogSaga("CREATE", ticket.ID, fmt.Sprintf("Payment create failed, ticket left Pending: %v", payErr))
	}

	// Fire-and-forget: the result is logged but the reservation proceeds
	// on the assumption the seat was consumed.
	if err := s.Events.ApplySeatDelta(ctx, ticket.EventID, -1); err != nil {
		s.Log.LogSaga("CREATE", ticket.ID, fmt.Sprintf("Seat decrement failed for event %s: %v", ticket.EventID, err))
	}

	if payErr != nil {
		return nil, svcerr.Upstreamf("failed to register the payment: %v", payErr)
	}

	s.publish(kafka.TopicTicketLifecycle, ticket.ID, ticket)
	return &ticket, nil
}

// ActivateTicket is called by the payments settlement sweep. The write is
// unconditional, so replayed activations are harmless.
func (s *TicketService) ActivateTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.SetTicketStatus(ctx, ticketID, models.TicketActive)
	if err != nil {
		return nil, err
	}
	s.Log.LogSaga("ACTIVATE", ticket.ID, "Ticket is now active")

	if s.QR != nil {
		if png, qrErr := s.QR.EntryPass(*ticket); qrErr != nil {
			s.Log.Error("TICKETS", fmt.Sprintf("Failed to issue entry pass for %s: %v", ticket.ID, qrErr))
		} else if qrErr = s.DB.SetQRCode(ctx, ticket.ID, png); qrErr == nil {
			ticket.QRCode = png
		}
	}

	if err := s.Notifier.Notify(ctx, ticket.UserID, "Your ticket is now active."); err != nil {
		return nil, svcerr.Upstreamf("ticket activated but notification failed: %v", err)
	}

	s.publish(kafka.TopicTicketLifecycle, ticket.ID, ticket)
	return ticket, nil
}

// CancelTicket moves a non-terminal ticket to Cancelled and gives its seat
// back. Only the owner or an admin may cancel.
func (s *TicketService) CancelTicket(ctx context.Context, ticketID, userID string, role models.AuthRole) (*models.Ticket, error) {
	ticket, err := s.DB.TransitionTicket(ctx, ticketID, ownerFilter(userID, role), models.TicketCancelled)
	if err != nil {
		return nil, err
	}
	s.Log.LogSaga("CANCEL", ticket.ID, "Ticket cancelled, restoring seat")

	s.restoreSeat(ctx, ticket)

	if err := s.Notifier.Notify(ctx, ticket.UserID, "Your ticket was successfully cancelled."); err != nil {
		return nil, svcerr.Upstreamf("ticket cancelled but notification failed: %v", err)
	}

	s.publish(kafka.TopicTicketLifecycle, ticket.ID, ticket)
	return ticket, nil
}

// RefundTicket mirrors CancelTicket with the Refunded terminal state.
func (s *TicketService) RefundTicket(ctx context.Context, ticketID, userID string, role models.AuthRole) (*models.Ticket, error) {
	ticket, err := s.DB.TransitionTicket(ctx, ticketID, ownerFilter(userID, role), models.TicketRefunded)
	if err != nil {
		return nil, err
	}
	s.Log.LogSaga("REFUND", ticket.ID, "Ticket refunded, restoring seat")

	if err := s.Notifier.Notify(ctx, ticket.UserID, "Your ticket will be refunded soon."); err != nil {
		return nil, svcerr.Upstreamf("ticket refunded but notification failed: %v", err)
	}

	s.restoreSeat(ctx, ticket)

	s.publish(kafka.TopicTicketLifecycle, ticket.ID, ticket)
	return ticket, nil
}

// DeleteTicket destroys the row (admin only, enforced at the route) and
// restores the seat. Without StrictDelete the restore runs even for tickets
// that already gave their seat back when they were cancelled or refunded.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.DeleteTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.Log.LogSaga("DELETE", ticket.ID, fmt.Sprintf("Ticket deleted in status %s", ticket.Status))

	if s.StrictDelete && ticket.Status.Terminal() {
		s.Log.LogSaga("DELETE", ticket.ID, "Strict mode: seat restore skipped for terminal ticket")
	} else {
		s.restoreSeat(ctx, ticket)
	}

	s.publish(kafka.TopicTicketLifecycle, ticket.ID, ticket)
	return ticket, nil
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID, userID string, role models.AuthRole) (*models.Ticket, error) {
	owner := ""
	if !role.CanSeeAll() {
		owner = userID
	}
	return s.DB.GetTicketByID(ctx, ticketID, owner)
}

func (s *TicketService) ListTickets(ctx context.Context, userID string, role models.AuthRole) ([]models.Ticket, error) {
	if role.CanSeeAll() {
		return s.DB.ListTickets(ctx)
	}
	return s.DB.ListTicketsByUser(ctx, userID)
}

func (s *TicketService) UpdateSeatNumber(ctx context.Context, ticketID string, req models.UpdateTicketSeatRequest, userID string, role models.AuthRole) (*models.Ticket, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcerr.Validationf("invalid seat payload: %v", err)
	}

	existing, err := s.DB.GetTicketByID(ctx, ticketID, "")
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && existing.UserID != userID {
		return nil, svcerr.Forbiddenf("only the owner of a ticket or an admin can update its seat number")
	}

	ticket, err := s.DB.UpdateSeatNumber(ctx, ticketID, req.SeatNumber)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your ticket informations have changed:\n Status: %s\n Seat Number: %d.", ticket.Status, ticket.SeatNumber)
	if err := s.Notifier.Notify(ctx, ticket.UserID, msg); err != nil {
		return nil, svcerr.Upstreamf("seat updated but notification failed: %v", err)
	}

	return ticket, nil
}

func ownerFilter(userID string, role models.AuthRole) string {
	if role == models.RoleAdmin {
		return ""
	}
	return userID
}

// restoreSeat is the saga's compensating action. Failures are logged, not
// surfaced, matching the forward path's unchecked decrement.
func (s *TicketService) restoreSeat(ctx context.Context, ticket *models.Ticket) {
	if err := s.Events.ApplySeatDelta(ctx, ticket.EventID, 1); err != nil {
		s.Log.LogSaga("RESTORE", ticket.ID, fmt.Sprintf("Seat restore failed for event %s: %v", ticket.EventID, err))
	}
}

func (s *TicketService) publish(topic, key string, payload interface{}) {
	if s.Publisher == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.Publisher.Publish(topic, key, value); err != nil {
		s.Log.LogKafka("PUBLISH", topic, fmt.Sprintf("Publish failed: %v", err))
	}
}
