package payments_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ticketly/internal/models"
	"ticketly/internal/payments"
)

// MockTicketActivator is a mock implementation of the TicketActivator interface
type MockTicketActivator struct {
	mock.Mock
}

func (m *MockTicketActivator) ActivateTicket(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

// MockNotifier is a mock implementation of the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID, message string) error {
	args := m.Called(ctx, userID, message)
	return args.Error(0)
}

func pendingPayment() models.Payment {
	return models.Payment{
		ID:       uuid.New().String(),
		TicketID: uuid.New().String(),
		UserID:   uuid.New().String(),
		EventID:  uuid.New().String(),
		Amount:   4500,
		Currency: models.CurrencyEUR,
		Status:   models.PaymentPending,
	}
}

func newSweeper() (*payments.Sweeper, *MockDBLayer, *MockTicketActivator, *MockNotifier) {
	mockDB := new(MockDBLayer)
	mockTickets := new(MockTicketActivator)
	mockNotifier := new(MockNotifier)
	sweeper := &payments.Sweeper{
		DB:       mockDB,
		Tickets:  mockTickets,
		Notifier: mockNotifier,
	}
	return sweeper, mockDB, mockTickets, mockNotifier
}

func TestSweepSettlesAndActivates(t *testing.T) {
	sweeper, mockDB, mockTickets, mockNotifier := newSweeper()

	payment := pendingPayment()
	settled := payment
	settled.Status = models.PaymentSuccess

	mockDB.On("ListPendingPayments", mock.Anything).Return([]models.Payment{payment}, nil)
	mockDB.On("UpdatePaymentStatus", mock.Anything, payment.ID, models.PaymentSuccess).Return(&settled, nil)
	mockNotifier.On("Notify", mock.Anything, payment.UserID, mock.Anything).Return(nil)
	mockTickets.On("ActivateTicket", mock.Anything, payment.TicketID).Return(nil)

	err := sweeper.Sweep(context.Background())

	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
	mockTickets.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

// A failure on one payment must not block the rest of the pass.
func TestSweepIsolatesPerPaymentFailures(t *testing.T) {
	sweeper, mockDB, mockTickets, mockNotifier := newSweeper()

	broken := pendingPayment()
	healthy := pendingPayment()
	settled := healthy
	settled.Status = models.PaymentSuccess

	mockDB.On("ListPendingPayments", mock.Anything).Return([]models.Payment{broken, healthy}, nil)
	mockDB.On("UpdatePaymentStatus", mock.Anything, broken.ID, models.PaymentSuccess).Return(nil, errors.New("row locked"))
	mockDB.On("UpdatePaymentStatus", mock.Anything, healthy.ID, models.PaymentSuccess).Return(&settled, nil)
	mockNotifier.On("Notify", mock.Anything, healthy.UserID, mock.Anything).Return(nil)
	mockTickets.On("ActivateTicket", mock.Anything, healthy.TicketID).Return(nil)

	err := sweeper.Sweep(context.Background())

	assert.NoError(t, err)
	// The broken payment is skipped entirely, not retried within the pass.
	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, broken.UserID, mock.Anything)
	mockTickets.AssertNotCalled(t, "ActivateTicket", mock.Anything, broken.TicketID)
	mockTickets.AssertCalled(t, "ActivateTicket", mock.Anything, healthy.TicketID)
}

// An activation failure leaves the payment settled. The ticket stays Pending
// until something else activates it.
func TestSweepActivationFailureLeavesPaymentSettled(t *testing.T) {
	sweeper, mockDB, mockTickets, mockNotifier := newSweeper()

	payment := pendingPayment()
	settled := payment
	settled.Status = models.PaymentSuccess

	mockDB.On("ListPendingPayments", mock.Anything).Return([]models.Payment{payment}, nil)
	mockDB.On("UpdatePaymentStatus", mock.Anything, payment.ID, models.PaymentSuccess).Return(&settled, nil)
	mockNotifier.On("Notify", mock.Anything, payment.UserID, mock.Anything).Return(nil)
	mockTickets.On("ActivateTicket", mock.Anything, payment.TicketID).Return(errors.New("tickets service down"))

	err := sweeper.Sweep(context.Background())

	assert.NoError(t, err)
	// No status rollback call happened.
	mockDB.AssertNumberOfCalls(t, "UpdatePaymentStatus", 1)
}

func TestSweepNotificationFailureIsBestEffort(t *testing.T) {
	sweeper, mockDB, mockTickets, mockNotifier := newSweeper()

	payment := pendingPayment()
	settled := payment
	settled.Status = models.PaymentSuccess

	mockDB.On("ListPendingPayments", mock.Anything).Return([]models.Payment{payment}, nil)
	mockDB.On("UpdatePaymentStatus", mock.Anything, payment.ID, models.PaymentSuccess).Return(&settled, nil)
	mockNotifier.On("Notify", mock.Anything, payment.UserID, mock.Anything).Return(errors.New("timeout"))
	mockTickets.On("ActivateTicket", mock.Anything, payment.TicketID).Return(nil)

	err := sweeper.Sweep(context.Background())

	assert.NoError(t, err)
	mockTickets.AssertCalled(t, "ActivateTicket", mock.Anything, payment.TicketID)
}

// A second pass over an empty pending set touches nothing, so repeated sweeps
// converge instead of re-settling.
func TestSweepNoPendingPaymentsIsNoOp(t *testing.T) {
	sweeper, mockDB, mockTickets, mockNotifier := newSweeper()

	mockDB.On("ListPendingPayments", mock.Anything).Return([]models.Payment{}, nil)

	err := sweeper.Sweep(context.Background())

	assert.NoError(t, err)
	mockDB.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	mockTickets.AssertNotCalled(t, "ActivateTicket", mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepListFailureSurfaces(t *testing.T) {
	sweeper, mockDB, _, _ := newSweeper()

	mockDB.On("ListPendingPayments", mock.Anything).Return(nil, errors.New("connection reset"))

	err := sweeper.Sweep(context.Background())

	assert.Error(t, err)
}
