package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticketly/internal/kafka"
	"ticketly/internal/logger"
	"ticketly/internal/models"
)

type TicketActivator interface {
	ActivateTicket(ctx context.Context, ticketID string) error
}

type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

type EventPublisher interface {
	Publish(topic, key string, value []byte) error
}

// Sweeper settles pending payments on a fixed interval. One loop runs per
// payments process; there is no claim or lease on rows, so horizontally
// scaled deployments can double-settle the same payment.
type Sweeper struct {
	DB        DBLayer
	Tickets   TicketActivator
	Notifier  Notifier
	Publisher EventPublisher
	Log       *logger.Logger
	Interval  time.Duration
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Log.Info("SWEEP", fmt.Sprintf("Settlement sweep running every %s", s.Interval))

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("SWEEP", "Settlement sweep stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.Log.Error("SWEEP", fmt.Sprintf("Settlement pass failed: %v", err))
			}
		}
	}
}

// Sweep settles every pending payment: mark Success, notify the payer, and
// activate the ticket. A failure on one payment skips to the next; a failed
// activation is not retried and leaves the payment settled.
func (s *Sweeper) Sweep(ctx context.Context) error {
	pending, err := s.DB.ListPendingPayments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending payments: %w", err)
	}

	for _, payment := range pending {
		settled, err := s.DB.UpdatePaymentStatus(ctx, payment.ID, models.PaymentSuccess)
		if err != nil {
			s.Log.LogSweep("SETTLE", payment.ID, fmt.Sprintf("Failed to mark payment settled: %v", err))
			continue
		}
		s.Log.LogSweep("SETTLE", payment.ID, fmt.Sprintf("Payment of %d %s settled", settled.Amount, settled.Currency))

		msg := fmt.Sprintf("We just received your payment of %d %s.", settled.Amount, settled.Currency)
		if err := s.Notifier.Notify(ctx, settled.UserID, msg); err != nil {
			s.Log.LogSweep("NOTIFY", payment.ID, fmt.Sprintf("Notification failed: %v", err))
		}

		if err := s.Tickets.ActivateTicket(ctx, settled.TicketID); err != nil {
			// The payment stays Success; the ticket stays Pending until
			// something else activates it. Known gap, no retry here.
			s.Log.LogSweep("ACTIVATE", payment.ID, fmt.Sprintf("Ticket %s activation failed: %v", settled.TicketID, err))
		}

		s.publish(settled)
	}

	return nil
}

func (s *Sweeper) publish(payment *models.Payment) {
	if s.Publisher == nil {
		return
	}
	value, err := json.Marshal(payment)
	if err != nil {
		return
	}
	if err := s.Publisher.Publish(kafka.TopicPaymentSettled, payment.ID, value); err != nil {
		s.Log.LogKafka("PUBLISH", kafka.TopicPaymentSettled, fmt.Sprintf("Publish failed: %v", err))
	}
}
