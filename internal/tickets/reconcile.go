package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticketly/internal/kafka"
	"ticketly/internal/logger"
	"ticketly/internal/models"
)

// Reconciler is the extension point for repairing the create path's known
// gap: tickets stuck Pending because a downstream call failed mid-saga. It
// only reports suspects; any corrective action stays a human decision.
type Reconciler struct {
	DB        DBLayer
	Publisher EventPublisher
	Log       *logger.Logger
	Interval  time.Duration
	MaxAge    time.Duration
}

func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.ReportOrphans(ctx); err != nil {
				r.Log.Error("RECONCILE", fmt.Sprintf("Reconciliation pass failed: %v", err))
			}
		}
	}
}

// ReportOrphans lists Pending tickets older than MaxAge and publishes each as
// a reconciliation event.
func (r *Reconciler) ReportOrphans(ctx context.Context) ([]models.Ticket, error) {
	cutoff := time.Now().Add(-r.MaxAge)
	orphans, err := r.DB.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for _, ticket := range orphans {
		r.Log.Warn("RECONCILE", fmt.Sprintf("Ticket %s has been Pending since %s (event %s, user %s)",
			ticket.ID, ticket.PurchaseDate.Format(time.RFC3339), ticket.EventID, ticket.UserID))
		if r.Publisher != nil {
			if value, err := json.Marshal(ticket); err == nil {
				_ = r.Publisher.Publish(kafka.TopicTicketReconciliation, ticket.ID, value)
			}
		}
	}

	return orphans, nil
}
