package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ticketly/internal/models"
	"ticketly/internal/svcerr"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	return err
}

// GetTicketByID fetches a ticket, restricted to ownerID when it is non-empty.
func (d *DB) GetTicketByID(ctx context.Context, id, ownerID string) (*models.Ticket, error) {
	var ticket models.Ticket
	q := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id)
	if ownerID != "" {
		q = q.Where("user_id = ?", ownerID)
	}
	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svcerr.NotFoundf("no ticket was found with id %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Order("purchase_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// SetTicketStatus writes status unconditionally; activation relies on this
// being idempotent in effect.
func (d *DB) SetTicketStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, svcerr.NotFoundf("no ticket was found with id %s", id)
	}
	return d.GetTicketByID(ctx, id, "")
}

// TransitionTicket moves a non-terminal ticket to target, filtered to ownerID
// when it is non-empty. The state check rides in the same conditional update
// that performs the write.
func (d *DB) TransitionTicket(ctx context.Context, id, ownerID string, target models.TicketStatus) (*models.Ticket, error) {
	q := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", target).
		Where("id = ?", id).
		Where("status IN (?)", bun.In([]models.TicketStatus{models.TicketPending, models.TicketActive}))
	if ownerID != "" {
		q = q.Where("user_id = ?", ownerID)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		existing, err := d.GetTicketByID(ctx, id, "")
		if err != nil {
			return nil, err
		}
		if ownerID != "" && existing.UserID != ownerID {
			return nil, svcerr.Forbiddenf("only the owner of a ticket or an admin can %s it", actionName(target))
		}
		return nil, svcerr.Conflictf("ticket %s is already %s and cannot transition", id, existing.Status)
	}

	return d.GetTicketByID(ctx, id, "")
}

func actionName(target models.TicketStatus) string {
	if target == models.TicketRefunded {
		return "refund"
	}
	return "cancel"
}

func (d *DB) UpdateSeatNumber(ctx context.Context, id string, seat uint) (*models.Ticket, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("seat_number = ?", seat).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, svcerr.NotFoundf("no ticket was found with id %s", id)
	}
	return d.GetTicketByID(ctx, id, "")
}

func (d *DB) SetQRCode(ctx context.Context, id string, qr []byte) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("qr_code = ?", qr).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// DeleteTicket removes the row and returns it so the caller can run its seat
// compensation.
func (d *DB) DeleteTicket(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := d.GetTicketByID(ctx, id, "")
	if err != nil {
		return nil, err
	}
	_, err = d.Bun.NewDelete().
		Model((*models.Ticket)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (d *DB) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("status = ?", models.TicketPending).
		Where("purchase_date < ?", cutoff).
		Order("purchase_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
