package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ticketly/internal/models"
	"ticketly/internal/svcerr"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svcerr.NotFoundf("no event was found with id %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	res, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "location", "date").
		Where("id = ?", event.ID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, svcerr.NotFoundf("no event was found with id %s", event.ID)
	}
	return d.GetEventByID(ctx, event.ID)
}

func (d *DB) DeleteEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := d.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, err = d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ApplySeatDelta adjusts remaining_seats by delta in a single conditional
// update. The bounds guard lives in the WHERE clause so two concurrent
// decrements of the last seat cannot both succeed.
func (d *DB) ApplySeatDelta(ctx context.Context, id string, delta int) (*models.Event, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("remaining_seats = remaining_seats + ?", delta).
		Where("id = ?", id).
		Where("remaining_seats + ? >= 0", delta).
		Where("remaining_seats + ? <= capacity", delta).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		exists, err := d.Bun.NewSelect().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exists(ctx)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, svcerr.NotFoundf("no event was found with id %s", id)
		}
		return nil, svcerr.Conflictf("seat adjustment by %d is out of bounds for event %s", delta, id)
	}

	return d.GetEventByID(ctx, id)
}
