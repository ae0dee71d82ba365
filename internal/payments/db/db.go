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

func (d *DB) CreatePayment(ctx context.Context, payment models.Payment) error {
	_, err := d.Bun.NewInsert().Model(&payment).Exec(ctx)
	return err
}

func (d *DB) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := d.Bun.NewSelect().
		Model(&payment).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svcerr.NotFoundf("no payment was found with id %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (d *DB) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := d.Bun.NewSelect().
		Model(&payments).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (d *DB) ListPendingPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := d.Bun.NewSelect().
		Model(&payments).
		Where("status = ?", models.PaymentPending).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (d *DB) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Payment, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, svcerr.NotFoundf("no payment was found with id %s", id)
	}
	return d.GetPaymentByID(ctx, id)
}

func (d *DB) DeletePayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := d.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, err = d.Bun.NewDelete().
		Model((*models.Payment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return payment, nil
}
