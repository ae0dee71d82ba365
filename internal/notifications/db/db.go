package db

import (
	"context"

	"github.com/uptrace/bun"

	"ticketly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateNotification(ctx context.Context, notification models.Notification) error {
	_, err := d.Bun.NewInsert().Model(&notification).Exec(ctx)
	return err
}

func (d *DB) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (d *DB) ListNotificationsByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
