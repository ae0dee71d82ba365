// Package notifications is the dispatch collaborator: it accepts or rejects
// a notify request and records it. Delivery mechanics live elsewhere.
package notifications

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
	CreateNotification(ctx context.Context, notification models.Notification) error
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID string) ([]models.Notification, error)
}

type NotificationService struct {
	DB  DBLayer
	Log *logger.Logger
}

var validate = validator.New()

func NewNotificationService(db DBLayer, log *logger.Logger) *NotificationService {
	return &NotificationService{DB: db, Log: log}
}

func (s *NotificationService) Dispatch(ctx context.Context, req models.TriggerNotificationRequest) (*models.Notification, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcerr.Validationf("invalid notification payload: %v", err)
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}

	if err := s.DB.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	s.Log.Info("NOTIFY", fmt.Sprintf("Notification %s queued for user %s", notification.ID, notification.UserID))
	return &notification, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, role models.AuthRole) ([]models.Notification, error) {
	if role.CanSeeAll() {
		return s.DB.ListNotifications(ctx)
	}
	return s.DB.ListNotificationsByUser(ctx, userID)
}
