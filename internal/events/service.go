// Package events owns seat inventory. remaining_seats is mutated exclusively
// through ApplySeatDelta so every adjustment goes through the one conditional
// update that can lose the race safely.
package events

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
	CreateEvent(ctx context.Context, event models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) (*models.Event, error)
	ApplySeatDelta(ctx context.Context, id string, delta int) (*models.Event, error)
}

type EventService struct {
	DB  DBLayer
	Log *logger.Logger
}

var validate = validator.New()

func NewEventService(db DBLayer, log *logger.Logger) *EventService {
	return &EventService{DB: db, Log: log}
}

func (s *EventService) CreateEvent(ctx context.Context, req models.CreateEventRequest, creatorID string) (*models.Event, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcerr.Validationf("invalid event payload: %v", err)
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
		// A new event starts fully available.
		RemainingSeats: req.Capacity,
		Price:          req.Price,
		CreatorID:      creatorID,
		Date:           req.Date,
		CreatedAt:      time.Now(),
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.Log.LogDatabase("INSERT", "events", fmt.Sprintf("Event %s created with %d seats", event.ID, event.Capacity))
	return &event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

func (s *EventService) UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest, actorID string, role models.AuthRole) (*models.Event, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcerr.Validationf("invalid event payload: %v", err)
	}

	existing, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && existing.CreatorID != actorID {
		return nil, svcerr.Forbiddenf("only the creator of an event or an admin can update it")
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Location = req.Location
	existing.Date = req.Date

	return s.DB.UpdateEvent(ctx, *existing)
}

func (s *EventService) DeleteEvent(ctx context.Context, id string, actorID string, role models.AuthRole) (*models.Event, error) {
	existing, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && existing.CreatorID != actorID {
		return nil, svcerr.Forbiddenf("only the creator of an event or an admin can delete it")
	}
	return s.DB.DeleteEvent(ctx, id)
}

// ApplySeatDelta is the internal-callers-only mutation path for seat counts.
func (s *EventService) ApplySeatDelta(ctx context.Context, id string, delta int) (*models.Event, error) {
	event, err := s.DB.ApplySeatDelta(ctx, id, delta)
	if err != nil {
		s.Log.LogDatabase("UPDATE", "events", fmt.Sprintf("Seat delta %+d on event %s rejected: %v", delta, id, err))
		return nil, err
	}
	s.Log.LogDatabase("UPDATE", "events", fmt.Sprintf("Seat delta %+d on event %s, %d seats remaining", delta, id, event.RemainingSeats))
	return event, nil
}
