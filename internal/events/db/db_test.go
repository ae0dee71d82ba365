package db_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ticketly/internal/events/db"
	"ticketly/internal/models"
	"ticketly/internal/svcerr"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// One connection so concurrent updates serialize on the same in-memory DB.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Event)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create events table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedEvent(t *testing.T, eventDB *db.DB, capacity, remaining uint) models.Event {
	event := models.Event{
		ID:             uuid.New().String(),
		Title:          "Go Conference",
		Description:    "Talks and workshops",
		Location:       "Berlin",
		Capacity:       capacity,
		RemainingSeats: remaining,
		Price:          4500,
		CreatorID:      uuid.New().String(),
		Date:           time.Now().Add(48 * time.Hour),
		CreatedAt:      time.Now(),
	}
	if err := eventDB.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	return event
}

func TestCreateAndGetEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 100, 100)

	got, err := eventDB.GetEventByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, uint(100), got.RemainingSeats)

	got, err = eventDB.GetEventByID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, svcerr.ErrNotFound)
}

func TestApplySeatDelta(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 10, 10)
	ctx := context.Background()

	updated, err := eventDB.ApplySeatDelta(ctx, event.ID, -1)
	assert.NoError(t, err)
	assert.Equal(t, uint(9), updated.RemainingSeats)

	updated, err = eventDB.ApplySeatDelta(ctx, event.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, uint(10), updated.RemainingSeats)
}

func TestApplySeatDeltaBelowZero(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 5, 0)

	updated, err := eventDB.ApplySeatDelta(context.Background(), event.ID, -1)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, svcerr.ErrConflict)

	// The failed attempt must not have touched the row.
	got, err := eventDB.GetEventByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint(0), got.RemainingSeats)
}

func TestApplySeatDeltaAboveCapacity(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 5, 5)

	updated, err := eventDB.ApplySeatDelta(context.Background(), event.ID, 1)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, svcerr.ErrConflict)

	got, err := eventDB.GetEventByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint(5), got.RemainingSeats)
}

func TestApplySeatDeltaMissingEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	updated, err := eventDB.ApplySeatDelta(context.Background(), "missing", -1)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, svcerr.ErrNotFound)
}

// Concurrent decrements of a single remaining seat: exactly one caller wins,
// the rest are rejected by the conditional update.
func TestApplySeatDeltaLastSeatRace(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 10, 1)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eventDB.ApplySeatDelta(context.Background(), event.ID, -1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, svcerr.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, conflicts)

	got, err := eventDB.GetEventByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint(0), got.RemainingSeats)
}

func TestUpdateEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 10, 10)
	event.Title = "Go Conference 2027"
	event.Location = "Munich"

	updated, err := eventDB.UpdateEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, "Go Conference 2027", updated.Title)
	assert.Equal(t, "Munich", updated.Location)

	event.ID = "missing"
	updated, err = eventDB.UpdateEvent(context.Background(), event)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, svcerr.ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 10, 10)

	deleted, err := eventDB.DeleteEvent(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, event.ID, deleted.ID)

	_, err = eventDB.GetEventByID(context.Background(), event.ID)
	assert.ErrorIs(t, err, svcerr.ErrNotFound)
}
