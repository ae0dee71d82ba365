package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `json:"id" bun:"id,pk"`
	Title       string `json:"title" bun:"title,notnull"`
	Description string `json:"description" bun:"description"`
	Location    string `json:"location" bun:"location"`

	// RemainingSeats is adjusted only through the seat-delta endpoint.
	Capacity       uint `json:"capacity" bun:"capacity,notnull"`
	RemainingSeats uint `json:"remaining_seats" bun:"remaining_seats,notnull"`

	// Price is in minor units (cents).
	Price uint `json:"price" bun:"price,notnull"`

	CreatorID string    `json:"creator_id" bun:"creator_id,notnull"`
	Date      time.Time `json:"date" bun:"date,notnull"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull"`
}
