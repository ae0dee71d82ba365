package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID        string    `json:"id" bun:"id,pk"`
	UserID    string    `json:"user_id" bun:"user_id,notnull"`
	Message   string    `json:"message" bun:"message,notnull"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull"`
}
