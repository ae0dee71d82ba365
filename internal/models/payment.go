package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentSuccess PaymentStatus = "Success"
	PaymentFailed  PaymentStatus = "Failed"
)

type PaymentCurrency string

const (
	CurrencyEUR PaymentCurrency = "EUR"
	CurrencyUSD PaymentCurrency = "USD"
)

type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID       string `json:"id" bun:"id,pk"`
	TicketID string `json:"ticket_id" bun:"ticket_id,notnull"`
	UserID   string `json:"user_id" bun:"user_id,notnull"`
	EventID  string `json:"event_id" bun:"event_id,notnull"`

	// Amount is in minor units.
	Amount   uint            `json:"amount" bun:"amount,notnull"`
	Currency PaymentCurrency `json:"currency" bun:"currency,notnull"`

	Status    PaymentStatus `json:"status" bun:"status,notnull"`
	CreatedAt time.Time     `json:"created_at" bun:"created_at,notnull"`
}
