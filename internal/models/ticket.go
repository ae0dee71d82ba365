package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TicketStatus string

const (
	TicketPending   TicketStatus = "Pending"
	TicketActive    TicketStatus = "Active"
	TicketCancelled TicketStatus = "Cancelled"
	TicketRefunded  TicketStatus = "Refunded"
)

// Terminal reports whether the status admits no further transition.
func (s TicketStatus) Terminal() bool {
	return s == TicketCancelled || s == TicketRefunded
}

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID         string `json:"id" bun:"id,pk"`
	EventID    string `json:"event_id" bun:"event_id,notnull"`
	UserID     string `json:"user_id" bun:"user_id,notnull"`
	SeatNumber uint   `json:"seat_number" bun:"seat_number,notnull"`

	// Price is copied from the event at purchase time, in minor units.
	Price uint `json:"price" bun:"price,notnull"`

	Status       TicketStatus `json:"status" bun:"status,notnull"`
	PurchaseDate time.Time    `json:"purchase_date" bun:"purchase_date,notnull"`

	// QRCode is the PNG entry pass, issued when the ticket activates.
	QRCode []byte `json:"qr_code,omitempty" bun:"qr_code,nullzero"`
}
