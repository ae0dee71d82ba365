package models

import "time"

// CreateTicketRequest carries both the seat selection and the card fields the
// payments service will record. The card is never stored on the ticket.
type CreateTicketRequest struct {
	EventID    string          `json:"event_id" validate:"required"`
	UserID     string          `json:"user_id" validate:"required"`
	SeatNumber uint            `json:"seat_number" validate:"min=1"`
	Currency   PaymentCurrency `json:"currency" validate:"required,oneof=EUR USD"`

	CardNumber     string    `json:"card_number" validate:"required,numeric,min=12,max=19"`
	ExpirationDate time.Time `json:"expiration_date" validate:"required"`
	CVV            string    `json:"cvv" validate:"required,numeric,min=3,max=4"`
	CardHolder     string    `json:"card_holder" validate:"required,min=2,max=50"`
}

type UpdateTicketSeatRequest struct {
	SeatNumber uint `json:"seat_number" validate:"min=1"`
}

type UpdateSeatsRequest struct {
	Delta int `json:"delta"`
}

type CreatePaymentRequest struct {
	Amount   uint            `json:"amount" validate:"min=1"`
	Currency PaymentCurrency `json:"currency" validate:"required,oneof=EUR USD"`
	UserID   string          `json:"user_id" validate:"required"`
	EventID  string          `json:"event_id" validate:"required"`
	TicketID string          `json:"ticket_id" validate:"required"`
}

type UpdatePaymentStatusRequest struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=Pending Success Failed"`
}

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"max=1000"`
	Location    string    `json:"location" validate:"max=200"`
	Capacity    uint      `json:"capacity" validate:"min=1"`
	Price       uint      `json:"price" validate:"min=1"`
	Date        time.Time `json:"date" validate:"required"`
}

type UpdateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"max=1000"`
	Location    string    `json:"location" validate:"max=200"`
	Date        time.Time `json:"date" validate:"required"`
}

type TriggerNotificationRequest struct {
	Message string `json:"message" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}
