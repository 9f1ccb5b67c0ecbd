package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// BookingConfirmed is published once a payment for the booking is captured.
// Invoice and ticket generation hang off this event.
type BookingConfirmed struct {
	Header      EventHeader `json:"header"`
	BookingID   string      `json:"booking_id"`
	BookingCode string      `json:"booking_code"`
	UserID      string      `json:"user_id"`
	PaymentID   string      `json:"payment_id"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
}

// BookingRefunded is published after the refund record is persisted and the
// provider-side refund has been requested. Full marks whether the whole
// payment amount was returned.
type BookingRefunded struct {
	Header      EventHeader `json:"header"`
	BookingID   string      `json:"booking_id"`
	BookingCode string      `json:"booking_code"`
	UserID      string      `json:"user_id"`
	PaymentID   string      `json:"payment_id"`
	RefundID    string      `json:"refund_id"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Full        bool        `json:"full"`
}

type InvoiceIssued struct {
	Header        EventHeader `json:"header"`
	BookingID     string      `json:"booking_id"`
	InvoiceNumber string      `json:"invoice_number"`
	FileName      string      `json:"file_name"`
	IssuedAt      time.Time   `json:"issued_at"`
}

type TicketIssued struct {
	Header       EventHeader `json:"header"`
	BookingID    string      `json:"booking_id"`
	TicketNumber string      `json:"ticket_number"`
	FileName     string      `json:"file_name"`
	IssuedAt     time.Time   `json:"issued_at"`
}
