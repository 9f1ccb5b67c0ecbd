package entity

import "time"

type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundCompleted RefundStatus = "refunded"
	RefundPartial   RefundStatus = "partial"
)

type Refund struct {
	RefundID        string       `db:"refund_id"`
	BookingID       string       `db:"booking_id"`
	PaymentID       string       `db:"payment_id"`
	UserID          string       `db:"user_id"`
	AmountRequested float64      `db:"amount_requested"`
	AmountApproved  float64      `db:"amount_approved"`
	Reason          string       `db:"reason"`
	Status          RefundStatus `db:"status"`
	Timeline        Timeline     `db:"timeline"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

// AppendTimeline records an audit entry with actor attribution.
func (r *Refund) AppendTimeline(status, note, actor string) {
	r.Timeline = append(r.Timeline, TimelineEntry{
		Status:    status,
		Note:      note,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	})
}
