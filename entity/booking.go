package entity

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusRefunded  BookingStatus = "refunded"
)

type PaymentState string

const (
	PaymentStatePending           PaymentState = "pending"
	PaymentStatePaid              PaymentState = "paid"
	PaymentStateFailed            PaymentState = "failed"
	PaymentStateRefunded          PaymentState = "refunded"
	PaymentStatePartiallyRefunded PaymentState = "partially_refunded"
)

type BookingType string

const (
	BookingTypePackage BookingType = "package"
	BookingTypeCustom  BookingType = "custom"
	BookingTypeGuide   BookingType = "guide"
)

// bookingTransitions is the explicit state machine; anything not listed is
// rejected with InvalidTransitionError. Terminal states accept nothing.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded},
	BookingStatusCompleted: {BookingStatusRefunded},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type TimelineEntry struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Timeline is the append-only audit log stored as JSONB.
type Timeline []TimelineEntry

func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		t = Timeline{}
	}
	return json.Marshal(t)
}

func (t *Timeline) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = Timeline{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("cannot scan %T into Timeline", src)
	}
}

type TravelDetails struct {
	From       string    `json:"from" db:"travel_from"`
	To         string    `json:"to" db:"travel_to"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
	Passengers int       `json:"passengers" db:"passengers"`
}

// Booking is the anchor aggregate. It is never deleted, only transitioned.
type Booking struct {
	BookingID     string        `db:"booking_id"`
	BookingCode   string        `db:"booking_code"`
	UserID        string        `db:"user_id"`
	GuideID       sql.NullString `db:"guide_id"`
	PackageID     sql.NullString `db:"package_id"`
	DestinationID sql.NullString `db:"destination_id"`
	BookingType   BookingType   `db:"booking_type"`
	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentState  `db:"payment_status"`

	FareBreakdown
	TravelDetails

	CouponCode     sql.NullString  `db:"coupon_code"`
	CouponDiscount sql.NullFloat64 `db:"coupon_discount"`
	WalletUsed     bool            `db:"wallet_used"`

	Timeline Timeline `db:"timeline"`

	InvoiceNumber sql.NullString `db:"invoice_number"`
	TicketNumber  sql.NullString `db:"ticket_number"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Transition moves the booking to a new status, enforcing the state machine
// and appending a timeline entry.
func (b *Booking) Transition(to BookingStatus, note, actor string) error {
	if !CanTransition(b.Status, to) {
		return InvalidTransitionError{From: b.Status, To: to}
	}
	b.Status = to
	b.AppendTimeline(string(to), note, actor)
	return nil
}

// AppendTimeline records a status change without validating it, for entries
// that are not booking status transitions (e.g. guide_assigned).
func (b *Booking) AppendTimeline(status, note, actor string) {
	b.Timeline = append(b.Timeline, TimelineEntry{
		Status:    status,
		Note:      note,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	})
}
