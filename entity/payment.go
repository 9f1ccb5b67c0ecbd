package entity

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type PaymentMethod string

const (
	MethodRazorpay PaymentMethod = "razorpay"
	MethodStripe   PaymentMethod = "stripe"
	MethodWallet   PaymentMethod = "wallet"
	MethodCOD      PaymentMethod = "cod"
)

// Metadata holds free-form gateway correlation ids, stored as JSONB.
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		m = Metadata{}
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", src)
	}
}

// Merge overlays other onto m, keeping existing keys that other doesn't set.
func (m Metadata) Merge(other Metadata) Metadata {
	if m == nil {
		m = Metadata{}
	}
	for k, v := range other {
		m[k] = v
	}
	return m
}

// Payment is one attempt to collect a booking's payable amount. A booking can
// accumulate several attempts; the most recent one is authoritative.
type Payment struct {
	PaymentID         string         `db:"payment_id"`
	BookingID         string         `db:"booking_id"`
	UserID            string         `db:"user_id"`
	Method            PaymentMethod  `db:"method"`
	Provider          string         `db:"provider"`
	ProviderOrderID   sql.NullString `db:"provider_order_id"`
	ProviderPaymentID sql.NullString `db:"provider_payment_id"`
	Amount            float64        `db:"amount"`
	Currency          string         `db:"currency"`
	Status            PaymentState   `db:"status"`
	Attempts          int            `db:"attempts"`
	Breakdown         FareBreakdown  `db:"-"`
	RefundedAmount    float64        `db:"refunded_amount"`
	Metadata          Metadata       `db:"metadata"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}
