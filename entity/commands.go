package entity

// RefundProviderPayment asks the gateway to return money for a captured
// payment. The refund record is already persisted when this command is sent;
// the provider call happens asynchronously so webhook-driven accounting can't
// be blocked by gateway latency.
type RefundProviderPayment struct {
	Header            EventHeader `json:"header"`
	RefundID          string      `json:"refund_id"`
	BookingID         string      `json:"booking_id"`
	BookingCode       string      `json:"booking_code"`
	UserID            string      `json:"user_id"`
	PaymentID         string      `json:"payment_id"`
	Provider          string      `json:"provider"`
	ProviderPaymentID string      `json:"provider_payment_id"`
	AmountMinor       int64       `json:"amount_minor"`
	Currency          string      `json:"currency"`
	Reason            string      `json:"reason"`
	Full              bool        `json:"full"`
}
