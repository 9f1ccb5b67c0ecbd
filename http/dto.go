package http

import (
	"time"

	"travelbook/entity"
)

type bookingResponse struct {
	BookingID     string               `json:"booking_id"`
	BookingCode   string               `json:"booking_code"`
	UserID        string               `json:"user_id"`
	GuideID       string               `json:"guide_id,omitempty"`
	PackageID     string               `json:"package_id,omitempty"`
	DestinationID string               `json:"destination_id,omitempty"`
	BookingType   entity.BookingType   `json:"booking_type"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentState  `json:"payment_status"`
	Fare          entity.FareBreakdown `json:"fare"`
	Travel        entity.TravelDetails `json:"travel"`
	CouponCode    string               `json:"coupon_code,omitempty"`
	WalletUsed    bool                 `json:"wallet_used"`
	Timeline      entity.Timeline      `json:"timeline"`
	InvoiceNumber string               `json:"invoice_number,omitempty"`
	TicketNumber  string               `json:"ticket_number,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func toBookingResponse(b entity.Booking) bookingResponse {
	return bookingResponse{
		BookingID:     b.BookingID,
		BookingCode:   b.BookingCode,
		UserID:        b.UserID,
		GuideID:       b.GuideID.String,
		PackageID:     b.PackageID.String,
		DestinationID: b.DestinationID.String,
		BookingType:   b.BookingType,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Fare:          b.FareBreakdown,
		Travel:        b.TravelDetails,
		CouponCode:    b.CouponCode.String,
		WalletUsed:    b.WalletUsed,
		Timeline:      b.Timeline,
		InvoiceNumber: b.InvoiceNumber.String,
		TicketNumber:  b.TicketNumber.String,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type paymentResponse struct {
	PaymentID         string               `json:"payment_id"`
	BookingID         string               `json:"booking_id"`
	Method            entity.PaymentMethod `json:"method"`
	ProviderOrderID   string               `json:"provider_order_id,omitempty"`
	ProviderPaymentID string               `json:"provider_payment_id,omitempty"`
	Amount            float64              `json:"amount"`
	Currency          string               `json:"currency"`
	Status            entity.PaymentState  `json:"status"`
	RefundedAmount    float64              `json:"refunded_amount,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

func toPaymentResponse(p entity.Payment) paymentResponse {
	return paymentResponse{
		PaymentID:         p.PaymentID,
		BookingID:         p.BookingID,
		Method:            p.Method,
		ProviderOrderID:   p.ProviderOrderID.String,
		ProviderPaymentID: p.ProviderPaymentID.String,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            p.Status,
		RefundedAmount:    p.RefundedAmount,
		CreatedAt:         p.CreatedAt,
	}
}

type refundResponse struct {
	RefundID       string              `json:"refund_id"`
	BookingID      string              `json:"booking_id"`
	PaymentID      string              `json:"payment_id"`
	AmountApproved float64             `json:"amount_approved"`
	Reason         string              `json:"reason"`
	Status         entity.RefundStatus `json:"status"`
	Timeline       entity.Timeline     `json:"timeline"`
}

func toRefundResponse(r entity.Refund) refundResponse {
	return refundResponse{
		RefundID:       r.RefundID,
		BookingID:      r.BookingID,
		PaymentID:      r.PaymentID,
		AmountApproved: r.AmountApproved,
		Reason:         r.Reason,
		Status:         r.Status,
		Timeline:       r.Timeline,
	}
}

type walletTransactionResponse struct {
	TransactionID string                       `json:"transaction_id"`
	Type          entity.WalletTransactionType `json:"type"`
	Amount        float64                      `json:"amount"`
	Currency      string                       `json:"currency"`
	BalanceAfter  float64                      `json:"balance_after"`
	Reason        string                       `json:"reason"`
	BookingID     string                       `json:"booking_id,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
}

func toWalletTransactionResponse(t entity.WalletTransaction) walletTransactionResponse {
	return walletTransactionResponse{
		TransactionID: t.TransactionID,
		Type:          t.Type,
		Amount:        t.Amount,
		Currency:      t.Currency,
		BalanceAfter:  t.BalanceAfter,
		Reason:        t.Reason,
		BookingID:     t.BookingID.String,
		CreatedAt:     t.CreatedAt,
	}
}
