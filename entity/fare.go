package entity

import "math"

const (
	DefaultCurrency = "INR"
	DefaultGSTRate  = 5.0
)

// FareBreakdown decomposes a booking's price. All amounts are rounded to two
// decimal places. Invariants: Total == BaseFare+Taxes+Fees-Discounts,
// Discounts <= BaseFare+Taxes+Fees, PayableAmount == max(Total-WalletAmount, 0).
type FareBreakdown struct {
	BaseFare      float64 `json:"base_fare" db:"base_fare"`
	Taxes         float64 `json:"taxes" db:"taxes"`
	Fees          float64 `json:"fees" db:"fees"`
	Discounts     float64 `json:"discounts" db:"discounts"`
	Total         float64 `json:"total" db:"total"`
	Currency      string  `json:"currency" db:"currency"`
	WalletAmount  float64 `json:"wallet_amount" db:"wallet_amount"`
	PayableAmount float64 `json:"payable_amount" db:"payable_amount"`
}

// CalculateFareBreakdown computes the fare for a base fare with an optional
// coupon discount and wallet offset. A nil taxConfig falls back to the default
// 5% GST with no fees. Pure function, never fails.
func CalculateFareBreakdown(baseFare, couponDiscount, walletAmount float64, currency string, taxConfig *TaxConfig) FareBreakdown {
	if currency == "" {
		currency = DefaultCurrency
	}

	gstRate := DefaultGSTRate
	var fees float64
	if taxConfig != nil {
		gstRate = taxConfig.GSTPercentage
		fees = taxConfig.ServiceCharge + taxConfig.PeakSurcharge + taxConfig.InsuranceFee
	}

	taxes := round2(baseFare * gstRate / 100)
	fees = round2(fees)

	gross := round2(baseFare + taxes + fees)

	// a coupon can never push the total below zero
	discount := round2(math.Min(couponDiscount, gross))
	if discount < 0 {
		discount = 0
	}

	total := round2(gross - discount)
	payable := round2(math.Max(total-walletAmount, 0))

	return FareBreakdown{
		BaseFare:      round2(baseFare),
		Taxes:         taxes,
		Fees:          fees,
		Discounts:     discount,
		Total:         total,
		Currency:      currency,
		WalletAmount:  round2(walletAmount),
		PayableAmount: payable,
	}
}

// MinorUnits returns the payable amount in the smallest currency unit, as
// expected by the payment gateways.
func (f FareBreakdown) MinorUnits() int64 {
	return int64(math.Round(f.PayableAmount * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
