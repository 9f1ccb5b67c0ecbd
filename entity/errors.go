package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrGatewayRejected     = errors.New("payment gateway rejected the request")
	ErrGatewayTimeout      = errors.New("payment gateway timed out")
)

// InvalidCouponError carries the validator's rejection reason so it can be
// returned to the caller verbatim.
type InvalidCouponError struct {
	Reason string
}

func (e InvalidCouponError) Error() string {
	return fmt.Sprintf("invalid coupon: %s", e.Reason)
}

// InvalidTransitionError is returned when a booking status change is not
// allowed by the state machine.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition: %s -> %s", e.From, e.To)
}
