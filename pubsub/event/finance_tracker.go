package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"

	"travelbook/entity"
)

func (h Handler) TrackConfirmedBookingHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"TrackConfirmedBookingHandler",
		func(ctx context.Context, event *entity.BookingConfirmed) error {
			logrus.WithField("booking_id", event.BookingID).Info("Adding confirmed booking to finance sheet")
			return h.financeService.AppendRow(
				ctx,
				"bookings-confirmed",
				[]string{event.BookingCode, event.UserID, fmt.Sprintf("%.2f", event.Amount), event.Currency},
			)
		},
	)
}

func (h Handler) TrackRefundedBookingHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"TrackRefundedBookingHandler",
		func(ctx context.Context, event *entity.BookingRefunded) error {
			logrus.WithField("booking_id", event.BookingID).Info("Adding refunded booking to finance sheet")
			return h.financeService.AppendRow(
				ctx,
				"bookings-refunded",
				[]string{event.BookingCode, event.UserID, fmt.Sprintf("%.2f", event.Amount), event.Currency},
			)
		},
	)
}
