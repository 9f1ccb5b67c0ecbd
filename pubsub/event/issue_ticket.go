package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"

	"travelbook/entity"
	"travelbook/gateway"
)

func (h Handler) IssueTicketHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"IssueTicketHandler",
		func(ctx context.Context, event *entity.BookingConfirmed) error {
			logrus.WithField("booking_id", event.BookingID).Info("Issuing ticket")

			resp, err := h.documentsService.RenderTicket(ctx, gateway.TicketRequest{
				BookingID:   event.BookingID,
				BookingCode: event.BookingCode,
				UserID:      event.UserID,
			})
			if err != nil {
				return fmt.Errorf("failed to issue ticket: %w", err)
			}

			return h.eventBus.Publish(ctx, entity.TicketIssued{
				Header:       entity.NewEventHeaderWithIdempotencyKey(event.Header.IdempotencyKey),
				BookingID:    event.BookingID,
				TicketNumber: resp.TicketNumber,
				FileName:     resp.FileName,
				IssuedAt:     resp.IssuedAt,
			})
		},
	)
}
