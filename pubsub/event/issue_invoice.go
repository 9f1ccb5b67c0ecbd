package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"

	"travelbook/entity"
	"travelbook/gateway"
)

func (h Handler) IssueInvoiceHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"IssueInvoiceHandler",
		func(ctx context.Context, event *entity.BookingConfirmed) error {
			logrus.WithField("booking_id", event.BookingID).Info("Issuing invoice")

			resp, err := h.documentsService.RenderInvoice(ctx, gateway.InvoiceRequest{
				BookingID:   event.BookingID,
				BookingCode: event.BookingCode,
				UserID:      event.UserID,
				Amount:      event.Amount,
				Currency:    event.Currency,
			})
			if err != nil {
				return fmt.Errorf("failed to issue invoice: %w", err)
			}

			return h.eventBus.Publish(ctx, entity.InvoiceIssued{
				Header:        entity.NewEventHeaderWithIdempotencyKey(event.Header.IdempotencyKey),
				BookingID:     event.BookingID,
				InvoiceNumber: resp.InvoiceNumber,
				FileName:      resp.FileName,
				IssuedAt:      resp.IssuedAt,
			})
		},
	)
}
