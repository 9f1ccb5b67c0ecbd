package event

import (
	"context"
	"database/sql"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"travelbook/entity"
)

func (h Handler) StoreInvoiceNumberHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"StoreInvoiceNumberHandler",
		func(ctx context.Context, event *entity.InvoiceIssued) error {
			return h.bookingsRepo.Update(ctx, event.BookingID, func(booking *entity.Booking) error {
				booking.InvoiceNumber = sql.NullString{String: event.InvoiceNumber, Valid: true}
				booking.AppendTimeline("invoice_issued", event.InvoiceNumber, "system")
				return nil
			})
		},
	)
}

func (h Handler) StoreTicketNumberHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"StoreTicketNumberHandler",
		func(ctx context.Context, event *entity.TicketIssued) error {
			return h.bookingsRepo.Update(ctx, event.BookingID, func(booking *entity.Booking) error {
				booking.TicketNumber = sql.NullString{String: event.TicketNumber, Valid: true}
				booking.AppendTimeline("ticket_issued", event.TicketNumber, "system")
				return nil
			})
		},
	)
}
