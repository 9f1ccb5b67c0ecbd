package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type DocumentsMock struct {
	lock     sync.Mutex
	Invoices map[string]InvoiceRequest
	Tickets  map[string]TicketRequest
}

func (c *DocumentsMock) RenderInvoice(ctx context.Context, request InvoiceRequest) (InvoiceResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Invoices == nil {
		c.Invoices = make(map[string]InvoiceRequest)
	}

	// idempotent per booking, like the real documents service
	if _, ok := c.Invoices[request.BookingID]; !ok {
		c.Invoices[request.BookingID] = request
	}

	return InvoiceResponse{
		InvoiceNumber: fmt.Sprintf("INV-%s", request.BookingCode),
		FileName:      fmt.Sprintf("%s-invoice.pdf", request.BookingID),
		IssuedAt:      time.Now().UTC(),
	}, nil
}

func (c *DocumentsMock) RenderTicket(ctx context.Context, request TicketRequest) (TicketResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Tickets == nil {
		c.Tickets = make(map[string]TicketRequest)
	}

	if _, ok := c.Tickets[request.BookingID]; !ok {
		c.Tickets[request.BookingID] = request
	}

	return TicketResponse{
		TicketNumber: fmt.Sprintf("TKT-%s", request.BookingCode),
		FileName:     fmt.Sprintf("%s-ticket-qr.png", request.BookingID),
		IssuedAt:     time.Now().UTC(),
	}, nil
}
