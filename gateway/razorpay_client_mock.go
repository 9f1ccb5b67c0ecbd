package gateway

import (
	"context"
	"fmt"
	"sync"
)

type RazorpayMock struct {
	lock    sync.Mutex
	Orders  map[string]RazorpayOrderRequest
	Refunds map[string]RazorpayRefundRequest

	orderSeq int
}

func (c *RazorpayMock) CreateOrder(ctx context.Context, request RazorpayOrderRequest) (RazorpayOrder, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Orders == nil {
		c.Orders = make(map[string]RazorpayOrderRequest)
	}

	c.orderSeq++
	orderID := fmt.Sprintf("order_mock_%d", c.orderSeq)
	c.Orders[orderID] = request

	return RazorpayOrder{
		ID:          orderID,
		AmountMinor: request.AmountMinor,
		Currency:    request.Currency,
		Receipt:     request.Receipt,
		Status:      "created",
	}, nil
}

func (c *RazorpayMock) RefundCount() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.Refunds)
}

func (c *RazorpayMock) CreateRefund(ctx context.Context, request RazorpayRefundRequest) (RazorpayRefund, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Refunds == nil {
		c.Refunds = make(map[string]RazorpayRefundRequest)
	}

	refundID := fmt.Sprintf("rfnd_mock_%d", len(c.Refunds)+1)
	c.Refunds[refundID] = request

	return RazorpayRefund{
		ID:          refundID,
		PaymentID:   request.PaymentID,
		AmountMinor: request.AmountMinor,
		Status:      "processed",
	}, nil
}
