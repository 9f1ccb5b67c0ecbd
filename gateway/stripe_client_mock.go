package gateway

import (
	"context"
	"fmt"
	"sync"
)

type stripeMockIntent struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

type StripeMock struct {
	lock    sync.Mutex
	Intents map[string]stripeMockIntent
	Refunds map[string]int64
}

func (c *StripeMock) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (StripePaymentIntent, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Intents == nil {
		c.Intents = make(map[string]stripeMockIntent)
	}

	intentID := fmt.Sprintf("pi_mock_%d", len(c.Intents)+1)
	c.Intents[intentID] = stripeMockIntent{
		AmountMinor: amountMinor,
		Currency:    currency,
		Metadata:    metadata,
	}

	return StripePaymentIntent{
		ID:           intentID,
		ClientSecret: intentID + "_secret_mock",
		AmountMinor:  amountMinor,
		Currency:     currency,
		Status:       "requires_payment_method",
	}, nil
}

func (c *StripeMock) CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) (StripeRefund, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Refunds == nil {
		c.Refunds = make(map[string]int64)
	}

	c.Refunds[paymentIntentID] = amountMinor

	return StripeRefund{
		ID:              fmt.Sprintf("re_mock_%d", len(c.Refunds)),
		PaymentIntentID: paymentIntentID,
		AmountMinor:     amountMinor,
		Status:          "succeeded",
	}, nil
}
