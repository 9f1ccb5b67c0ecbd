package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"travelbook/gateway"
	"travelbook/metrics"
	"travelbook/payment"
)

type webhookResponse struct {
	Received bool `json:"received"`
}

// stripeEvent mirrors the subset of the Stripe event envelope the service
// cares about.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID             string `json:"id"`
			Amount         int64  `json:"amount"`
			AmountRefunded int64  `json:"amount_refunded"`
			PaymentIntent  string `json:"payment_intent"`
		} `json:"object"`
	} `json:"data"`
}

func (s *Server) PostStripeWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if !gateway.VerifyStripeSignature(body, signature, s.webhookSecrets.Stripe, time.Now()) {
		metrics.WebhooksReceived.With(prometheus.Labels{"provider": "stripe", "status": "bad_signature"}).Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not parse event")
	}

	orderID := event.Data.Object.ID
	amountMinor := event.Data.Object.Amount
	if event.Data.Object.PaymentIntent != "" {
		// charge objects reference their intent
		orderID = event.Data.Object.PaymentIntent
		amountMinor = event.Data.Object.AmountRefunded
	}

	err = s.orchestrator.Reconcile(c.Request().Context(), payment.ProviderEvent{
		Provider:    "stripe",
		EventID:     event.ID,
		Type:        event.Type,
		OrderID:     orderID,
		PaymentID:   event.Data.Object.ID,
		AmountMinor: amountMinor,
	})
	if err != nil {
		metrics.WebhooksReceived.With(prometheus.Labels{"provider": "stripe", "status": "failed"}).Inc()
		// a non-2xx makes Stripe redeliver, which is what we want here
		return err
	}

	metrics.WebhooksReceived.With(prometheus.Labels{"provider": "stripe", "status": "ok"}).Inc()
	return c.JSON(http.StatusOK, webhookResponse{Received: true})
}

// razorpayEvent mirrors the subset of the Razorpay webhook envelope the
// service cares about.
type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
				Amount    int64  `json:"amount"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

func (s *Server) PostRazorpayWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
	}

	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if !gateway.VerifyRazorpaySignature(body, signature, s.webhookSecrets.Razorpay) {
		metrics.WebhooksReceived.With(prometheus.Labels{"provider": "razorpay", "status": "bad_signature"}).Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	eventID := c.Request().Header.Get("X-Razorpay-Event-Id")
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing event id")
	}

	var event razorpayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not parse event")
	}

	amountMinor := event.Payload.Payment.Entity.Amount
	if event.Payload.Refund.Entity.Amount > 0 {
		amountMinor = event.Payload.Refund.Entity.Amount
	}

	err = s.orchestrator.Reconcile(c.Request().Context(), payment.ProviderEvent{
		Provider:    "razorpay",
		EventID:     eventID,
		Type:        event.Event,
		OrderID:     event.Payload.Payment.Entity.OrderID,
		PaymentID:   event.Payload.Payment.Entity.ID,
		AmountMinor: amountMinor,
	})
	if err != nil {
		metrics.WebhooksReceived.With(prometheus.Labels{"provider": "razorpay", "status": "failed"}).Inc()
		return err
	}

	metrics.WebhooksReceived.With(prometheus.Labels{"provider": "razorpay", "status": "ok"}).Inc()
	return c.JSON(http.StatusOK, webhookResponse{Received: true})
}
