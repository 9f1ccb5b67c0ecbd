package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbook/entity"
	"travelbook/gateway"
)

func TestRazorpayClient_createOrder(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_abc",
			"amount":   105000,
			"currency": "INR",
			"receipt":  "BK-TEST",
			"status":   "created",
		})
	}))
	defer server.Close()

	client := gateway.NewRazorpayClient(server.Client(), server.URL, "key_id", "key_secret")

	order, err := client.CreateOrder(context.Background(), gateway.RazorpayOrderRequest{
		AmountMinor: 105000,
		Currency:    "INR",
		Receipt:     "BK-TEST",
		Notes:       map[string]string{"booking_id": "b-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(105000), order.AmountMinor)
	assert.Equal(t, "/v1/orders", gotPath)
	assert.NotEmpty(t, gotAuth, "basic auth header missing")
	assert.Equal(t, float64(105000), gotBody["amount"])
	assert.Equal(t, "BK-TEST", gotBody["receipt"])
}

func TestRazorpayClient_refundPathCarriesPaymentID(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "rfnd_1",
			"payment_id": "pay_1",
			"amount":     105000,
			"status":     "processed",
		})
	}))
	defer server.Close()

	client := gateway.NewRazorpayClient(server.Client(), server.URL, "key_id", "key_secret")

	refund, err := client.CreateRefund(context.Background(), gateway.RazorpayRefundRequest{
		PaymentID:   "pay_1",
		AmountMinor: 105000,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/payments/pay_1/refund", gotPath)
	assert.Equal(t, "rfnd_1", refund.ID)
}

func TestRazorpayClient_rejectionMapsToGatewayRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"amount exceeds balance"}}`))
	}))
	defer server.Close()

	client := gateway.NewRazorpayClient(server.Client(), server.URL, "key_id", "key_secret")

	_, err := client.CreateOrder(context.Background(), gateway.RazorpayOrderRequest{AmountMinor: 100, Currency: "INR"})
	assert.ErrorIs(t, err, entity.ErrGatewayRejected)
}

func TestRazorpayClient_timeoutMapsToGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := gateway.NewRazorpayClient(&http.Client{Timeout: 20 * time.Millisecond}, server.URL, "key_id", "key_secret")

	_, err := client.CreateOrder(context.Background(), gateway.RazorpayOrderRequest{AmountMinor: 100, Currency: "INR"})
	assert.ErrorIs(t, err, entity.ErrGatewayTimeout)
}

func TestStripeClient_createPaymentIntent(t *testing.T) {
	var gotForm map[string][]string
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "pi_1",
			"client_secret": "pi_1_secret",
			"amount":        75000,
			"currency":      "inr",
			"status":        "requires_payment_method",
		})
	}))
	defer server.Close()

	client := gateway.NewStripeClient(server.Client(), server.URL, "sk_test")

	intent, err := client.CreatePaymentIntent(context.Background(), 75000, "INR", map[string]string{"booking_id": "b-1"})
	require.NoError(t, err)

	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, []string{"75000"}, gotForm["amount"])
	assert.Equal(t, []string{"inr"}, gotForm["currency"])
	assert.Equal(t, []string{"b-1"}, gotForm["metadata[booking_id]"])
}
