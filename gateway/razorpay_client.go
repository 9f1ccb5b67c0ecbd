package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"travelbook/entity"
)

// RazorpayClient talks to the Razorpay orders/refunds API. Amounts are in
// minor units (paise).
type RazorpayClient struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
}

func NewRazorpayClient(httpClient *http.Client, baseURL, keyID, keySecret string) RazorpayClient {
	if httpClient == nil {
		panic("httpClient is nil")
	}
	return RazorpayClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
	}
}

type RazorpayOrderRequest struct {
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Notes       map[string]string `json:"notes,omitempty"`
}

type RazorpayOrder struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

func (c RazorpayClient) CreateOrder(ctx context.Context, request RazorpayOrderRequest) (RazorpayOrder, error) {
	var order RazorpayOrder
	err := c.post(ctx, "/v1/orders", request, &order)
	if err != nil {
		return RazorpayOrder{}, err
	}
	return order, nil
}

type RazorpayRefundRequest struct {
	PaymentID   string            `json:"-"`
	AmountMinor int64             `json:"amount,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
}

type RazorpayRefund struct {
	ID          string `json:"id"`
	PaymentID   string `json:"payment_id"`
	AmountMinor int64  `json:"amount"`
	Status      string `json:"status"`
}

func (c RazorpayClient) CreateRefund(ctx context.Context, request RazorpayRefundRequest) (RazorpayRefund, error) {
	var refund RazorpayRefund
	path := fmt.Sprintf("/v1/payments/%s/refund", request.PaymentID)
	err := c.post(ctx, path, request, &refund)
	if err != nil {
		return RazorpayRefund{}, err
	}
	return refund, nil
}

func (c RazorpayClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: POST %s: %d: %s", entity.ErrGatewayRejected, path, resp.StatusCode, respBody)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// VerifyRazorpaySignature checks the X-Razorpay-Signature header: hex-encoded
// HMAC-SHA256 of the raw webhook body under the shared webhook secret.
func VerifyRazorpaySignature(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entity.ErrGatewayTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", entity.ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%w: %v", entity.ErrGatewayRejected, err)
}
