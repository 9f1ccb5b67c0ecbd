package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travelbook/entity"
)

// StripeClient talks to the Stripe payment intents/refunds API using the
// form-encoded wire format Stripe expects. Amounts are in minor units.
type StripeClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewStripeClient(httpClient *http.Client, baseURL, secretKey string) StripeClient {
	if httpClient == nil {
		panic("httpClient is nil")
	}
	return StripeClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		secretKey:  secretKey,
	}
}

type StripePaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	AmountMinor  int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

func (c StripeClient) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (StripePaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", strings.ToLower(currency))
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent StripePaymentIntent
	if err := c.post(ctx, "/v1/payment_intents", form, &intent); err != nil {
		return StripePaymentIntent{}, err
	}
	return intent, nil
}

type StripeRefund struct {
	ID              string `json:"id"`
	PaymentIntentID string `json:"payment_intent"`
	AmountMinor     int64  `json:"amount"`
	Status          string `json:"status"`
}

func (c StripeClient) CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) (StripeRefund, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	if amountMinor > 0 {
		form.Set("amount", strconv.FormatInt(amountMinor, 10))
	}

	var refund StripeRefund
	if err := c.post(ctx, "/v1/refunds", form, &refund); err != nil {
		return StripeRefund{}, err
	}
	return refund, nil
}

func (c StripeClient) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: POST %s: %d: %s", entity.ErrGatewayRejected, path, resp.StatusCode, respBody)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// stripeSignatureTolerance bounds how old a webhook may be before it is
// rejected as a potential replay.
const stripeSignatureTolerance = 5 * time.Minute

// VerifyStripeSignature checks a Stripe-Signature header ("t=...,v1=...")
// against the raw webhook body: HMAC-SHA256 of "<t>.<body>" under the webhook
// signing secret.
func VerifyStripeSignature(payload []byte, header, secret string, now time.Time) bool {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if now.Sub(time.Unix(ts, 0)) > stripeSignatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}
