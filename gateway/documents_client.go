package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"travelbook/entity"
)

// DocumentsClient renders derivative documents (invoice PDFs, QR tickets) via
// the documents service. The core only hands over booking identity and fare
// fields; rendering itself stays outside this service.
type DocumentsClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewDocumentsClient(httpClient *http.Client, baseURL string) DocumentsClient {
	if httpClient == nil {
		panic("httpClient is nil")
	}
	return DocumentsClient{httpClient: httpClient, baseURL: baseURL}
}

type InvoiceRequest struct {
	BookingID   string  `json:"booking_id"`
	BookingCode string  `json:"booking_code"`
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

type InvoiceResponse struct {
	InvoiceNumber string    `json:"invoice_number"`
	FileName      string    `json:"file_name"`
	IssuedAt      time.Time `json:"issued_at"`
}

func (c DocumentsClient) RenderInvoice(ctx context.Context, request InvoiceRequest) (InvoiceResponse, error) {
	var resp InvoiceResponse
	if err := c.post(ctx, "/invoices", request, &resp); err != nil {
		return InvoiceResponse{}, err
	}
	return resp, nil
}

type TicketRequest struct {
	BookingID   string `json:"booking_id"`
	BookingCode string `json:"booking_code"`
	UserID      string `json:"user_id"`
}

type TicketResponse struct {
	TicketNumber string    `json:"ticket_number"`
	FileName     string    `json:"file_name"`
	IssuedAt     time.Time `json:"issued_at"`
}

func (c DocumentsClient) RenderTicket(ctx context.Context, request TicketRequest) (TicketResponse, error) {
	var resp TicketResponse
	if err := c.post(ctx, "/tickets", request, &resp); err != nil {
		return TicketResponse{}, err
	}
	return resp, nil
}

func (c DocumentsClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	// 409 means the document already exists for this booking; rendering is
	// idempotent so the original response body is returned.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: POST %s: %d: %s", entity.ErrGatewayRejected, path, resp.StatusCode, respBody)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
