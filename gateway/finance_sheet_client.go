package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"travelbook/entity"
)

// FinanceSheetClient appends rows to the finance team's reconciliation
// sheets (captures, refunds, issued documents).
type FinanceSheetClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewFinanceSheetClient(httpClient *http.Client, baseURL string) FinanceSheetClient {
	if httpClient == nil {
		panic("httpClient is nil")
	}
	return FinanceSheetClient{httpClient: httpClient, baseURL: baseURL}
}

func (c FinanceSheetClient) AppendRow(ctx context.Context, sheetName string, row []string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"columns": row,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/sheets/%s/rows", c.baseURL, sheetName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: POST sheets/%s/rows: %d", entity.ErrGatewayRejected, sheetName, resp.StatusCode)
	}

	return nil
}
