package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinicore/intake-ocr/pkg/metrics"
)

// Client is the detect-text boundary. Implementations take the complete
// document payload and return the service's block list. Errors propagate
// unchanged to the caller; no retry or fallback happens here.
type Client interface {
	DetectText(ctx context.Context, data []byte) ([]Block, error)
}

type detectTextResponse struct {
	Blocks []Block `json:"blocks"`
}

// HTTPClient calls a detect-text HTTP endpoint with the raw document
// bytes and decodes the returned block list.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) DetectText(ctx context.Context, data []byte) ([]Block, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building detect-text request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObserveOcrRequestDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("calling detect-text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("detect-text returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded detectTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding detect-text response: %w", err)
	}

	return decoded.Blocks, nil
}
