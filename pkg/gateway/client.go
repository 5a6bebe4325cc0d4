package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable wraps every failure of the outbound order-creation call.
// No retries happen at this layer; the caller surfaces the error to the
// client for a manual retry.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Client creates orders at the external payment gateway.
type Client interface {
	// CreateOrder registers a payment intent and returns the gateway's
	// opaque order identifier. Amount is in minor units (paise).
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
}

// HTTPClient talks to the gateway's REST orders API with basic auth.
type HTTPClient struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
	log       *zap.Logger
}

func NewHTTPClient(baseURL, keyID, keySecret string, log *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}
}

type createOrderReq struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResp struct {
	ID string `json:"id"`
}

func (c *HTTPClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	payload, _ := json.Marshal(createOrderReq{Amount: amountMinor, Currency: currency, Receipt: receipt})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("gateway order creation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.log.Warn("gateway order creation rejected",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var out createOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: empty order id", ErrUnavailable)
	}
	return out.ID, nil
}
