// Package payment is the thin adapter to the hosted payment provider:
// an outbound client for opening payment intents and the inbound
// webhook contract with its signature check.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPDoer is the http.Client subset the provider client needs.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client calls the hosted payment provider's REST API. All calls are
// bounded by the underlying http.Client timeout; there is no retry
// policy, failures surface to the caller.
type Client struct {
	baseURL string
	apiKey  string
	http    HTTPDoer
}

// NewClient builds a provider client. A nil doer falls back to an
// http.Client with a 10 second timeout.
func NewClient(baseURL, apiKey string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: doer}
}

// Intent is the provider's representation of an opened payment.
type Intent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateIntent opens a payment intent for a reservation. The
// reservation id travels in the intent metadata so the webhook can
// route the completion back to it. Each call carries a fresh
// idempotency key.
func (c *Client) CreateIntent(ctx context.Context, reservationID uint64, amountCents int64, currency string) (*Intent, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   amountCents,
		"currency": currency,
		"metadata": map[string]string{
			"reservationId": strconv.FormatUint(reservationID, 10),
		},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/intents", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, respBody)
	}
	var intent Intent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
