package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// StatusError reports a non-2xx answer from the payment gateway.
type StatusError struct {
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("payment gateway returned %d", e.StatusCode)
}

// Gateway charges through an HTTP endpoint that accepts
// {"amount_cents": n} and answers {"approved": bool}.
type Gateway struct {
	URL    string
	Client *http.Client
}

// NewGateway returns a Gateway with a pooled HTTP client.
func NewGateway(url string) *Gateway {
	return &Gateway{
		URL: url,
		Client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        30,
				MaxIdleConnsPerHost: 30,
				MaxConnsPerHost:     30,
			},
		},
	}
}

type chargeRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type chargeResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// ProcessPayment implements service.PaymentProcessor.
func (g *Gateway) ProcessPayment(ctx context.Context, amountCents int64) (bool, error) {
	body, err := json.Marshal(chargeRequest{AmountCents: amountCents})
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, StatusError{StatusCode: resp.StatusCode}
	}
	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode gateway response: %w", err)
	}
	return out.Approved, nil
}
