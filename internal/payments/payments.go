// Package payments wraps the external payment-intent provider behind a
// narrow contract. The provider itself is an external collaborator and
// is not modeled here beyond intent creation.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/graylock-sec/graylock/internal/config"
)

// Intent is a created payment intent for one order
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Provider creates payment intents for checkout
type Provider interface {
	CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (*Intent, error)
}

// New returns an HTTP provider when an endpoint is configured,
// otherwise a disabled provider (orders stay payable out of band).
func New(cfg config.PaymentsConfig, log zerolog.Logger) Provider {
	if cfg.Endpoint == "" {
		return &disabledProvider{log: log}
	}
	return &httpProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type httpProvider struct {
	cfg    config.PaymentsConfig
	client *http.Client
}

type intentRequest struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

func (p *httpProvider) CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (*Intent, error) {
	body, err := json.Marshal(intentRequest{
		OrderID:  orderID,
		Amount:   int64(amount*100 + 0.5),
		Currency: currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode intent response: %w", err)
	}

	return &intent, nil
}

// disabledProvider is used when no payment endpoint is configured
type disabledProvider struct {
	log zerolog.Logger
}

func (p *disabledProvider) CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (*Intent, error) {
	p.log.Warn().
		Str("order_id", orderID).
		Float64("amount", amount).
		Msg("Payment provider not configured - order created without payment intent")
	return nil, nil
}
