package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reservaid/reservaid/internal/common/config"
	"github.com/reservaid/reservaid/internal/common/middleware"
)

// ErrCredentialsManquants means the relay is running without provider
// credentials; checkouts cannot be created.
var ErrCredentialsManquants = fmt.Errorf("sumup credentials not configured (api_key, merchant_id)")

// Client talks to the SumUp checkout API. The API key stays server-side;
// the browser only ever sees the checkout id and URL the provider returns.
type Client struct {
	cfg     config.SumUpConfig
	http    *http.Client
	breaker *middleware.CircuitBreaker
}

func NewClient(cfg config.SumUpConfig) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: middleware.NewCircuitBreaker("sumup", 5, 30*time.Second),
	}
}

// CheckoutInput describes one checkout to open at the provider.
type CheckoutInput struct {
	CommandeID   string
	MontantCents int64
	RedirectURL  string
}

// ProviderResponse is the provider's reply, passed through as-is. On a
// non-2xx the Body is mirrored verbatim to the caller.
type ProviderResponse struct {
	Status int
	Body   []byte
}

// CreateCheckout opens a checkout at the provider. Outbound calls run under
// a circuit breaker so a dead provider fails fast instead of piling up
// sockets.
func (c *Client) CreateCheckout(ctx context.Context, in CheckoutInput) (*ProviderResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" || strings.TrimSpace(c.cfg.MerchantID) == "" {
		return nil, ErrCredentialsManquants
	}

	redirect := strings.TrimSpace(in.RedirectURL)
	if redirect == "" {
		redirect = c.cfg.RedirectURL
	}

	payload, err := json.Marshal(map[string]any{
		"checkout_reference": fmt.Sprintf("cmd-%s-%s", in.CommandeID, uuid.NewString()[:8]),
		"amount":             float64(in.MontantCents) / 100,
		"currency":           "EUR",
		"merchant_code":      c.cfg.MerchantID,
		"redirect_url":       redirect,
		"description":        fmt.Sprintf("Acompte commande %s", in.CommandeID),
	})
	if err != nil {
		return nil, err
	}

	var resp *ProviderResponse
	err = c.breaker.Call(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			strings.TrimRight(c.cfg.APIBaseURL, "/")+"/checkouts", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if err != nil {
			return err
		}
		resp = &ProviderResponse{Status: res.StatusCode, Body: body}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
