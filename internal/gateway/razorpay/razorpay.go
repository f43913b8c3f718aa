package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/gateway"
	"github.com/dakshrana205/StudyNotionnew/pkg/httpclient"
)

// Config holds the API credentials.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

// Client creates Razorpay orders over the REST API.
type Client struct {
	http   httpclient.Doer
	cfg    Config
	logger *slog.Logger
}

// New wraps doer, which should already carry retries and a breaker.
func New(doer httpclient.Doer, cfg Config, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{http: doer, cfg: cfg, logger: logger}
}

// Name returns "razorpay".
func (c *Client) Name() string { return "razorpay" }

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder calls POST /orders.
func (c *Client) CreateOrder(ctx context.Context, input *gateway.CreateOrderInput) (*domain.PaymentOrder, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   input.Amount,
		Currency: input.Currency,
		Receipt:  input.Receipt,
		Notes:    input.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "razorpay")
	}
	defer func() { _ = resp.Body.Close() }()

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode razorpay order: %w", err)
	}

	c.logger.InfoContext(ctx, "razorpay order created",
		slog.String("order_id", out.ID),
		slog.Int64("amount", out.Amount),
		slog.String("receipt", out.Receipt),
	)

	return &domain.PaymentOrder{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}
