package mock

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/gateway"
)

// Gateway creates orders in process, for local development.
type Gateway struct {
	logger *slog.Logger
}

// New creates a mock gateway.
func New(logger *slog.Logger) *Gateway {
	return &Gateway{logger: logger}
}

// Name returns "mock".
func (g *Gateway) Name() string { return "mock" }

// CreateOrder echoes the input back as a created order.
func (g *Gateway) CreateOrder(ctx context.Context, input *gateway.CreateOrderInput) (*domain.PaymentOrder, error) {
	order := &domain.PaymentOrder{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   input.Amount,
		Currency: input.Currency,
		Receipt:  input.Receipt,
		Status:   "created",
	}
	g.logger.DebugContext(ctx, "mock order created", slog.String("order_id", order.ID))
	return order, nil
}
