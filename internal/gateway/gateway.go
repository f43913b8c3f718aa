package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
)

// CreateOrderInput is an order request. Amount is in minor units.
type CreateOrderInput struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Gateway creates orders with the payment provider.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.PaymentOrder, error)
}

// Sign returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)), the
// signature the gateway attaches to a genuine payment confirmation.
func Sign(orderID, paymentID, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(m.Sum(nil))
}

// VerifySignature reports whether signature was issued for the order and
// payment pair under secret. The comparison runs in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	return hmac.Equal([]byte(Sign(orderID, paymentID, secret)), []byte(signature))
}
