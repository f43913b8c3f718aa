package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const secret = "rzp_test_secret"

func TestSign_KnownVector(t *testing.T) {
	// printf 'order_1|pay_1' | openssl dgst -sha256 -hmac key
	assert.Equal(t, "65219a93f3f6ab8a5f6962209ec83d04e29cd18b30fffd7e1a2aade3a72c199e", Sign("order_1", "pay_1", "key"))
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", secret)

	assert.True(t, VerifySignature("order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", sig, secret))
	assert.False(t, VerifySignature("order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", sig, "other_secret"))
	assert.False(t, VerifySignature("order_other", "pay_29QQoUBi66xm2f", sig, secret))
	assert.False(t, VerifySignature("order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", "", secret))
	assert.False(t, VerifySignature("order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", sig[:63], secret))
}

func TestVerifySignature_AnySingleCharMutationFails(t *testing.T) {
	orderID, paymentID := "order_ABC", "pay_XYZ"
	sig := Sign(orderID, paymentID, secret)
	alphabet := "0123456789abcdef"

	for i := range sig {
		for _, r := range alphabet {
			if byte(r) == sig[i] {
				continue
			}
			mutated := sig[:i] + string(r) + sig[i+1:]
			assert.False(t, VerifySignature(orderID, paymentID, mutated, secret), "position %d -> %c", i, r)
		}
	}
}

func TestVerifySignature_SeparatorMatters(t *testing.T) {
	// "ab|c" and "a|bc" must not share a signature.
	assert.False(t, VerifySignature("a", "bc", Sign("ab", "c", secret), secret))
}
