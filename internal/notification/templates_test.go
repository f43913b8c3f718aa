package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_Enrollment(t *testing.T) {
	tpl := NewTemplates("info@studynotion.com")

	msg, err := tpl.Enrollment("asha@example.com", EnrollmentData{Name: "Asha Rao", CourseName: "Go <Basics>"})
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, "Successfully Enrolled into Go <Basics>", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Asha Rao,")
	assert.Contains(t, msg.Body, "Go &lt;Basics&gt;")
	assert.Contains(t, msg.Body, "mailto:info@studynotion.com")
}

func TestTemplates_PaymentSuccess(t *testing.T) {
	tpl := NewTemplates("info@studynotion.com")

	msg, err := tpl.PaymentSuccess("asha@example.com", PaymentData{
		Name: "Asha Rao", OrderID: "order_1", PaymentID: "pay_1", Amount: 149900,
	})
	require.NoError(t, err)

	assert.Equal(t, "Payment Received", msg.Subject)
	assert.Contains(t, msg.Body, "&#8377;1499</span>")
	assert.Contains(t, msg.Body, "<b>pay_1</b>")
	assert.Contains(t, msg.Body, "<b>order_1</b>")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1499", formatAmount(149900))
	assert.Equal(t, "10.50", formatAmount(1050))
	assert.Equal(t, "0.05", formatAmount(5))
}
