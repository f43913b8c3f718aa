package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

const enrollmentBody = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Course Registration Confirmation</title></head>
<body style="font-family: Arial, sans-serif; color: #000000;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px; text-align: center;">
<div style="font-size: 18px; font-weight: bold; margin-bottom: 20px;">Course Registration Confirmation</div>
<p>Dear {{.Name}},</p>
<p>You have successfully registered for the course <span style="font-weight: bold;">"{{.CourseName}}"</span>. We are excited to have you as a participant!</p>
<p>Please log in to your learning dashboard to access the course materials and start your learning journey.</p>
<div style="font-size: 14px; color: #999999; margin-top: 20px;">If you have any questions or need assistance, please feel free to reach out to us at <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>. We are here to help!</div>
</div>
</body>
</html>`

const paymentSuccessBody = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Payment Confirmation</title></head>
<body style="font-family: Arial, sans-serif; color: #000000;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px; text-align: center;">
<div style="font-size: 18px; font-weight: bold; margin-bottom: 20px;">Course Payment Confirmation</div>
<p>Dear {{.Name}},</p>
<p>We have received a payment of <span style="font-weight: bold;">&#8377;{{.Amount}}</span>.</p>
<p>Your Payment ID is <b>{{.PaymentID}}</b></p>
<p>Your Order ID is <b>{{.OrderID}}</b></p>
<div style="font-size: 14px; color: #999999; margin-top: 20px;">If you have any questions or need assistance, please feel free to reach out to us at <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>. We are here to help!</div>
</div>
</body>
</html>`

// EnrollmentData fills the enrollment confirmation.
type EnrollmentData struct {
	Name       string
	CourseName string
}

// PaymentData fills the payment receipt. Amount is in minor units.
type PaymentData struct {
	Name      string
	OrderID   string
	PaymentID string
	Amount    int64
}

// Templates renders the transactional mail bodies.
type Templates struct {
	supportEmail string
	enrollment   *template.Template
	payment      *template.Template
}

// NewTemplates parses the built-in bodies. supportEmail is linked in
// every footer.
func NewTemplates(supportEmail string) *Templates {
	return &Templates{
		supportEmail: supportEmail,
		enrollment:   template.Must(template.New("enrollment").Parse(enrollmentBody)),
		payment:      template.Must(template.New("payment").Parse(paymentSuccessBody)),
	}
}

// Enrollment builds the "Successfully Enrolled" message for one course.
func (t *Templates) Enrollment(to string, data EnrollmentData) (Message, error) {
	body, err := render(t.enrollment, map[string]any{
		"Name":         data.Name,
		"CourseName":   data.CourseName,
		"SupportEmail": t.supportEmail,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Successfully Enrolled into %s", data.CourseName),
		Body:    body,
	}, nil
}

// PaymentSuccess builds the "Payment Received" receipt.
func (t *Templates) PaymentSuccess(to string, data PaymentData) (Message, error) {
	body, err := render(t.payment, map[string]any{
		"Name":         data.Name,
		"OrderID":      data.OrderID,
		"PaymentID":    data.PaymentID,
		"Amount":       formatAmount(data.Amount),
		"SupportEmail": t.supportEmail,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Payment Received", Body: body}, nil
}

// formatAmount prints minor units as major units, dropping a zero fraction.
func formatAmount(minor int64) string {
	if minor%100 == 0 {
		return fmt.Sprintf("%d", minor/100)
	}
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
