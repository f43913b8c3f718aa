package domain

// Currency used for every order.
const CurrencyINR = "INR"

// PaymentOrder is a gateway-side order. It is never persisted locally.
// Amount is in minor units (paise).
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status,omitempty"`
}

// VerificationState is a step of the payment verification workflow.
type VerificationState string

const (
	StateReceived              VerificationState = "RECEIVED"
	StateValidated             VerificationState = "VALIDATED"
	StateSignatureOK           VerificationState = "SIGNATURE_OK"
	StateEnrolled              VerificationState = "ENROLLED"
	StateResponded             VerificationState = "RESPONDED"
	StateRejectedMissingFields VerificationState = "REJECTED_MISSING_FIELDS"
	StateRejectedBadSignature  VerificationState = "REJECTED_BAD_SIGNATURE"
	StateEnrollmentFailed      VerificationState = "ENROLLMENT_FAILED"
)

// Terminal reports whether no further transition is possible.
func (s VerificationState) Terminal() bool {
	switch s {
	case StateResponded, StateRejectedMissingFields, StateRejectedBadSignature, StateEnrollmentFailed:
		return true
	}
	return false
}

// Rejected reports a terminal state caused by the caller's input.
func (s VerificationState) Rejected() bool {
	return s == StateRejectedMissingFields || s == StateRejectedBadSignature
}

// User-visible verification messages.
const (
	MsgMissingFields    = "Payment Failed: Missing required fields"
	MsgInvalidSignature = "Payment Failed: Invalid signature"
	MsgEnrollmentFailed = "Payment verification succeeded but enrollment failed"
	MsgVerified         = "Payment verified and course enrollment successful"
)

// VerificationOutcome is the terminal result of one verification.
type VerificationOutcome struct {
	State      VerificationState
	Success    bool
	Message    string
	View       *UserView
	Enrollment *EnrollmentResult
	Err        error
	Stack      string
}
