package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/service"
	"github.com/dakshrana205/StudyNotionnew/pkg/httputil"
	"github.com/dakshrana205/StudyNotionnew/pkg/middleware"
)

// PaymentService is the part of *service.PaymentService the handler uses.
type PaymentService interface {
	CapturePayment(ctx context.Context, userID string, courseIDs []string) (*domain.PaymentOrder, error)
	VerifyPayment(ctx context.Context, in *service.VerifyPaymentInput) *domain.VerificationOutcome
	SendPaymentSuccessEmail(ctx context.Context, in *service.PaymentEmailInput) error
}

// PaymentHandler handles HTTP requests for payment endpoints.
type PaymentHandler struct {
	service     PaymentService
	exposeStack bool
	logger      *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler. exposeStack adds
// the failure stack to enrollment error responses.
func NewPaymentHandler(svc PaymentService, exposeStack bool, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:     svc,
		exposeStack: exposeStack,
		logger:      logger,
	}
}

// --- Request DTOs ---

// CapturePaymentRequest is the JSON request body for opening an order.
type CapturePaymentRequest struct {
	Courses []string `json:"courses"`
}

// VerifyPaymentRequest is the gateway checkout callback body. Missing
// fields and unreadable bodies are reported in the verification response,
// not as a 400.
type VerifyPaymentRequest struct {
	OrderID   string   `json:"razorpay_order_id"`
	PaymentID string   `json:"razorpay_payment_id"`
	Signature string   `json:"razorpay_signature"`
	Courses   []string `json:"courses"`
}

// PaymentEmailRequest is the JSON request body for the receipt mail.
type PaymentEmailRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
}

// VerifyPaymentResponse is the body of every verification answer.
type VerifyPaymentResponse struct {
	Success        bool                     `json:"success"`
	Message        string                   `json:"message"`
	User           *domain.User             `json:"user,omitempty"`
	Courses        []domain.Course          `json:"courses,omitempty"`
	CourseProgress []domain.CourseProgress  `json:"courseProgress,omitempty"`
	Enrollment     *domain.EnrollmentResult `json:"enrollment,omitempty"`
	Error          string                   `json:"error,omitempty"`
	Stack          string                   `json:"stack,omitempty"`
}

// --- Handlers ---

// CapturePayment handles POST /api/v1/payments/capture
// @Summary Open a gateway order
// @Description Prices the requested courses and creates a gateway order for the total.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body CapturePaymentRequest true "Courses to buy"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/payments/capture [post]
func (h *PaymentHandler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	var req CapturePaymentRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	order, err := h.service.CapturePayment(r.Context(), middleware.UserIDFromContext(r.Context()), req.Courses)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// VerifyPayment handles POST /api/v1/payments/verify
// @Summary Verify a payment and enroll
// @Description Checks the gateway signature and enrolls the caller in the paid courses.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body VerifyPaymentRequest true "Gateway confirmation"
// @Success 200 {object} VerifyPaymentResponse
// @Failure 500 {object} VerifyPaymentResponse
// @Router /api/v1/payments/verify [post]
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "unreadable payment confirmation",
			slog.String("content_type", r.Header.Get("Content-Type")),
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusOK, VerifyPaymentResponse{Message: domain.MsgMissingFields})
		return
	}

	out := h.service.VerifyPayment(r.Context(), &service.VerifyPaymentInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		CourseIDs: req.Courses,
		UserID:    middleware.UserIDFromContext(r.Context()),
	})

	status, body := h.verifyResponse(out)
	httputil.WriteJSON(w, status, body)
}

func (h *PaymentHandler) verifyResponse(out *domain.VerificationOutcome) (int, VerifyPaymentResponse) {
	body := VerifyPaymentResponse{Success: out.Success, Message: out.Message}

	switch {
	case out.Success:
		if out.View != nil {
			body.User = out.View.User
			body.Courses = out.View.Courses
			body.CourseProgress = out.View.CourseProgress
		}
		body.Enrollment = out.Enrollment
		return http.StatusOK, body
	case out.State.Rejected():
		return http.StatusOK, body
	default:
		if out.Err != nil {
			body.Error = out.Err.Error()
		}
		if h.exposeStack {
			body.Stack = out.Stack
		}
		return http.StatusInternalServerError, body
	}
}

// SendPaymentSuccessEmail handles POST /api/v1/payments/success-email
// @Summary Mail the payment receipt
// @Tags payments
// @Accept json
// @Produce json
// @Param request body PaymentEmailRequest true "Completed payment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/payments/success-email [post]
func (h *PaymentHandler) SendPaymentSuccessEmail(w http.ResponseWriter, r *http.Request) {
	var req PaymentEmailRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	err := h.service.SendPaymentSuccessEmail(r.Context(), &service.PaymentEmailInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		UserID:    middleware.UserIDFromContext(r.Context()),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "payment receipt sent"}})
}
