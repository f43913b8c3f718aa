package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/service"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
	"github.com/dakshrana205/StudyNotionnew/pkg/health"
	"github.com/dakshrana205/StudyNotionnew/pkg/httputil"
	"github.com/dakshrana205/StudyNotionnew/pkg/middleware"
)

var testJWTSecret = []byte("handler-test-secret")

// --- Mock Services ---

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) CapturePayment(ctx context.Context, userID string, courseIDs []string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, userID, courseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

func (m *mockPaymentService) VerifyPayment(ctx context.Context, in *service.VerifyPaymentInput) *domain.VerificationOutcome {
	args := m.Called(ctx, in)
	return args.Get(0).(*domain.VerificationOutcome)
}

func (m *mockPaymentService) SendPaymentSuccessEmail(ctx context.Context, in *service.PaymentEmailInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

type mockRatingService struct {
	mock.Mock
}

func (m *mockRatingService) CreateRating(ctx context.Context, userID string, input *service.CreateRatingInput) (*domain.Rating, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *mockRatingService) GetAverageRating(ctx context.Context, courseID string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func (m *mockRatingService) ListRatings(ctx context.Context, offset, limit int) ([]domain.RatingDetail, int, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]domain.RatingDetail), args.Int(1), args.Error(2)
}

// --- Test Helpers ---

type testServer struct {
	payments *mockPaymentService
	ratings  *mockRatingService
	router   http.Handler
}

func newTestServer(t *testing.T, exposeStack bool) *testServer {
	t.Helper()
	ts := &testServer{payments: &mockPaymentService{}, ratings: &mockRatingService{}}
	ts.router = NewRouter(t.Context(), RouterConfig{
		Payments:    ts.payments,
		Ratings:     ts.ratings,
		Health:      health.NewHandler(),
		Tokens:      middleware.NewJWTValidator(testJWTSecret),
		CORS:        middleware.DefaultCORSConfig(),
		ExposeStack: exposeStack,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return ts
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		UserID: userID,
		Email:  "asha@example.com",
		Role:   role,
	}).SignedString(testJWTSecret)
	require.NoError(t, err)
	return signed
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeResp(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeVerify(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- Auth ---

func TestPayments_RequireStudent(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/api/v1/payments/capture", "", CapturePaymentRequest{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/payments/capture", token(t, "u-1", domain.AccountTypeInstructor), CapturePaymentRequest{})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ts.payments.AssertNotCalled(t, "CapturePayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestContentTypeJSON(t *testing.T) {
	ts := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/capture", bytes.NewReader([]byte("courses=1")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token(t, "u-1", domain.AccountTypeStudent))
	rec := httptest.NewRecorder()

	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// --- Capture ---

func TestCapturePayment(t *testing.T) {
	ts := newTestServer(t, false)
	courses := []string{uuid.NewString()}
	ts.payments.On("CapturePayment", mock.Anything, "u-1", courses).
		Return(&domain.PaymentOrder{ID: "order_1", Amount: 49900, Currency: "INR", Receipt: "r"}, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/payments/capture", token(t, "u-1", domain.AccountTypeStudent), CapturePaymentRequest{Courses: courses})

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResp(t, rec).Data.(map[string]any)
	assert.Equal(t, "order_1", data["id"])
	assert.InDelta(t, 49900, data["amount"], 0)
}

func TestCapturePayment_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", apperrors.InvalidInput("please provide course ids"), http.StatusBadRequest},
		{"not found", apperrors.NotFound("course", "c"), http.StatusNotFound},
		{"enrolled", apperrors.Conflict("student is already enrolled"), http.StatusConflict},
		{"gateway", apperrors.InternalWithMessage("could not initiate order", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			ts.payments.On("CapturePayment", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := ts.do(t, http.MethodPost, "/api/v1/payments/capture", token(t, "u-1", domain.AccountTypeStudent), CapturePaymentRequest{})

			assert.Equal(t, tt.status, rec.Code)
			assert.NotNil(t, decodeResp(t, rec).Error)
		})
	}
}

// --- Verify ---

func TestVerifyPayment_Success(t *testing.T) {
	ts := newTestServer(t, false)
	ts.payments.On("VerifyPayment", mock.Anything, mock.MatchedBy(func(in *service.VerifyPaymentInput) bool {
		return in.UserID == "u-1" && in.OrderID == "order_1" && in.Signature == "sig" && len(in.CourseIDs) == 1
	})).Return(&domain.VerificationOutcome{
		State:   domain.StateResponded,
		Success: true,
		Message: domain.MsgVerified,
		View: &domain.UserView{
			User:           &domain.User{ID: "u-1", FirstName: "Asha"},
			Courses:        []domain.Course{{ID: "c-1", Name: "Go"}},
			CourseProgress: []domain.CourseProgress{{ID: "p-1", CourseID: "c-1", CompletedVideos: []string{}}},
		},
		Enrollment: &domain.EnrollmentResult{Success: true, Outcomes: []domain.CourseOutcome{{CourseID: "c-1", Status: domain.EnrollmentStatusEnrolled, ProgressID: "p-1"}}},
	})

	rec := ts.do(t, http.MethodPost, "/api/v1/payments/verify", token(t, "u-1", domain.AccountTypeStudent), VerifyPaymentRequest{
		OrderID: "order_1", PaymentID: "pay_1", Signature: "sig", Courses: []string{"c-1"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeVerify(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, domain.MsgVerified, body["message"])
	assert.Equal(t, "u-1", body["user"].(map[string]any)["id"])
	assert.Len(t, body["courses"], 1)
	assert.Len(t, body["courseProgress"], 1)
	assert.NotNil(t, body["enrollment"])
	assert.NotContains(t, body, "stack")
}

func TestVerifyPayment_RejectionIs200(t *testing.T) {
	for _, out := range []*domain.VerificationOutcome{
		{State: domain.StateRejectedMissingFields, Message: domain.MsgMissingFields, Err: apperrors.InvalidInput("x")},
		{State: domain.StateRejectedBadSignature, Message: domain.MsgInvalidSignature, Err: apperrors.Authenticity("x")},
	} {
		t.Run(string(out.State), func(t *testing.T) {
			ts := newTestServer(t, true)
			ts.payments.On("VerifyPayment", mock.Anything, mock.Anything).Return(out)

			rec := ts.do(t, http.MethodPost, "/api/v1/payments/verify", token(t, "u-1", domain.AccountTypeStudent), VerifyPaymentRequest{})

			assert.Equal(t, http.StatusOK, rec.Code)
			body := decodeVerify(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, out.Message, body["message"])
			assert.NotContains(t, body, "error")
		})
	}
}

func TestVerifyPayment_EnrollmentFailure(t *testing.T) {
	failed := &domain.VerificationOutcome{
		State:   domain.StateEnrollmentFailed,
		Message: domain.MsgEnrollmentFailed,
		Err:     errors.New("commit enrollment: connection reset"),
		Stack:   "goroutine 1 [running]:",
	}

	t.Run("development shows stack", func(t *testing.T) {
		ts := newTestServer(t, true)
		ts.payments.On("VerifyPayment", mock.Anything, mock.Anything).Return(failed)

		rec := ts.do(t, http.MethodPost, "/api/v1/payments/verify", token(t, "u-1", domain.AccountTypeStudent), VerifyPaymentRequest{})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeVerify(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, domain.MsgEnrollmentFailed, body["message"])
		assert.Equal(t, "commit enrollment: connection reset", body["error"])
		assert.Equal(t, "goroutine 1 [running]:", body["stack"])
	})

	t.Run("production hides stack", func(t *testing.T) {
		ts := newTestServer(t, false)
		ts.payments.On("VerifyPayment", mock.Anything, mock.Anything).Return(failed)

		rec := ts.do(t, http.MethodPost, "/api/v1/payments/verify", token(t, "u-1", domain.AccountTypeStudent), VerifyPaymentRequest{})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, decodeVerify(t, rec), "stack")
	})
}

func TestVerifyPayment_UnreadableBodyIsMissingFields(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"truncated json", "{", "application/json"},
		{"wrong type", `["razorpay_order_id"]`, "application/json"},
		{"form encoded", "razorpay_order_id=order_1", "application/x-www-form-urlencoded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", tt.contentType)
			req.Header.Set("Authorization", "Bearer "+token(t, "u-1", domain.AccountTypeStudent))
			rec := httptest.NewRecorder()

			ts.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := decodeVerify(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, domain.MsgMissingFields, body["message"])
			ts.payments.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
		})
	}
}

// --- Success email ---

func TestSendPaymentSuccessEmail(t *testing.T) {
	ts := newTestServer(t, false)
	ts.payments.On("SendPaymentSuccessEmail", mock.Anything, &service.PaymentEmailInput{
		OrderID: "order_1", PaymentID: "pay_1", Amount: 49900, UserID: "u-1",
	}).Return(nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/payments/success-email", token(t, "u-1", domain.AccountTypeStudent),
		PaymentEmailRequest{OrderID: "order_1", PaymentID: "pay_1", Amount: 49900})

	assert.Equal(t, http.StatusOK, rec.Code)
	ts.payments.AssertExpectations(t)
}

func TestSendPaymentSuccessEmail_DeliveryFailure(t *testing.T) {
	ts := newTestServer(t, false)
	ts.payments.On("SendPaymentSuccessEmail", mock.Anything, mock.Anything).
		Return(apperrors.InternalWithMessage("could not send email", errors.New("401")))

	rec := ts.do(t, http.MethodPost, "/api/v1/payments/success-email", token(t, "u-1", domain.AccountTypeStudent), PaymentEmailRequest{})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "could not send email", decodeResp(t, rec).Error.Message)
}

// --- Ratings ---

func TestCreateRating(t *testing.T) {
	ts := newTestServer(t, false)
	courseID := uuid.NewString()
	ts.ratings.On("CreateRating", mock.Anything, "u-1", &service.CreateRatingInput{CourseID: courseID, Rating: 4, Review: "solid"}).
		Return(&domain.Rating{ID: "r-1", UserID: "u-1", CourseID: courseID, Rating: 4, Review: "solid"}, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/courses/"+courseID+"/ratings", token(t, "u-1", domain.AccountTypeStudent),
		CreateRatingRequest{Rating: 4, Review: "solid"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "r-1", decodeResp(t, rec).Data.(map[string]any)["id"])
}

func TestCreateRating_Validation(t *testing.T) {
	ts := newTestServer(t, false)
	student := token(t, "u-1", domain.AccountTypeStudent)

	rec := ts.do(t, http.MethodPost, "/api/v1/courses/not-a-uuid/ratings", student, CreateRatingRequest{Rating: 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/courses/"+uuid.NewString()+"/ratings", student, CreateRatingRequest{Rating: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeResp(t, rec).Error.Code)

	ts.ratings.AssertNotCalled(t, "CreateRating", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRating_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not enrolled", apperrors.Forbidden("student is not enrolled in the course"), http.StatusForbidden},
		{"duplicate", apperrors.Conflict("you have already reviewed this course"), http.StatusConflict},
		{"missing course", apperrors.NotFound("course", "c"), http.StatusNotFound},
		{"counter failed", apperrors.InternalWithMessage("could not record rating", errors.New("x")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			ts.ratings.On("CreateRating", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := ts.do(t, http.MethodPost, "/api/v1/courses/"+uuid.NewString()+"/ratings", token(t, "u-1", domain.AccountTypeStudent),
				CreateRatingRequest{Rating: 3})

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestGetAverageRating_Public(t *testing.T) {
	ts := newTestServer(t, false)
	courseID := uuid.NewString()
	ts.ratings.On("GetAverageRating", mock.Anything, courseID).
		Return(&domain.RatingSummary{CourseID: courseID, Average: 4, Count: 3}, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/courses/"+courseID+"/ratings/average", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResp(t, rec).Data.(map[string]any)
	assert.InDelta(t, 4.0, data["average"], 1e-9)
	assert.InDelta(t, 3, data["count"], 0)
}

func TestListRatings_Paginated(t *testing.T) {
	ts := newTestServer(t, false)
	ts.ratings.On("ListRatings", mock.Anything, 10, 10).
		Return([]domain.RatingDetail{{Rating: domain.Rating{ID: "r-1", Rating: 5}, CourseName: "Go"}}, 11, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/ratings?page=2&per_page=10", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data       []domain.RatingDetail `json:"data"`
		TotalCount int                   `json:"total_count"`
		TotalPages int                   `json:"total_pages"`
		HasPrev    bool                  `json:"has_prev"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 11, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasPrev)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, false)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/metrics", "", nil).Code)
}
