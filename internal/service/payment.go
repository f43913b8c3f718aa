package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/event"
	"github.com/dakshrana205/StudyNotionnew/internal/gateway"
	"github.com/dakshrana205/StudyNotionnew/internal/notification"
	"github.com/dakshrana205/StudyNotionnew/internal/repository"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

// PaymentConfig holds the gateway secret and the verification budget.
type PaymentConfig struct {
	KeySecret     string
	VerifyTimeout time.Duration
}

// PaymentService captures gateway orders and turns verified payments
// into enrollments.
type PaymentService struct {
	tx        repository.TxManager
	courses   repository.CourseStore
	users     repository.UserStore
	engine    *EnrollmentEngine
	gateway   gateway.Gateway
	mailer    Mailer
	templates *notification.Templates
	producer  *event.Producer
	cfg       PaymentConfig
	logger    *slog.Logger
}

// NewPaymentService creates a new payment service. courses and users are
// read outside any transaction. producer may be nil.
func NewPaymentService(
	tx repository.TxManager,
	courses repository.CourseStore,
	users repository.UserStore,
	engine *EnrollmentEngine,
	gw gateway.Gateway,
	mailer Mailer,
	templates *notification.Templates,
	producer *event.Producer,
	cfg PaymentConfig,
	logger *slog.Logger,
) *PaymentService {
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 15 * time.Second
	}
	return &PaymentService{
		tx:        tx,
		courses:   courses,
		users:     users,
		engine:    engine,
		gateway:   gw,
		mailer:    mailer,
		templates: templates,
		producer:  producer,
		cfg:       cfg,
		logger:    logger,
	}
}

// CapturePayment prices courseIDs for userID and opens a gateway order for
// the total.
func (s *PaymentService) CapturePayment(ctx context.Context, userID string, courseIDs []string) (*domain.PaymentOrder, error) {
	if len(courseIDs) == 0 {
		return nil, apperrors.InvalidInput("please provide course ids")
	}

	var total int64
	for _, id := range courseIDs {
		if !validID(id) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid course id %q", id))
		}
		course, err := s.courses.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get course for capture: %w", err)
		}
		enrolled, err := s.courses.IsEnrolled(ctx, id, userID)
		if err != nil {
			return nil, fmt.Errorf("check enrollment for capture: %w", err)
		}
		if enrolled {
			return nil, apperrors.Conflict("student is already enrolled")
		}
		total += course.Price
	}

	order, err := s.gateway.CreateOrder(ctx, &gateway.CreateOrderInput{
		Amount:   total * 100,
		Currency: domain.CurrencyINR,
		Receipt:  uuid.NewString(),
		Notes:    map[string]string{"user_id": userID},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "gateway order creation failed",
			slog.String("gateway", s.gateway.Name()),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.InternalWithMessage("could not initiate order", err)
	}

	s.logger.InfoContext(ctx, "payment order captured",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("amount", order.Amount),
		slog.Int("courses", len(courseIDs)),
	)
	return order, nil
}

// VerifyPaymentInput is the gateway confirmation plus what it pays for.
type VerifyPaymentInput struct {
	OrderID   string
	PaymentID string
	Signature string
	CourseIDs []string
	UserID    string
}

func (in *VerifyPaymentInput) complete() bool {
	return in != nil && in.OrderID != "" && in.PaymentID != "" && in.Signature != "" &&
		len(in.CourseIDs) > 0 && in.UserID != ""
}

// VerifyPayment checks the confirmation and enrolls the user in one
// transaction. Every failure is reported through the outcome.
//
// The transaction runs on a context detached from ctx cancellation, so a
// client that disconnects mid-way still gets a committed or rolled back
// scope, never an abandoned one.
func (s *PaymentService) VerifyPayment(ctx context.Context, in *VerifyPaymentInput) *domain.VerificationOutcome {
	out := &domain.VerificationOutcome{State: domain.StateReceived}

	if !in.complete() {
		out.State = domain.StateRejectedMissingFields
		out.Message = domain.MsgMissingFields
		out.Err = apperrors.InvalidInput("order id, payment id, signature, courses and user are required")
		return out
	}
	out.State = domain.StateValidated

	if !gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature, s.cfg.KeySecret) {
		s.logger.WarnContext(ctx, "payment signature mismatch",
			slog.String("order_id", in.OrderID),
			slog.String("payment_id", in.PaymentID),
			slog.String("expected", gateway.Sign(in.OrderID, in.PaymentID, s.cfg.KeySecret)),
			slog.String("received", in.Signature),
		)
		out.State = domain.StateRejectedBadSignature
		out.Message = domain.MsgInvalidSignature
		out.Err = apperrors.Authenticity("payment signature mismatch")
		return out
	}
	out.State = domain.StateSignatureOK

	view, result, stack, err := s.enroll(ctx, in)
	if err != nil {
		if stack == "" {
			stack = errorChain(err)
		}
		s.logger.ErrorContext(ctx, "enrollment after verified payment failed",
			slog.String("order_id", in.OrderID),
			slog.String("payment_id", in.PaymentID),
			slog.String("user_id", in.UserID),
			slog.String("error", err.Error()),
		)
		out.State = domain.StateEnrollmentFailed
		out.Message = domain.MsgEnrollmentFailed
		out.Err = err
		out.Stack = stack
		return out
	}
	out.State = domain.StateEnrolled

	s.logger.InfoContext(ctx, "payment verified",
		slog.String("order_id", in.OrderID),
		slog.String("payment_id", in.PaymentID),
		slog.String("user_id", in.UserID),
		slog.Int("enrolled", result.Count(domain.EnrollmentStatusEnrolled)),
	)

	out.State = domain.StateResponded
	out.Success = true
	out.Message = domain.MsgVerified
	out.View = view
	out.Enrollment = result
	return out
}

// errorChain lists each layer of a wrapped error on its own line, the
// outermost first.
func errorChain(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		if depth > 0 {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("  ", depth))
		}
		b.WriteString(err.Error())
		err = errors.Unwrap(err)
	}
	return b.String()
}

// enroll owns the scope for one verification. A panic inside the unit of
// work is turned into an error carrying the panic stack.
func (s *PaymentService) enroll(ctx context.Context, in *VerifyPaymentInput) (view *domain.UserView, result *domain.EnrollmentResult, stack string, err error) {
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.VerifyTimeout)
	defer cancel()

	scope, err := s.tx.Begin(txCtx)
	if err != nil {
		return nil, nil, "", fmt.Errorf("begin enrollment: %w", err)
	}
	defer func() {
		if rerr := scope.Release(txCtx); rerr != nil {
			s.logger.WarnContext(ctx, "enrollment scope release failed",
				slog.String("order_id", in.OrderID),
				slog.String("error", rerr.Error()),
			)
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			view, result = nil, nil
			stack = string(debug.Stack())
			err = fmt.Errorf("enrollment panicked: %v", p)
		}
	}()

	result, err = s.engine.Enroll(txCtx, scope, in.UserID, in.CourseIDs)
	if err != nil {
		return nil, nil, "", err
	}

	view, err = scope.Users().GetView(txCtx, in.UserID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("read back enrolled user: %w", err)
	}

	if s.producer != nil {
		data := event.PaymentVerifiedData{
			OrderID:   in.OrderID,
			PaymentID: in.PaymentID,
			UserID:    in.UserID,
			CourseIDs: result.Enrolled(),
		}
		scope.OnCommit(func(ctx context.Context) {
			if err := s.producer.PublishPaymentVerified(ctx, data); err != nil {
				s.logger.ErrorContext(ctx, "failed to publish payment.verified event",
					slog.String("payment_id", data.PaymentID),
					slog.String("error", err.Error()),
				)
			}
		})
	}

	if err := scope.Commit(txCtx); err != nil {
		return nil, nil, "", fmt.Errorf("commit enrollment: %w", err)
	}
	return view, result, "", nil
}

// PaymentEmailInput identifies a completed payment. Amount is in minor
// units.
type PaymentEmailInput struct {
	OrderID   string
	PaymentID string
	Amount    int64
	UserID    string
}

// SendPaymentSuccessEmail mails the payment receipt and waits for the mail
// transport to accept it.
func (s *PaymentService) SendPaymentSuccessEmail(ctx context.Context, in *PaymentEmailInput) error {
	if in == nil || in.OrderID == "" || in.PaymentID == "" || in.Amount <= 0 || in.UserID == "" {
		return apperrors.InvalidInput("please provide all the details")
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return fmt.Errorf("get user for receipt: %w", err)
	}

	msg, err := s.templates.PaymentSuccess(user.Email, notification.PaymentData{
		Name:      user.DisplayName(),
		OrderID:   in.OrderID,
		PaymentID: in.PaymentID,
		Amount:    in.Amount,
	})
	if err != nil {
		return apperrors.InternalWithMessage("could not send email", err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		var delivery *notification.DeliveryError
		if errors.As(err, &delivery) {
			s.logger.ErrorContext(ctx, "payment receipt not delivered",
				slog.String("user_id", in.UserID),
				slog.String("sender", delivery.Sender),
				slog.String("error", delivery.Err.Error()),
			)
		}
		return apperrors.InternalWithMessage("could not send email", err)
	}

	s.logger.InfoContext(ctx, "payment receipt sent",
		slog.String("user_id", in.UserID),
		slog.String("payment_id", in.PaymentID),
	)
	return nil
}
