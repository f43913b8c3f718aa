package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/event"
	"github.com/dakshrana205/StudyNotionnew/internal/notification"
	"github.com/dakshrana205/StudyNotionnew/internal/repository"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

// Mailer delivers mail. *notification.Dispatcher implements it.
type Mailer interface {
	// Dispatch queues msg and returns without waiting for delivery.
	Dispatch(ctx context.Context, msg notification.Message) error
	// Send delivers msg before returning.
	Send(ctx context.Context, msg notification.Message) error
}

// validID reports whether id is a uuid in the 36-character hyphenated
// form. uuid.Parse also takes urn, braced and bare-hex forms, and postgres
// rejects the urn one.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// EnrollmentEngine adds a user to courses inside a caller-owned scope.
type EnrollmentEngine struct {
	mailer    Mailer
	templates *notification.Templates
	producer  *event.Producer
	logger    *slog.Logger
}

// NewEnrollmentEngine creates an enrollment engine. producer may be nil.
func NewEnrollmentEngine(mailer Mailer, templates *notification.Templates, producer *event.Producer, logger *slog.Logger) *EnrollmentEngine {
	return &EnrollmentEngine{
		mailer:    mailer,
		templates: templates,
		producer:  producer,
		logger:    logger,
	}
}

// Enroll processes courseIDs in order. Ids that are malformed, unknown or
// already enrolled are recorded as skipped and do not stop the run. A
// missing user or any storage failure aborts the run, and the caller is
// expected to roll the scope back.
//
// Confirmation mail and course.enrolled events for each newly enrolled
// course are deferred until the scope commits.
func (e *EnrollmentEngine) Enroll(ctx context.Context, scope repository.Scope, userID string, courseIDs []string) (*domain.EnrollmentResult, error) {
	user, err := scope.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get enrolling user: %w", err)
	}

	result := &domain.EnrollmentResult{Outcomes: make([]domain.CourseOutcome, 0, len(courseIDs))}
	for _, courseID := range courseIDs {
		outcome, err := e.enrollOne(ctx, scope, user, courseID)
		if err != nil {
			return nil, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	result.Success = true

	e.logger.InfoContext(ctx, "enrollment processed",
		slog.String("user_id", userID),
		slog.Int("requested", len(courseIDs)),
		slog.Int("enrolled", result.Count(domain.EnrollmentStatusEnrolled)),
	)
	return result, nil
}

func (e *EnrollmentEngine) enrollOne(ctx context.Context, scope repository.Scope, user *domain.User, courseID string) (domain.CourseOutcome, error) {
	outcome := domain.CourseOutcome{CourseID: courseID}

	if !validID(courseID) {
		outcome.Status = domain.EnrollmentStatusInvalidID
		e.logger.WarnContext(ctx, "skipping malformed course id", slog.String("course_id", courseID))
		return outcome, nil
	}

	course, err := scope.Courses().Lock(ctx, courseID)
	if errors.Is(err, apperrors.ErrNotFound) {
		outcome.Status = domain.EnrollmentStatusNotFound
		e.logger.WarnContext(ctx, "skipping unknown course", slog.String("course_id", courseID))
		return outcome, nil
	}
	if err != nil {
		return outcome, fmt.Errorf("lock course %s: %w", courseID, err)
	}

	enrolled, err := scope.Courses().IsEnrolled(ctx, courseID, user.ID)
	if err != nil {
		return outcome, fmt.Errorf("check enrollment in %s: %w", courseID, err)
	}
	if enrolled {
		outcome.Status = domain.EnrollmentStatusAlreadyEnrolled
		return outcome, nil
	}

	if err := scope.Courses().AddStudent(ctx, courseID, user.ID); err != nil {
		return outcome, fmt.Errorf("add student to %s: %w", courseID, err)
	}
	progress, err := scope.Progress().Create(ctx, courseID, user.ID)
	if err != nil {
		return outcome, fmt.Errorf("create progress for %s: %w", courseID, err)
	}
	if err := scope.Users().AddCourse(ctx, user.ID, courseID); err != nil {
		return outcome, fmt.Errorf("add course %s to user: %w", courseID, err)
	}
	if err := scope.Users().AddProgress(ctx, user.ID, progress.ID); err != nil {
		return outcome, fmt.Errorf("add progress %s to user: %w", progress.ID, err)
	}

	scope.OnCommit(func(ctx context.Context) {
		e.afterEnroll(ctx, user, course, progress.ID)
	})

	outcome.Status = domain.EnrollmentStatusEnrolled
	outcome.ProgressID = progress.ID
	return outcome, nil
}

// afterEnroll sends the confirmation and the event. Failures are logged
// and never reach the caller.
func (e *EnrollmentEngine) afterEnroll(ctx context.Context, user *domain.User, course *domain.Course, progressID string) {
	msg, err := e.templates.Enrollment(user.Email, notification.EnrollmentData{
		Name:       user.DisplayName(),
		CourseName: course.Name,
	})
	if err == nil {
		err = e.mailer.Dispatch(ctx, msg)
	}
	if err != nil {
		e.logger.WarnContext(ctx, "enrollment email not sent",
			slog.String("user_id", user.ID),
			slog.String("course_id", course.ID),
			slog.String("error", err.Error()),
		)
	}

	if e.producer != nil {
		if err := e.producer.PublishCourseEnrolled(ctx, user.ID, course.ID, progressID); err != nil {
			e.logger.ErrorContext(ctx, "failed to publish course.enrolled event",
				slog.String("course_id", course.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
