package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/event"
	"github.com/dakshrana205/StudyNotionnew/internal/repository"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

// AverageCache caches course rating summaries. *cache.RatingCache
// implements it.
type AverageCache interface {
	GetAverage(ctx context.Context, courseID string) (*domain.RatingSummary, bool, error)
	SetAverage(ctx context.Context, summary *domain.RatingSummary) error
	InvalidateAverage(ctx context.Context, courseID string) error
}

// RatingService implements the business logic for ratings and reviews.
type RatingService struct {
	repo     repository.RatingRepository
	courses  repository.CourseStore
	cache    AverageCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewRatingService creates a new rating service. cache and producer may
// be nil.
func NewRatingService(
	repo repository.RatingRepository,
	courses repository.CourseStore,
	cache AverageCache,
	producer *event.Producer,
	logger *slog.Logger,
) *RatingService {
	return &RatingService{
		repo:     repo,
		courses:  courses,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// CreateRatingInput holds the parameters for rating a course.
type CreateRatingInput struct {
	CourseID string
	Rating   int
	Review   string
}

// CreateRating records userID's rating of a course the user is enrolled in.
func (s *RatingService) CreateRating(ctx context.Context, userID string, input *CreateRatingInput) (*domain.Rating, error) {
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if !validID(input.CourseID) {
		return nil, apperrors.InvalidInput("invalid course id")
	}

	if _, err := s.courses.GetByID(ctx, input.CourseID); err != nil {
		return nil, fmt.Errorf("get course to rate: %w", err)
	}

	enrolled, err := s.courses.IsEnrolled(ctx, input.CourseID, userID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment for rating: %w", err)
	}
	if !enrolled {
		return nil, apperrors.Forbidden("student is not enrolled in the course")
	}

	exists, err := s.repo.Exists(ctx, userID, input.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check existing rating: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("you have already reviewed this course")
	}

	rating := &domain.Rating{
		UserID:   userID,
		CourseID: input.CourseID,
		Rating:   input.Rating,
		Review:   strings.TrimSpace(input.Review),
	}
	if err := s.repo.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}

	if err := s.repo.IncrementCourseCount(ctx, input.CourseID); err != nil {
		s.compensate(ctx, rating, err)
		return nil, apperrors.InternalWithMessage("could not record rating", err)
	}

	s.invalidate(ctx, input.CourseID)

	if s.producer != nil {
		if err := s.producer.PublishRatingCreated(ctx, rating); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish rating.created event",
				slog.String("rating_id", rating.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "rating created",
		slog.String("rating_id", rating.ID),
		slog.String("course_id", rating.CourseID),
		slog.Int("rating", rating.Rating),
	)
	return rating, nil
}

// compensate removes a rating whose course counter could not be updated.
func (s *RatingService) compensate(ctx context.Context, rating *domain.Rating, cause error) {
	s.logger.ErrorContext(ctx, "course rating counter update failed, removing rating",
		slog.String("rating_id", rating.ID),
		slog.String("course_id", rating.CourseID),
		slog.String("error", cause.Error()),
	)
	if err := s.repo.Delete(context.WithoutCancel(ctx), rating.ID); err != nil {
		s.logger.ErrorContext(ctx, "orphan rating left behind",
			slog.String("rating_id", rating.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *RatingService) invalidate(ctx context.Context, courseID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAverage(ctx, courseID); err != nil {
		s.logger.WarnContext(ctx, "rating cache invalidation failed",
			slog.String("course_id", courseID),
			slog.String("error", err.Error()),
		)
	}
}

// GetAverageRating returns the mean rating of a course, 0 when unrated.
func (s *RatingService) GetAverageRating(ctx context.Context, courseID string) (*domain.RatingSummary, error) {
	if !validID(courseID) {
		return nil, apperrors.InvalidInput("invalid course id")
	}

	if s.cache != nil {
		summary, hit, err := s.cache.GetAverage(ctx, courseID)
		if err != nil {
			s.logger.WarnContext(ctx, "rating cache read failed",
				slog.String("course_id", courseID),
				slog.String("error", err.Error()),
			)
		}
		if hit {
			return summary, nil
		}
	}

	summary, err := s.repo.Average(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetAverage(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "rating cache write failed",
				slog.String("course_id", courseID),
				slog.String("error", err.Error()),
			)
		}
	}
	return summary, nil
}

// ListRatings returns a page of ratings, best first, newest first among
// equals.
func (s *RatingService) ListRatings(ctx context.Context, offset, limit int) ([]domain.RatingDetail, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	ratings, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, total, nil
}
