package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/service"
	"github.com/dakshrana205/StudyNotionnew/pkg/httputil"
	"github.com/dakshrana205/StudyNotionnew/pkg/middleware"
	"github.com/dakshrana205/StudyNotionnew/pkg/pagination"
)

// RatingService is the part of *service.RatingService the handler uses.
type RatingService interface {
	CreateRating(ctx context.Context, userID string, input *service.CreateRatingInput) (*domain.Rating, error)
	GetAverageRating(ctx context.Context, courseID string) (*domain.RatingSummary, error)
	ListRatings(ctx context.Context, offset, limit int) ([]domain.RatingDetail, int, error)
}

// RatingHandler handles HTTP requests for rating endpoints.
type RatingHandler struct {
	service RatingService
	logger  *slog.Logger
}

// NewRatingHandler creates a new rating HTTP handler.
func NewRatingHandler(svc RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateRatingRequest is the JSON request body for rating a course.
type CreateRatingRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=2000"`
}

// CreateRating handles POST /api/v1/courses/{courseId}/ratings
// @Summary Rate a course
// @Tags ratings
// @Accept json
// @Produce json
// @Param courseId path string true "Course UUID"
// @Param request body CreateRatingRequest true "Rating and review"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/courses/{courseId}/ratings [post]
func (h *RatingHandler) CreateRating(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "courseId"))
	if !ok {
		return
	}

	var req CreateRatingRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	rating, err := h.service.CreateRating(r.Context(), middleware.UserIDFromContext(r.Context()), &service.CreateRatingInput{
		CourseID: courseID.String(),
		Rating:   req.Rating,
		Review:   req.Review,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: rating})
}

// GetAverageRating handles GET /api/v1/courses/{courseId}/ratings/average
// @Summary Average rating of a course
// @Tags ratings
// @Produce json
// @Param courseId path string true "Course UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/courses/{courseId}/ratings/average [get]
func (h *RatingHandler) GetAverageRating(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "courseId"))
	if !ok {
		return
	}

	summary, err := h.service.GetAverageRating(r.Context(), courseID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// ListRatings handles GET /api/v1/ratings
// @Summary List all ratings
// @Description Best ratings first, newest first among equals.
// @Tags ratings
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/ratings [get]
func (h *RatingHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	ratings, total, err := h.service.ListRatings(r.Context(), p.Offset(), p.Limit())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(ratings, total, p))
}
