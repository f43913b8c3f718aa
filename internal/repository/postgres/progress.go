package postgres

import (
	"context"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/pkg/database"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

const insertProgressSQL = `
	INSERT INTO course_progress (course_id, user_id)
	VALUES ($1, $2)
	RETURNING id, created_at`

// ProgressRepository implements repository.ProgressStore.
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a progress repository.
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Create inserts an empty progress record for (courseID, userID).
func (r *ProgressRepository) Create(ctx context.Context, courseID, userID string) (*domain.CourseProgress, error) {
	p := &domain.CourseProgress{CourseID: courseID, UserID: userID, CompletedVideos: []string{}}
	err := traced(ctx, "CreateProgress", insertProgressSQL, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, insertProgressSQL, courseID, userID).Scan(&p.ID, &p.CreatedAt)
	})
	if err != nil {
		return nil, apperrors.Persistence("create course progress", err)
	}
	return p, nil
}
