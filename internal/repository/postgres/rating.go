package postgres

import (
	"context"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/pkg/database"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

const (
	ratingExistsSQL = `
		SELECT EXISTS (
			SELECT 1 FROM ratings WHERE user_id = $1 AND course_id = $2
		)`

	insertRatingSQL = `
		INSERT INTO ratings (user_id, course_id, rating, review)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	deleteRatingSQL = `DELETE FROM ratings WHERE id = $1`

	incrementRatingCountSQL = `
		UPDATE courses
		SET rating_count = rating_count + 1, updated_at = NOW()
		WHERE id = $1`

	averageRatingSQL = `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM ratings
		WHERE course_id = $1`

	countRatingsSQL = `SELECT COUNT(*) FROM ratings`

	listRatingsSQL = `
		SELECT r.id, r.user_id, r.course_id, r.rating, r.review, r.created_at,
		       u.first_name, u.last_name, u.email, u.image,
		       c.name
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		JOIN courses c ON c.id = r.course_id
		ORDER BY r.rating DESC, r.created_at DESC, r.id
		LIMIT $1 OFFSET $2`
)

// RatingRepository implements repository.RatingRepository.
type RatingRepository struct {
	db database.DBTX
}

// NewRatingRepository creates a rating repository.
func NewRatingRepository(db database.DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

// Exists checks for a rating by the same user on the same course.
func (r *RatingRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	err := traced(ctx, "RatingExists", ratingExistsSQL, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, ratingExistsSQL, userID, courseID).Scan(&exists)
	})
	if err != nil {
		return false, apperrors.Persistence("check rating", err)
	}
	return exists, nil
}

// Create inserts a rating.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	err := traced(ctx, "CreateRating", insertRatingSQL, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, insertRatingSQL, rating.UserID, rating.CourseID, rating.Rating, rating.Review).
			Scan(&rating.ID, &rating.CreatedAt)
	})
	if database.IsUniqueViolation(err) {
		return apperrors.Conflict("you have already reviewed this course")
	}
	if err != nil {
		return apperrors.Persistence("insert rating", err)
	}
	return nil
}

// Delete removes a rating.
func (r *RatingRepository) Delete(ctx context.Context, id string) error {
	err := traced(ctx, "DeleteRating", deleteRatingSQL, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, deleteRatingSQL, id)
		return err
	})
	if err != nil {
		return apperrors.Persistence("delete rating", err)
	}
	return nil
}

// IncrementCourseCount bumps courses.rating_count.
func (r *RatingRepository) IncrementCourseCount(ctx context.Context, courseID string) error {
	var affected int64
	err := traced(ctx, "IncrementRatingCount", incrementRatingCountSQL, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, incrementRatingCountSQL, courseID)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return apperrors.Persistence("update course rating count", err)
	}
	if affected == 0 {
		return apperrors.NotFound("course", courseID)
	}
	return nil
}

// Average computes the mean rating of a course.
func (r *RatingRepository) Average(ctx context.Context, courseID string) (*domain.RatingSummary, error) {
	s := &domain.RatingSummary{CourseID: courseID}
	err := traced(ctx, "AverageRating", averageRatingSQL, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, averageRatingSQL, courseID).Scan(&s.Average, &s.Count)
	})
	if err != nil {
		return nil, apperrors.Persistence("average rating", err)
	}
	return s, nil
}

// List returns ratings, best first, with author and course name.
func (r *RatingRepository) List(ctx context.Context, offset, limit int) ([]domain.RatingDetail, int, error) {
	var total int
	err := traced(ctx, "CountRatings", countRatingsSQL, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, countRatingsSQL).Scan(&total)
	})
	if err != nil {
		return nil, 0, apperrors.Persistence("count ratings", err)
	}

	details := make([]domain.RatingDetail, 0, limit)
	err = traced(ctx, "ListRatings", listRatingsSQL, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, listRatingsSQL, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var d domain.RatingDetail
			if err := rows.Scan(
				&d.ID, &d.UserID, &d.CourseID, &d.Rating.Rating, &d.Review, &d.CreatedAt,
				&d.User.FirstName, &d.User.LastName, &d.User.Email, &d.User.Image,
				&d.CourseName,
			); err != nil {
				return err
			}
			d.User.ID = d.UserID
			details = append(details, d)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, apperrors.Persistence("list ratings", err)
	}
	return details, total, nil
}
