package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/pkg/database"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

const (
	selectCourseSQL = `
		SELECT id, name, description, price, rating_count, created_at, updated_at
		FROM courses
		WHERE id = $1`

	lockCourseSQL = selectCourseSQL + `
		FOR UPDATE`

	isEnrolledSQL = `
		SELECT EXISTS (
			SELECT 1 FROM course_students WHERE course_id = $1 AND user_id = $2
		)`

	addStudentSQL = `
		INSERT INTO course_students (course_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, user_id) DO NOTHING`
)

// CourseRepository implements repository.CourseStore on a pool or a
// transaction.
type CourseRepository struct {
	db database.DBTX
}

// NewCourseRepository creates a course repository.
func NewCourseRepository(db database.DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetByID fetches a course by id.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return r.scan(ctx, "GetCourse", selectCourseSQL, id)
}

// Lock fetches a course with SELECT ... FOR UPDATE.
func (r *CourseRepository) Lock(ctx context.Context, id string) (*domain.Course, error) {
	return r.scan(ctx, "LockCourse", lockCourseSQL, id)
}

func (r *CourseRepository) scan(ctx context.Context, op, query, id string) (*domain.Course, error) {
	var c domain.Course
	err := traced(ctx, op, query, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, id).Scan(
			&c.ID, &c.Name, &c.Description, &c.Price, &c.RatingCount, &c.CreatedAt, &c.UpdatedAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("course", id)
	}
	if err != nil {
		return nil, apperrors.Persistence("get course", err)
	}
	return &c, nil
}

// IsEnrolled checks the roster.
func (r *CourseRepository) IsEnrolled(ctx context.Context, courseID, userID string) (bool, error) {
	var enrolled bool
	err := traced(ctx, "IsEnrolled", isEnrolledSQL, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, isEnrolledSQL, courseID, userID).Scan(&enrolled)
	})
	if err != nil {
		return false, apperrors.Persistence("check enrollment", err)
	}
	return enrolled, nil
}

// AddStudent adds a roster entry.
func (r *CourseRepository) AddStudent(ctx context.Context, courseID, userID string) error {
	err := traced(ctx, "AddStudent", addStudentSQL, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, addStudentSQL, courseID, userID)
		return err
	})
	if err != nil {
		return apperrors.Persistence("add student to roster", err)
	}
	return nil
}
