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
	selectUserSQL = `
		SELECT id, first_name, last_name, email, image, account_type
		FROM users
		WHERE id = $1`

	addUserCourseSQL = `
		INSERT INTO user_courses (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO NOTHING`

	addUserProgressSQL = `
		INSERT INTO user_progress (user_id, progress_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, progress_id) DO NOTHING`

	userCoursesSQL = `
		SELECT c.id, c.name, c.description, c.price, c.rating_count, c.created_at, c.updated_at
		FROM courses c
		JOIN user_courses uc ON uc.course_id = c.id
		WHERE uc.user_id = $1
		ORDER BY uc.created_at, c.id`

	userProgressSQL = `
		SELECT p.id, p.course_id, c.name, p.user_id, p.completed_videos, p.created_at
		FROM course_progress p
		JOIN user_progress up ON up.progress_id = p.id
		JOIN courses c ON c.id = p.course_id
		WHERE up.user_id = $1
		ORDER BY p.created_at, p.id`
)

// UserRepository implements repository.UserStore.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID fetches a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := traced(ctx, "GetUser", selectUserSQL, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, selectUserSQL, id).Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Image, &u.AccountType,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("user", id)
	}
	if err != nil {
		return nil, apperrors.Persistence("get user", err)
	}
	return &u, nil
}

// AddCourse links a course to the user.
func (r *UserRepository) AddCourse(ctx context.Context, userID, courseID string) error {
	return r.exec(ctx, "AddUserCourse", addUserCourseSQL, userID, courseID)
}

// AddProgress links a progress record to the user.
func (r *UserRepository) AddProgress(ctx context.Context, userID, progressID string) error {
	return r.exec(ctx, "AddUserProgress", addUserProgressSQL, userID, progressID)
}

func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	err := traced(ctx, op, query, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return apperrors.Persistence(op, err)
	}
	return nil
}

// GetView loads the user with courses and progress expanded.
func (r *UserRepository) GetView(ctx context.Context, userID string) (*domain.UserView, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &domain.UserView{User: user, Courses: []domain.Course{}, CourseProgress: []domain.CourseProgress{}}

	err = traced(ctx, "ListUserCourses", userCoursesSQL, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, userCoursesSQL, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c domain.Course
			if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.RatingCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
				return err
			}
			view.Courses = append(view.Courses, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.Persistence("list user courses", err)
	}

	err = traced(ctx, "ListUserProgress", userProgressSQL, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, userProgressSQL, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p domain.CourseProgress
			if err := rows.Scan(&p.ID, &p.CourseID, &p.CourseName, &p.UserID, &p.CompletedVideos, &p.CreatedAt); err != nil {
				return err
			}
			if p.CompletedVideos == nil {
				p.CompletedVideos = []string{}
			}
			view.CourseProgress = append(view.CourseProgress, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.Persistence("list user progress", err)
	}

	return view, nil
}
