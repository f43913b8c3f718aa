package repository

import (
	"context"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
)

// CourseStore reads courses and maintains their rosters.
type CourseStore interface {
	// GetByID returns a NotFound error when the course does not exist.
	GetByID(ctx context.Context, id string) (*domain.Course, error)

	// Lock is GetByID that also holds a row lock until the enclosing
	// transaction ends, serializing roster changes to the course.
	Lock(ctx context.Context, id string) (*domain.Course, error)

	// IsEnrolled reports whether userID is on the course roster.
	IsEnrolled(ctx context.Context, courseID, userID string) (bool, error)

	// AddStudent adds userID to the roster. Adding a present member is a no-op.
	AddStudent(ctx context.Context, courseID, userID string) error
}

// UserStore reads users and maintains their course and progress sets.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// AddCourse and AddProgress have set-union semantics.
	AddCourse(ctx context.Context, userID, courseID string) error
	AddProgress(ctx context.Context, userID, progressID string) error

	// GetView returns the user with enrolled courses and progress records.
	GetView(ctx context.Context, userID string) (*domain.UserView, error)
}

// ProgressStore creates progress records.
type ProgressStore interface {
	// Create inserts an empty progress record and returns it with the
	// generated id. It is not idempotent.
	Create(ctx context.Context, courseID, userID string) (*domain.CourseProgress, error)
}

// Scope is one unit of work. Every store it hands out runs inside the
// same transaction. The owner must call Release exactly once, normally
// deferred right after Begin.
type Scope interface {
	Courses() CourseStore
	Users() UserStore
	Progress() ProgressStore

	// OnCommit registers fn to run after a successful Commit. Hooks never
	// run when the scope is rolled back.
	OnCommit(fn func(ctx context.Context))

	// Commit makes the scope's writes durable and then runs the hooks.
	Commit(ctx context.Context) error

	// Release rolls back unless Commit succeeded. It is safe to call more
	// than once.
	Release(ctx context.Context) error
}

// TxManager opens scopes.
type TxManager interface {
	Begin(ctx context.Context) (Scope, error)
}

// RatingRepository persists ratings and reviews.
type RatingRepository interface {
	// Exists reports whether userID already rated courseID.
	Exists(ctx context.Context, userID, courseID string) (bool, error)

	// Create fills in the generated id and timestamp. A duplicate
	// (user, course) pair yields a Conflict error.
	Create(ctx context.Context, rating *domain.Rating) error

	Delete(ctx context.Context, id string) error

	// IncrementCourseCount bumps the rating counter on the course row. It
	// returns NotFound when no row was updated.
	IncrementCourseCount(ctx context.Context, courseID string) error

	// Average returns a zero average when the course has no ratings.
	Average(ctx context.Context, courseID string) (*domain.RatingSummary, error)

	// List returns the page and the total number of ratings.
	List(ctx context.Context, offset, limit int) ([]domain.RatingDetail, int, error)
}
