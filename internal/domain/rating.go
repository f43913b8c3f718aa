package domain

import "time"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's rating and review of a course.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummary is the average rating of a course. Average is 0 when
// there are no ratings.
type RatingSummary struct {
	CourseID string  `json:"course_id"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// RatingAuthor is the public part of the rating's user.
type RatingAuthor struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Image     string `json:"image,omitempty"`
}

// RatingDetail is a rating joined with its author and course name.
type RatingDetail struct {
	Rating
	User       RatingAuthor `json:"user"`
	CourseName string       `json:"course_name"`
}
