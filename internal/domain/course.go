package domain

import "time"

// Course is a purchasable course. Price is in whole currency units.
type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CourseProgress records the lectures a user has completed in one course.
// There is at most one per (course, user) pair.
type CourseProgress struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"course_id"`
	CourseName      string    `json:"course_name,omitempty"`
	UserID          string    `json:"user_id"`
	CompletedVideos []string  `json:"completed_videos"`
	CreatedAt       time.Time `json:"created_at"`
}
