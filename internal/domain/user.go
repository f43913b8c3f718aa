package domain

import "strings"

// Account types carried in the accountType token claim.
const (
	AccountTypeAdmin      = "Admin"
	AccountTypeStudent    = "Student"
	AccountTypeInstructor = "Instructor"
)

// User is a platform account.
type User struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Image       string `json:"image,omitempty"`
	AccountType string `json:"account_type"`
}

// DisplayName is "First Last" with blanks dropped.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserView is a user together with the enrolled courses and progress
// records, as read back after enrollment.
type UserView struct {
	User           *User            `json:"user"`
	Courses        []Course         `json:"courses"`
	CourseProgress []CourseProgress `json:"course_progress"`
}
