package domain

// EnrollmentStatus tags what happened to one requested course.
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled        EnrollmentStatus = "enrolled"
	EnrollmentStatusInvalidID       EnrollmentStatus = "skipped_invalid_id"
	EnrollmentStatusNotFound        EnrollmentStatus = "skipped_not_found"
	EnrollmentStatusAlreadyEnrolled EnrollmentStatus = "skipped_already_enrolled"
)

// Skipped reports whether the course was left untouched.
func (s EnrollmentStatus) Skipped() bool {
	return s != EnrollmentStatusEnrolled
}

// CourseOutcome is the result for one requested course id.
type CourseOutcome struct {
	CourseID   string           `json:"course_id"`
	Status     EnrollmentStatus `json:"status"`
	ProgressID string           `json:"progress_id,omitempty"`
}

// EnrollmentResult is the result of one enrollment run. Success is true
// whenever the run completed, even if every course was skipped.
type EnrollmentResult struct {
	Success  bool            `json:"success"`
	Outcomes []CourseOutcome `json:"outcomes"`
}

// Enrolled returns the ids of the courses that were newly enrolled.
func (r *EnrollmentResult) Enrolled() []string {
	ids := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Status == EnrollmentStatusEnrolled {
			ids = append(ids, o.CourseID)
		}
	}
	return ids
}

// Count returns how many outcomes have the given status.
func (r *EnrollmentResult) Count(status EnrollmentStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
