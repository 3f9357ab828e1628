package model

import (
	"encoding/json"
	"time"
)

// Feedback is one student's evaluation of one course. Answers maps question
// id (as a string key) to the submitted answer; rating answers are numeric
// strings, free-text answers are arbitrary strings.
type Feedback struct {
	ID        int             `json:"id"`
	StudentID int             `json:"student_id"`
	CourseID  int             `json:"course_id"`
	FacultyID int             `json:"faculty_id"`
	Answers   json.RawMessage `json:"answers"`
	Comment   *string         `json:"comment"`
	CreatedAt time.Time       `json:"created_at"`
}

// FeedbackDetail is the admin review row joined with student, course and
// faculty names.
type FeedbackDetail struct {
	ID          int             `json:"id"`
	StudentName string          `json:"student_name"`
	StudentCode string          `json:"student_code"`
	CourseName  string          `json:"course_name"`
	FacultyName string          `json:"faculty_name"`
	Answers     json.RawMessage `json:"answers"`
	Comment     *string         `json:"comment"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CourseSummary is a per-course aggregate maintained by the summary worker.
type CourseSummary struct {
	CourseID        int       `json:"course_id"`
	CourseName      string    `json:"course_name"`
	SubmissionCount int       `json:"submission_count"`
	AverageRating   float64   `json:"average_rating"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SubmitFeedbackRequest is the student submission payload.
type SubmitFeedbackRequest struct {
	CourseID  int               `json:"course_id" binding:"required,min=1"`
	FacultyID int               `json:"faculty_id" binding:"required,min=1"`
	Answers   map[string]string `json:"answers" binding:"required"`
	Comment   string            `json:"comment" binding:"max=2000"`
}

// FeedbackEvent is published on the Redis event channel after a successful
// submission and streamed to connected admins.
type FeedbackEvent struct {
	FeedbackID  int       `json:"feedback_id"`
	StudentCode string    `json:"student_code"`
	CourseID    int       `json:"course_id"`
	CourseName  string    `json:"course_name"`
	FacultyID   int       `json:"faculty_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}
