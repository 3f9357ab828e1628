package model

import "time"

// Course represents a taught course assigned to one faculty member.
type Course struct {
	ID        int       `json:"id"`
	Name      string    `json:"course_name"`
	Programme string    `json:"programme"`
	Semester  int       `json:"semester"`
	FacultyID int       `json:"faculty_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseWithFaculty is the student-facing course listing row.
type CourseWithFaculty struct {
	ID          int    `json:"course_id"`
	Name        string `json:"course_name"`
	FacultyID   int    `json:"faculty_id"`
	FacultyName string `json:"faculty_name"`
}

// SaveCourseRequest is the payload for creating or updating a course.
type SaveCourseRequest struct {
	Name      string `json:"course_name" binding:"required,min=2,max=150"`
	Programme string `json:"programme" binding:"required,min=1,max=100"`
	Semester  int    `json:"semester" binding:"required,min=1,max=12"`
	FacultyID int    `json:"faculty_id" binding:"required,min=1"`
}
