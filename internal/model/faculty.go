package model

import "time"

// Faculty represents a teaching staff member.
type Faculty struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaveFacultyRequest is the payload for creating or updating a faculty member.
type SaveFacultyRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=150"`
	Designation string `json:"designation" binding:"required,min=2,max=100"`
	Department  string `json:"department" binding:"required,min=2,max=100"`
}
