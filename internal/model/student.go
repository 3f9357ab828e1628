package model

import "time"

// Student represents a registered student account.
type Student struct {
	ID           int       `json:"id"`
	Code         string    `json:"student_code"`
	Name         string    `json:"student_name"`
	Username     string    `json:"username"`
	Department   string    `json:"department"`
	Semester     int       `json:"semester"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterStudentRequest is the self-registration payload. The registration
// code is checked against config before any store work.
type RegisterStudentRequest struct {
	RegistrationCode string `json:"registration_code" binding:"required"`
	Code             string `json:"student_code" binding:"required,min=2,max=30"`
	Name             string `json:"student_name" binding:"required,min=2,max=150"`
	Username         string `json:"username" binding:"required,min=2,max=60"`
	Department       string `json:"department" binding:"required,min=1,max=100"`
	Semester         int    `json:"semester" binding:"required,min=1,max=12"`
	Password         string `json:"password" binding:"required,min=6,max=72"`
}

// CreateStudentRequest is the admin payload for creating a student.
type CreateStudentRequest struct {
	Code       string `json:"student_code" binding:"required,min=2,max=30"`
	Name       string `json:"student_name" binding:"required,min=2,max=150"`
	Username   string `json:"username" binding:"required,min=2,max=60"`
	Department string `json:"department" binding:"required,min=1,max=100"`
	Semester   int    `json:"semester" binding:"required,min=1,max=12"`
	Password   string `json:"password" binding:"required,min=6,max=72"`
}

// UpdateStudentRequest is the admin payload for updating a student.
type UpdateStudentRequest struct {
	Code       string `json:"student_code" binding:"required,min=2,max=30"`
	Name       string `json:"student_name" binding:"required,min=2,max=150"`
	Username   string `json:"username" binding:"required,min=2,max=60"`
	Department string `json:"department" binding:"required,min=1,max=100"`
	Semester   int    `json:"semester" binding:"required,min=1,max=12"`
}

// StudentLoginRequest is the student login payload.
type StudentLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
