package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/config"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
)

// Student management errors.
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrDuplicateStudent    = errors.New("student code or username already taken")
	ErrBadRegistrationCode = errors.New("registration code does not match")
)

// StudentService manages student accounts, including self-registration.
type StudentService struct {
	repo *repository.StudentRepository
	auth *AuthService
	cfg  *config.Config
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo *repository.StudentRepository, auth *AuthService, cfg *config.Config) *StudentService {
	return &StudentService{repo: repo, auth: auth, cfg: cfg}
}

// Register creates a student account from a self-registration request. The
// registration code gates sign-up and is checked before any store work.
func (s *StudentService) Register(ctx context.Context, req *model.RegisterStudentRequest) (*model.Student, error) {
	if req.RegistrationCode != s.cfg.RegistrationCode {
		return nil, ErrBadRegistrationCode
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Code:         req.Code,
		Name:         req.Name,
		Username:     req.Username,
		Department:   req.Department,
		Semester:     req.Semester,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateStudent) {
			return nil, ErrDuplicateStudent
		}
		return nil, err
	}
	return student, nil
}

// Create adds a student account on behalf of an admin.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Code:         req.Code,
		Name:         req.Name,
		Username:     req.Username,
		Department:   req.Department,
		Semester:     req.Semester,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateStudent) {
			return nil, ErrDuplicateStudent
		}
		return nil, err
	}
	return student, nil
}

// GetByID retrieves one student.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// GetByUsername retrieves one student by username.
func (s *StudentService) GetByUsername(ctx context.Context, username string) (*model.Student, error) {
	student, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// ListPaginated retrieves students page by page, optionally filtered by
// department.
func (s *StudentService) ListPaginated(ctx context.Context, department *string, page, perPage int) ([]model.Student, int, error) {
	offset := (page - 1) * perPage
	return s.repo.ListPaginated(ctx, department, perPage, offset)
}

// Update modifies a student's profile.
func (s *StudentService) Update(ctx context.Context, id int, req *model.UpdateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		ID:         id,
		Code:       req.Code,
		Name:       req.Name,
		Username:   req.Username,
		Department: req.Department,
		Semester:   req.Semester,
	}
	if err := s.repo.Update(ctx, student); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateStudent):
			return nil, ErrDuplicateStudent
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// ResetPassword sets a new password for a student.
func (s *StudentService) ResetPassword(ctx context.Context, id int, password string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// Delete removes a student account and clears any active session.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotFound
		}
		return err
	}
	return s.auth.ClearStudentSession(ctx, id)
}
