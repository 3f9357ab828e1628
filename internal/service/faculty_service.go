package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
)

// ErrFacultyNotFound is returned when a faculty id does not exist.
var ErrFacultyNotFound = errors.New("faculty not found")

// FacultyService manages the faculty roster.
type FacultyService struct {
	repo *repository.FacultyRepository
}

// NewFacultyService creates a new FacultyService.
func NewFacultyService(repo *repository.FacultyRepository) *FacultyService {
	return &FacultyService{repo: repo}
}

// List retrieves all faculty members.
func (s *FacultyService) List(ctx context.Context) ([]model.Faculty, error) {
	return s.repo.List(ctx)
}

// GetByID retrieves one faculty member.
func (s *FacultyService) GetByID(ctx context.Context, id int) (*model.Faculty, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}
	return f, nil
}

// Create adds a faculty member.
func (s *FacultyService) Create(ctx context.Context, req *model.SaveFacultyRequest) (*model.Faculty, error) {
	f := &model.Faculty{
		Name:        req.Name,
		Designation: req.Designation,
		Department:  req.Department,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Update modifies a faculty member.
func (s *FacultyService) Update(ctx context.Context, id int, req *model.SaveFacultyRequest) (*model.Faculty, error) {
	f := &model.Faculty{
		ID:          id,
		Name:        req.Name,
		Designation: req.Designation,
		Department:  req.Department,
	}
	if err := s.repo.Update(ctx, f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a faculty member.
func (s *FacultyService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFacultyNotFound
		}
		return err
	}
	return nil
}
