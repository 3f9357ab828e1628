package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
)

// ErrCourseNotFound is returned when a course id does not exist.
var ErrCourseNotFound = errors.New("course not found")

// CourseService manages the course catalogue.
type CourseService struct {
	repo        *repository.CourseRepository
	facultyRepo *repository.FacultyRepository
}

// NewCourseService creates a new CourseService.
func NewCourseService(repo *repository.CourseRepository, facultyRepo *repository.FacultyRepository) *CourseService {
	return &CourseService{repo: repo, facultyRepo: facultyRepo}
}

// List retrieves all courses.
func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	return s.repo.List(ctx)
}

// ListForSemester retrieves the courses a student in the given semester can
// evaluate, with faculty names attached.
func (s *CourseService) ListForSemester(ctx context.Context, semester int) ([]model.CourseWithFaculty, error) {
	return s.repo.ListBySemester(ctx, semester)
}

// GetByID retrieves one course.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create adds a course after verifying the assigned faculty exists.
func (s *CourseService) Create(ctx context.Context, req *model.SaveCourseRequest) (*model.Course, error) {
	if _, err := s.facultyRepo.GetByID(ctx, req.FacultyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}

	c := &model.Course{
		Name:      req.Name,
		Programme: req.Programme,
		Semester:  req.Semester,
		FacultyID: req.FacultyID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update modifies a course after verifying the assigned faculty exists.
func (s *CourseService) Update(ctx context.Context, id int, req *model.SaveCourseRequest) (*model.Course, error) {
	if _, err := s.facultyRepo.GetByID(ctx, req.FacultyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}

	c := &model.Course{
		ID:        id,
		Name:      req.Name,
		Programme: req.Programme,
		Semester:  req.Semester,
		FacultyID: req.FacultyID,
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}
