package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jufeed/feedback-backend/internal/model"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// List retrieves all courses ordered by name.
func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_name, programme, semester, faculty_id, created_at, updated_at
		 FROM courses ORDER BY course_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Programme, &c.Semester, &c.FacultyID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListBySemester retrieves the courses offered in one semester, joined with
// the assigned faculty member. Used by the student course picker.
func (r *CourseRepository) ListBySemester(ctx context.Context, semester int) ([]model.CourseWithFaculty, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.course_name, f.id, f.name
		 FROM courses c
		 JOIN faculties f ON f.id = c.faculty_id
		 WHERE c.semester = $1
		 ORDER BY c.course_name`, semester,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.CourseWithFaculty
	for rows.Next() {
		var c model.CourseWithFaculty
		if err := rows.Scan(&c.ID, &c.Name, &c.FacultyID, &c.FacultyName); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_name, programme, semester, faculty_id, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Programme, &c.Semester, &c.FacultyID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (course_name, programme, semester, faculty_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Programme, c.Semester, c.FacultyID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies a course.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE courses SET course_name = $1, programme = $2, semester = $3, faculty_id = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		c.Name, c.Programme, c.Semester, c.FacultyID, c.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a course by ID.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
