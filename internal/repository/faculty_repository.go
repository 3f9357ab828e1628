package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jufeed/feedback-backend/internal/model"
)

// FacultyRepository handles faculty data access.
type FacultyRepository struct {
	pool *pgxpool.Pool
}

// NewFacultyRepository creates a new FacultyRepository.
func NewFacultyRepository(pool *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{pool: pool}
}

// List retrieves all faculty members ordered by name.
func (r *FacultyRepository) List(ctx context.Context) ([]model.Faculty, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, designation, department, created_at, updated_at
		 FROM faculties ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faculties []model.Faculty
	for rows.Next() {
		var f model.Faculty
		if err := rows.Scan(&f.ID, &f.Name, &f.Designation, &f.Department, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

// GetByID retrieves a faculty member by ID.
func (r *FacultyRepository) GetByID(ctx context.Context, id int) (*model.Faculty, error) {
	f := &model.Faculty{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, designation, department, created_at, updated_at
		 FROM faculties WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.Designation, &f.Department, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a new faculty member.
func (r *FacultyRepository) Create(ctx context.Context, f *model.Faculty) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO faculties (name, designation, department)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		f.Name, f.Designation, f.Department,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// Update modifies a faculty member.
func (r *FacultyRepository) Update(ctx context.Context, f *model.Faculty) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE faculties SET name = $1, designation = $2, department = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		f.Name, f.Designation, f.Department, f.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a faculty member by ID.
func (r *FacultyRepository) Delete(ctx context.Context, id int) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM faculties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
