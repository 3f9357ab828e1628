package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jufeed/feedback-backend/internal/model"
)

// ErrDuplicateFeedback is returned when a student submits feedback for a
// course they have already evaluated.
var ErrDuplicateFeedback = errors.New("feedback for this course already submitted")

// FeedbackRepository handles feedback submission data access.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

// Create inserts a feedback submission. The unique (student_id, course_id)
// constraint enforces one submission per student per course.
func (r *FeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO feedback (student_id, course_id, faculty_id, answers, comment)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		f.StudentID, f.CourseID, f.FacultyID, f.Answers, f.Comment,
	).Scan(&f.ID, &f.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateFeedback
		}
		return err
	}
	return nil
}

// ExistsByStudentAndCourse reports whether a student already evaluated a course.
func (r *FeedbackRepository) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM feedback WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID,
	).Scan(&exists)
	return exists, err
}

// ListCourseIDsByStudent returns the ids of courses the student has already
// evaluated.
func (r *FeedbackRepository) ListCourseIDsByStudent(ctx context.Context, studentID int) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT course_id FROM feedback WHERE student_id = $1`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListDetailsPaginated retrieves feedback rows joined with student, course
// and faculty names for the admin review screen, newest first. courseID
// optionally narrows the listing to one course.
func (r *FeedbackRepository) ListDetailsPaginated(ctx context.Context, courseID *int, limit, offset int) ([]model.FeedbackDetail, int, error) {
	countQuery := `SELECT COUNT(*) FROM feedback`
	var countArgs []interface{}
	if courseID != nil {
		countQuery += ` WHERE course_id = $1`
		countArgs = append(countArgs, *courseID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT fb.id, s.student_name, s.student_code, c.course_name, f.name, fb.answers, fb.comment, fb.created_at
		 FROM feedback fb
		 JOIN students s ON s.id = fb.student_id
		 JOIN courses c ON c.id = fb.course_id
		 JOIN faculties f ON f.id = fb.faculty_id`
	var args []interface{}
	if courseID != nil {
		query += ` WHERE fb.course_id = $1 ORDER BY fb.created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, *courseID, limit, offset)
	} else {
		query += ` ORDER BY fb.created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var details []model.FeedbackDetail
	for rows.Next() {
		var d model.FeedbackDetail
		if err := rows.Scan(&d.ID, &d.StudentName, &d.StudentCode, &d.CourseName, &d.FacultyName, &d.Answers, &d.Comment, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, rows.Err()
}

// Delete removes a feedback submission by ID and returns the course it
// belonged to, so the caller can refresh that course's summary.
func (r *FeedbackRepository) Delete(ctx context.Context, id int) (int, error) {
	var courseID int
	err := r.pool.QueryRow(ctx,
		`DELETE FROM feedback WHERE id = $1 RETURNING course_id`, id,
	).Scan(&courseID)
	if err != nil {
		return 0, err
	}
	return courseID, nil
}

// RefreshCourseSummaries recomputes the aggregates for a batch of courses in
// one transaction. Rating answers are the numeric values inside the answers
// document; non-numeric values are ignored by the average. Courses whose
// feedback was fully deleted end up with no summary row.
func (r *FeedbackRepository) RefreshCourseSummaries(ctx context.Context, courseIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM course_feedback_summary
		 WHERE course_id IN (SELECT UNNEST($1::int[]))`, courseIDs,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO course_feedback_summary (course_id, submission_count, average_rating, updated_at)
		 SELECT fb.course_id,
		        COUNT(DISTINCT fb.id),
		        COALESCE(AVG(a.value::numeric) FILTER (WHERE a.value ~ '^[0-9]+(\.[0-9]+)?$'), 0),
		        CURRENT_TIMESTAMP
		 FROM feedback fb
		 CROSS JOIN LATERAL jsonb_each_text(fb.answers) AS a (key, value)
		 WHERE fb.course_id IN (SELECT UNNEST($1::int[]))
		 GROUP BY fb.course_id`, courseIDs,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListCourseSummaries retrieves the per-course aggregates joined with course
// names, ordered by course name.
func (r *FeedbackRepository) ListCourseSummaries(ctx context.Context) ([]model.CourseSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.course_id, c.course_name, s.submission_count, s.average_rating, s.updated_at
		 FROM course_feedback_summary s
		 JOIN courses c ON c.id = s.course_id
		 ORDER BY c.course_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.CourseSummary
	for rows.Next() {
		var s model.CourseSummary
		if err := rows.Scan(&s.CourseID, &s.CourseName, &s.SubmissionCount, &s.AverageRating, &s.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
