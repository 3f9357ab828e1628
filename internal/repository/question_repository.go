package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jufeed/feedback-backend/internal/model"
)

// questionOrderLock is the advisory lock id serializing reorder-class
// transactions. Range shifts over display_order have no per-row lock
// granularity that stops two concurrent writers from double-counting, so
// the whole question ordering is one lock domain.
const questionOrderLock = 421537

// OrderingTx is the set of primitives available inside a single ordering
// transaction. All position mutations compose from these. Implementations
// return pgx.ErrNoRows when a targeted row does not exist.
type OrderingTx interface {
	// Count returns the number of question rows.
	Count(ctx context.Context) (int, error)
	// PositionOf returns the stored position of one question.
	PositionOf(ctx context.Context, id int) (int, error)
	// PositionsOf returns id → position for the given ids; absent ids are
	// simply missing from the map.
	PositionsOf(ctx context.Context, ids []int) (map[int]int, error)
	// Positions returns every stored position in ascending order.
	Positions(ctx context.Context) ([]int, error)
	// Insert adds a new question row at q.Position and fills q.ID/q.CreatedAt.
	Insert(ctx context.Context, q *model.Question) error
	// Update rewrites all mutable fields of an existing question.
	Update(ctx context.Context, q *model.Question) error
	// Delete removes a question row.
	Delete(ctx context.Context, id int) error
	// ShiftAtOrAfter adds delta to every position >= from.
	ShiftAtOrAfter(ctx context.Context, from, delta int) error
	// ShiftBetween adds delta to every position in [low, high], skipping excludeID.
	ShiftBetween(ctx context.Context, low, high, delta, excludeID int) error
	// OffsetPositions adds offset to the positions of the given ids.
	OffsetPositions(ctx context.Context, ids []int, offset int) error
	// LandPositions assigns each id its final position in one statement.
	LandPositions(ctx context.Context, orders []model.QuestionOrder) error
}

// QuestionRepository is the durable ordered store of feedback questions.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListAll retrieves every question ordered by ascending position.
func (r *QuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, question_type, display_order, is_required, is_active, created_at
		 FROM feedback_questions
		 ORDER BY display_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// ListActive retrieves the student-facing questions ordered by ascending position.
func (r *QuestionRepository) ListActive(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, question_type, display_order, is_required, is_active, created_at
		 FROM feedback_questions
		 WHERE is_active = TRUE
		 ORDER BY display_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_text, question_type, display_order, is_required, is_active, created_at
		 FROM feedback_questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Text, &q.Type, &q.Position, &q.Required, &q.Active, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// InOrderingTx runs fn inside one transaction holding the ordering advisory
// lock. fn's mutations commit together or not at all: any error rolls the
// whole transaction back and is returned unchanged.
func (r *QuestionRepository) InOrderingTx(ctx context.Context, fn func(tx OrderingTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, questionOrderLock); err != nil {
		return err
	}

	if err := fn(&orderingTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &q.Position, &q.Required, &q.Active, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// orderingTx implements OrderingTx on a live pgx transaction.
type orderingTx struct {
	tx pgx.Tx
}

func (t *orderingTx) Count(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM feedback_questions`).Scan(&n)
	return n, err
}

func (t *orderingTx) PositionOf(ctx context.Context, id int) (int, error) {
	var pos int
	err := t.tx.QueryRow(ctx,
		`SELECT display_order FROM feedback_questions WHERE id = $1`, id,
	).Scan(&pos)
	return pos, err
}

func (t *orderingTx) PositionsOf(ctx context.Context, ids []int) (map[int]int, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, display_order FROM feedback_questions WHERE id = ANY($1::int[])`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make(map[int]int, len(ids))
	for rows.Next() {
		var id, pos int
		if err := rows.Scan(&id, &pos); err != nil {
			return nil, err
		}
		positions[id] = pos
	}
	return positions, rows.Err()
}

func (t *orderingTx) Positions(ctx context.Context) ([]int, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT display_order FROM feedback_questions ORDER BY display_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []int
	for rows.Next() {
		var pos int
		if err := rows.Scan(&pos); err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (t *orderingTx) Insert(ctx context.Context, q *model.Question) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO feedback_questions (question_text, question_type, display_order, is_required, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.Text, q.Type, q.Position, q.Required, q.Active,
	).Scan(&q.ID, &q.CreatedAt)
}

func (t *orderingTx) Update(ctx context.Context, q *model.Question) error {
	cmdTag, err := t.tx.Exec(ctx,
		`UPDATE feedback_questions
		 SET question_text = $1, question_type = $2, display_order = $3, is_required = $4, is_active = $5
		 WHERE id = $6`,
		q.Text, q.Type, q.Position, q.Required, q.Active, q.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (t *orderingTx) Delete(ctx context.Context, id int) error {
	cmdTag, err := t.tx.Exec(ctx, `DELETE FROM feedback_questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (t *orderingTx) ShiftAtOrAfter(ctx context.Context, from, delta int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE feedback_questions SET display_order = display_order + $1 WHERE display_order >= $2`,
		delta, from,
	)
	return err
}

func (t *orderingTx) ShiftBetween(ctx context.Context, low, high, delta, excludeID int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE feedback_questions
		 SET display_order = display_order + $1
		 WHERE display_order BETWEEN $2 AND $3 AND id <> $4`,
		delta, low, high, excludeID,
	)
	return err
}

func (t *orderingTx) OffsetPositions(ctx context.Context, ids []int, offset int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE feedback_questions SET display_order = display_order + $1 WHERE id = ANY($2::int[])`,
		offset, ids,
	)
	return err
}

func (t *orderingTx) LandPositions(ctx context.Context, orders []model.QuestionOrder) error {
	ids := make([]int, 0, len(orders))
	positions := make([]int, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		positions = append(positions, o.Position)
	}

	_, err := t.tx.Exec(ctx,
		`UPDATE feedback_questions AS q
		 SET display_order = t.display_order
		 FROM (
			SELECT u.id, u.display_order
			FROM UNNEST($1::int[], $2::int[]) AS u (id, display_order)
		 ) AS t
		 WHERE q.id = t.id`,
		ids, positions,
	)
	return err
}
