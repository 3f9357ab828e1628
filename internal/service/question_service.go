package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/config"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Ordering errors surfaced to the transport layer.
var (
	ErrQuestionNotFound   = errors.New("question not found")
	ErrEmptyReorder       = errors.New("reorder batch is empty")
	ErrPositionOutOfRange = errors.New("target position is out of range")
	ErrDuplicatePosition  = errors.New("reorder batch assigns a position or question more than once")
	ErrNotPermutation     = errors.New("reorder batch is not a permutation of the current positions")
	ErrOrderingNotDense   = errors.New("question positions are not dense")
)

// activeCacheTTL bounds staleness if an invalidation is ever lost.
const activeCacheTTL = 10 * time.Minute

// QuestionStore is the persistence contract the ordering engine runs
// against. Reorder-class mutations go through InOrderingTx so they commit
// atomically under the ordering lock.
type QuestionStore interface {
	ListAll(ctx context.Context) ([]model.Question, error)
	ListActive(ctx context.Context) ([]model.Question, error)
	GetByID(ctx context.Context, id int) (*model.Question, error)
	InOrderingTx(ctx context.Context, fn func(tx repository.OrderingTx) error) error
}

// QuestionService maintains the feedback-question list and its ordering
// invariant: positions are always exactly {1..N}, 1-based, gap-free. Every
// mutation runs in one store transaction and re-verifies density before
// committing.
type QuestionService struct {
	store QuestionStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewQuestionService creates a new QuestionService. rdb may be nil, which
// disables the active-list cache (CLI tools and tests run without Redis).
func NewQuestionService(store QuestionStore, rdb *redis.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "question_service").Logger(),
	}
}

// ListAll retrieves every question for the admin view, ordered by position.
func (s *QuestionService) ListAll(ctx context.Context) ([]model.Question, error) {
	return s.store.ListAll(ctx)
}

// ListActive retrieves the student-facing questions, ordered by position.
// Served from Redis when possible; the cache is invalidated by every
// reorder-class mutation.
func (s *QuestionService) ListActive(ctx context.Context) ([]model.Question, error) {
	key := config.CacheKey.ActiveQuestionsKey()

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached []model.Question
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	questions, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil && questions != nil {
		if raw, err := json.Marshal(questions); err == nil {
			if err := s.rdb.Set(ctx, key, raw, activeCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache active questions")
			}
		}
	}

	return questions, nil
}

// Create inserts a question at q.Position. Every row at or after the target
// position shifts one place later before the insert, so the new row is the
// only occupant of its position. Target positions beyond N+1 are rejected.
func (s *QuestionService) Create(ctx context.Context, q *model.Question) error {
	if q.Position < 1 {
		return ErrPositionOutOfRange
	}

	err := s.store.InOrderingTx(ctx, func(tx repository.OrderingTx) error {
		n, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		if q.Position > n+1 {
			return ErrPositionOutOfRange
		}

		if err := tx.ShiftAtOrAfter(ctx, q.Position, +1); err != nil {
			return err
		}
		if err := tx.Insert(ctx, q); err != nil {
			return err
		}
		return verifyDense(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.invalidateActiveCache(ctx)
	return nil
}

// Update rewrites a question's fields and, when q.Position differs from the
// stored position, shifts the closed interval between the two positions by
// one so the question can land without leaving a gap or a duplicate. The
// stored position is authoritative; client-supplied previous positions are
// ignored.
func (s *QuestionService) Update(ctx context.Context, q *model.Question) error {
	if q.Position < 1 {
		return ErrPositionOutOfRange
	}

	err := s.store.InOrderingTx(ctx, func(tx repository.OrderingTx) error {
		oldPos, err := tx.PositionOf(ctx, q.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrQuestionNotFound
			}
			return err
		}

		n, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		if q.Position > n {
			return ErrPositionOutOfRange
		}

		switch {
		case q.Position > oldPos:
			// Moving later: pull the rows in between one place earlier.
			if err := tx.ShiftBetween(ctx, oldPos+1, q.Position, -1, q.ID); err != nil {
				return err
			}
		case q.Position < oldPos:
			// Moving earlier: push the rows in between one place later.
			if err := tx.ShiftBetween(ctx, q.Position, oldPos-1, +1, q.ID); err != nil {
				return err
			}
		}

		if err := tx.Update(ctx, q); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrQuestionNotFound
			}
			return err
		}
		return verifyDense(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.invalidateActiveCache(ctx)
	return nil
}

// Delete removes a question and closes the gap it leaves: every row after
// the deleted position shifts one place earlier.
func (s *QuestionService) Delete(ctx context.Context, id int) error {
	err := s.store.InOrderingTx(ctx, func(tx repository.OrderingTx) error {
		pos, err := tx.PositionOf(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrQuestionNotFound
			}
			return err
		}

		if err := tx.Delete(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrQuestionNotFound
			}
			return err
		}
		if err := tx.ShiftAtOrAfter(ctx, pos+1, -1); err != nil {
			return err
		}
		return verifyDense(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.invalidateActiveCache(ctx)
	return nil
}

// Reorder applies a drag-and-drop batch: each entry maps a question id to
// its new position. The batch must be an exact permutation of the affected
// rows' current positions. Because intermediate states may collide with
// positions not yet vacated, every affected row is first offset past the end
// of the valid range (by the current row count), then all final positions
// land in a single statement.
func (s *QuestionService) Reorder(ctx context.Context, orders []model.QuestionOrder) error {
	if len(orders) == 0 {
		return ErrEmptyReorder
	}

	ids := make([]int, 0, len(orders))
	seenID := make(map[int]bool, len(orders))
	seenPos := make(map[int]bool, len(orders))
	for _, o := range orders {
		if seenID[o.ID] || seenPos[o.Position] {
			return ErrDuplicatePosition
		}
		seenID[o.ID] = true
		seenPos[o.Position] = true
		ids = append(ids, o.ID)
	}

	err := s.store.InOrderingTx(ctx, func(tx repository.OrderingTx) error {
		current, err := tx.PositionsOf(ctx, ids)
		if err != nil {
			return err
		}
		if len(current) != len(ids) {
			return ErrQuestionNotFound
		}

		// The batch may only permute the positions the affected rows
		// already occupy; anything else would break density for the rest
		// of the table.
		have := make([]int, 0, len(current))
		for _, pos := range current {
			have = append(have, pos)
		}
		want := make([]int, 0, len(orders))
		for _, o := range orders {
			want = append(want, o.Position)
		}
		sort.Ints(have)
		sort.Ints(want)
		for i := range have {
			if have[i] != want[i] {
				return ErrNotPermutation
			}
		}

		n, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		// Offset-then-land: park every affected row past position N so no
		// intermediate assignment collides with a not-yet-vacated position.
		if err := tx.OffsetPositions(ctx, ids, n); err != nil {
			return err
		}
		if err := tx.LandPositions(ctx, orders); err != nil {
			return err
		}
		return verifyDense(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.invalidateActiveCache(ctx)
	return nil
}

// verifyDense re-reads the position column and confirms it is exactly
// {1..N}. Called as the last step of every mutation so a violation rolls
// the transaction back instead of committing a corrupt ordering.
func verifyDense(ctx context.Context, tx repository.OrderingTx) error {
	positions, err := tx.Positions(ctx)
	if err != nil {
		return err
	}
	for i, pos := range positions {
		if pos != i+1 {
			return fmt.Errorf("%w: found %d at rank %d", ErrOrderingNotDense, pos, i+1)
		}
	}
	return nil
}

func (s *QuestionService) invalidateActiveCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.ActiveQuestionsKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate active question cache")
	}
}
