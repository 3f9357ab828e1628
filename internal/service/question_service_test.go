package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
	"github.com/rs/zerolog"
)

var errInjected = errors.New("injected store failure")

// memoryStore is an in-memory QuestionStore with real transaction
// semantics: InOrderingTx snapshots the rows and restores them when the
// body fails, so rollback behavior can be asserted. failOn injects a store
// failure into the named primitive.
type memoryStore struct {
	rows   map[int]model.Question
	nextID int

	failOn     string
	shiftCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[int]model.Question), nextID: 1}
}

func (m *memoryStore) seed(n int) {
	for i := 1; i <= n; i++ {
		m.rows[m.nextID] = model.Question{
			ID:        m.nextID,
			Text:      fmt.Sprintf("Question %d", i),
			Type:      model.QuestionTypeRating,
			Position:  i,
			Required:  true,
			Active:    true,
			CreatedAt: time.Now(),
		}
		m.nextID++
	}
}

func (m *memoryStore) snapshot() map[int]model.Question {
	snap := make(map[int]model.Question, len(m.rows))
	for id, q := range m.rows {
		snap[id] = q
	}
	return snap
}

func (m *memoryStore) ordered() []model.Question {
	out := make([]model.Question, 0, len(m.rows))
	for _, q := range m.rows {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (m *memoryStore) ListAll(_ context.Context) ([]model.Question, error) {
	return m.ordered(), nil
}

func (m *memoryStore) ListActive(_ context.Context) ([]model.Question, error) {
	var out []model.Question
	for _, q := range m.ordered() {
		if q.Active {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryStore) GetByID(_ context.Context, id int) (*model.Question, error) {
	q, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &q, nil
}

func (m *memoryStore) InOrderingTx(_ context.Context, fn func(tx repository.OrderingTx) error) error {
	snap := m.snapshot()
	nextID := m.nextID

	if err := fn(&memoryTx{store: m}); err != nil {
		m.rows = snap
		m.nextID = nextID
		return err
	}
	return nil
}

type memoryTx struct {
	store *memoryStore
}

func (t *memoryTx) fail(op string) error {
	if t.store.failOn == op {
		return errInjected
	}
	return nil
}

func (t *memoryTx) Count(_ context.Context) (int, error) {
	if err := t.fail("count"); err != nil {
		return 0, err
	}
	return len(t.store.rows), nil
}

func (t *memoryTx) PositionOf(_ context.Context, id int) (int, error) {
	if err := t.fail("position_of"); err != nil {
		return 0, err
	}
	q, ok := t.store.rows[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return q.Position, nil
}

func (t *memoryTx) PositionsOf(_ context.Context, ids []int) (map[int]int, error) {
	out := make(map[int]int)
	for _, id := range ids {
		if q, ok := t.store.rows[id]; ok {
			out[id] = q.Position
		}
	}
	return out, nil
}

func (t *memoryTx) Positions(_ context.Context) ([]int, error) {
	var out []int
	for _, q := range t.store.rows {
		out = append(out, q.Position)
	}
	sort.Ints(out)
	return out, nil
}

func (t *memoryTx) Insert(_ context.Context, q *model.Question) error {
	if err := t.fail("insert"); err != nil {
		return err
	}
	q.ID = t.store.nextID
	q.CreatedAt = time.Now()
	t.store.nextID++
	t.store.rows[q.ID] = *q
	return nil
}

func (t *memoryTx) Update(_ context.Context, q *model.Question) error {
	if err := t.fail("update"); err != nil {
		return err
	}
	existing, ok := t.store.rows[q.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	q.CreatedAt = existing.CreatedAt
	t.store.rows[q.ID] = *q
	return nil
}

func (t *memoryTx) Delete(_ context.Context, id int) error {
	if err := t.fail("delete"); err != nil {
		return err
	}
	if _, ok := t.store.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(t.store.rows, id)
	return nil
}

func (t *memoryTx) ShiftAtOrAfter(_ context.Context, from, delta int) error {
	if err := t.fail("shift"); err != nil {
		return err
	}
	t.store.shiftCalls++
	for id, q := range t.store.rows {
		if q.Position >= from {
			q.Position += delta
			t.store.rows[id] = q
		}
	}
	return nil
}

func (t *memoryTx) ShiftBetween(_ context.Context, low, high, delta, excludeID int) error {
	if err := t.fail("shift"); err != nil {
		return err
	}
	t.store.shiftCalls++
	for id, q := range t.store.rows {
		if id == excludeID {
			continue
		}
		if q.Position >= low && q.Position <= high {
			q.Position += delta
			t.store.rows[id] = q
		}
	}
	return nil
}

func (t *memoryTx) OffsetPositions(_ context.Context, ids []int, offset int) error {
	if err := t.fail("offset"); err != nil {
		return err
	}
	for _, id := range ids {
		q := t.store.rows[id]
		q.Position += offset
		t.store.rows[id] = q
	}
	return nil
}

func (t *memoryTx) LandPositions(_ context.Context, orders []model.QuestionOrder) error {
	if err := t.fail("land"); err != nil {
		return err
	}
	for _, o := range orders {
		q := t.store.rows[o.ID]
		q.Position = o.Position
		t.store.rows[o.ID] = q
	}
	return nil
}

func newTestService(store *memoryStore) *QuestionService {
	return NewQuestionService(store, nil, zerolog.Nop())
}

func assertDense(t *testing.T, store *memoryStore) {
	t.Helper()
	rows := store.ordered()
	for i, q := range rows {
		if q.Position != i+1 {
			t.Fatalf("positions not dense: got %d at rank %d (rows: %+v)", q.Position, i+1, rows)
		}
	}
}

func assertOrder(t *testing.T, store *memoryStore, wantIDs []int) {
	t.Helper()
	assertDense(t, store)
	rows := store.ordered()
	if len(rows) != len(wantIDs) {
		t.Fatalf("got %d questions, want %d", len(rows), len(wantIDs))
	}
	for i, q := range rows {
		if q.ID != wantIDs[i] {
			t.Fatalf("position %d held by question %d, want %d", i+1, q.ID, wantIDs[i])
		}
	}
}

func assertUnchanged(t *testing.T, store *memoryStore, before map[int]model.Question) {
	t.Helper()
	if len(store.rows) != len(before) {
		t.Fatalf("row count changed: got %d, want %d", len(store.rows), len(before))
	}
	for id, want := range before {
		got, ok := store.rows[id]
		if !ok {
			t.Fatalf("question %d disappeared", id)
		}
		if got != want {
			t.Fatalf("question %d changed: got %+v, want %+v", id, got, want)
		}
	}
}

func ratingQuestion(text string, position int) *model.Question {
	return &model.Question{
		Text:     text,
		Type:     model.QuestionTypeRating,
		Position: position,
		Required: true,
		Active:   true,
	}
}

func TestCreateInsertsAtPositionAndShiftsLater(t *testing.T) {
	store := newMemoryStore()
	store.seed(3)
	svc := newTestService(store)

	q := ratingQuestion("New question", 2)
	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("Create: %v", err)
	}

	assertOrder(t, store, []int{1, q.ID, 2, 3})
}

func TestCreateAppendsAtEnd(t *testing.T) {
	store := newMemoryStore()
	store.seed(2)
	svc := newTestService(store)

	q := ratingQuestion("Appended", 3)
	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("Create: %v", err)
	}

	assertOrder(t, store, []int{1, 2, q.ID})
}

func TestCreateRejectsPositionBeyondEnd(t *testing.T) {
	store := newMemoryStore()
	store.seed(2)
	svc := newTestService(store)
	before := store.snapshot()

	err := svc.Create(context.Background(), ratingQuestion("Too far", 4))
	if !errors.Is(err, ErrPositionOutOfRange) {
		t.Fatalf("got %v, want ErrPositionOutOfRange", err)
	}
	assertUnchanged(t, store, before)
}

func TestUpdateMovesQuestionLater(t *testing.T) {
	store := newMemoryStore()
	store.seed(4)
	svc := newTestService(store)

	moved := store.rows[1]
	moved.Position = 3
	if err := svc.Update(context.Background(), &moved); err != nil {
		t.Fatalf("Update: %v", err)
	}

	assertOrder(t, store, []int{2, 3, 1, 4})
}

func TestUpdateMovesQuestionEarlier(t *testing.T) {
	store := newMemoryStore()
	store.seed(4)
	svc := newTestService(store)

	moved := store.rows[4]
	moved.Position = 1
	if err := svc.Update(context.Background(), &moved); err != nil {
		t.Fatalf("Update: %v", err)
	}

	assertOrder(t, store, []int{4, 1, 2, 3})
}

func TestUpdateSamePositionSkipsShifting(t *testing.T) {
	store := newMemoryStore()
	store.seed(3)
	svc := newTestService(store)

	edited := store.rows[2]
	edited.Text = "Edited text"
	edited.Active = false
	if err := svc.Update(context.Background(), &edited); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if store.shiftCalls != 0 {
		t.Fatalf("no-op move ran %d shifts, want 0", store.shiftCalls)
	}
	assertOrder(t, store, []int{1, 2, 3})
	if got := store.rows[2]; got.Text != "Edited text" || got.Active {
		t.Fatalf("fields not updated: %+v", got)
	}
}

func TestUpdateRejectsPositionBeyondEnd(t *testing.T) {
	store := newMemoryStore()
	store.seed(3)
	svc := newTestService(store)
	before := store.snapshot()

	moved := store.rows[1]
	moved.Position = 4
	err := svc.Update(context.Background(), &moved)
	if !errors.Is(err, ErrPositionOutOfRange) {
		t.Fatalf("got %v, want ErrPositionOutOfRange", err)
	}
	assertUnchanged(t, store, before)
}

func TestDeleteClosesGap(t *testing.T) {
	store := newMemoryStore()
	store.seed(3)
	svc := newTestService(store)

	if err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	assertOrder(t, store, []int{1, 3})
}

func TestReorderAppliesPermutation(t *testing.T) {
	store := newMemoryStore()
	store.seed(3)
	svc := newTestService(store)

	orders := []model.QuestionOrder{
		{ID: 1, Position: 3},
		{ID: 2, Position: 1},
		{ID: 3, Position: 2},
	}
	if err := svc.Reorder(context.Background(), orders); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	assertOrder(t, store, []int{2, 3, 1})
}

func TestReorderSwapsAdjacentPair(t *testing.T) {
	store := newMemoryStore()
	store.seed(4)
	svc := newTestService(store)

	orders := []model.QuestionOrder{
		{ID: 2, Position: 3},
		{ID: 3, Position: 2},
	}
	if err := svc.Reorder(context.Background(), orders); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	assertOrder(t, store, []int{1, 3, 2, 4})
}

func TestReorderRejectsDuplicateTargets(t *testing.T) {
	store := newMemoryStore()
	store.seed(2)
	svc := newTestService(store)
	before := store.snapshot()

	orders := []model.QuestionOrder{
		{ID: 1, Position: 1},
		{ID: 2, Position: 1},
	}
	err := svc.Reorder(context.Background(), orders)
	if !errors.Is(err, ErrDuplicatePosition) {
		t.Fatalf("got %v, want ErrDuplicatePosition", err)
	}
	assertUnchanged(t, store, before)
}

func TestReorderRejectsNonPermutation(t *testing.T) {
	store := newMemoryStore()
	store.seed(3)
	svc := newTestService(store)
	before := store.snapshot()

	// Question 1 currently holds position 1; sending it to 5 would leave a gap.
	err := svc.Reorder(context.Background(), []model.QuestionOrder{{ID: 1, Position: 5}})
	if !errors.Is(err, ErrNotPermutation) {
		t.Fatalf("got %v, want ErrNotPermutation", err)
	}
	assertUnchanged(t, store, before)
}

func TestReorderRejectsUnknownQuestion(t *testing.T) {
	store := newMemoryStore()
	store.seed(2)
	svc := newTestService(store)
	before := store.snapshot()

	err := svc.Reorder(context.Background(), []model.QuestionOrder{{ID: 99, Position: 1}})
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("got %v, want ErrQuestionNotFound", err)
	}
	assertUnchanged(t, store, before)
}

func TestMutationsOnMissingQuestionReportNotFound(t *testing.T) {
	store := newMemoryStore()
	store.seed(2)
	svc := newTestService(store)
	before := store.snapshot()

	if err := svc.Delete(context.Background(), 99); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("Delete: got %v, want ErrQuestionNotFound", err)
	}

	ghost := ratingQuestion("Ghost", 1)
	ghost.ID = 99
	if err := svc.Update(context.Background(), ghost); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("Update: got %v, want ErrQuestionNotFound", err)
	}

	assertUnchanged(t, store, before)
}

func TestFailureMidTransactionRollsBackEverything(t *testing.T) {
	cases := []struct {
		name   string
		failOn string
		run    func(svc *QuestionService) error
	}{
		{
			name:   "create fails after shift",
			failOn: "insert",
			run: func(svc *QuestionService) error {
				return svc.Create(context.Background(), ratingQuestion("Doomed", 1))
			},
		},
		{
			name:   "move fails after shift",
			failOn: "update",
			run: func(svc *QuestionService) error {
				q := ratingQuestion("Question 1", 3)
				q.ID = 1
				return svc.Update(context.Background(), q)
			},
		},
		{
			name:   "delete fails before gap closes",
			failOn: "shift",
			run: func(svc *QuestionService) error {
				return svc.Delete(context.Background(), 1)
			},
		},
		{
			name:   "reorder fails after offset",
			failOn: "land",
			run: func(svc *QuestionService) error {
				return svc.Reorder(context.Background(), []model.QuestionOrder{
					{ID: 1, Position: 3},
					{ID: 2, Position: 1},
					{ID: 3, Position: 2},
				})
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemoryStore()
			store.seed(3)
			store.failOn = tc.failOn
			svc := newTestService(store)
			before := store.snapshot()

			if err := tc.run(svc); !errors.Is(err, errInjected) {
				t.Fatalf("got %v, want injected failure", err)
			}
			assertUnchanged(t, store, before)
		})
	}
}

func TestDensityHoldsAcrossMixedOperations(t *testing.T) {
	store := newMemoryStore()
	store.seed(5)
	svc := newTestService(store)
	ctx := context.Background()

	if err := svc.Create(ctx, ratingQuestion("Inserted", 3)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	assertDense(t, store)

	moved := store.rows[5]
	moved.Position = 1
	if err := svc.Update(ctx, &moved); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertDense(t, store)

	if err := svc.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertDense(t, store)

	rows := store.ordered()
	orders := make([]model.QuestionOrder, len(rows))
	for i, q := range rows {
		orders[i] = model.QuestionOrder{ID: q.ID, Position: len(rows) - i}
	}
	if err := svc.Reorder(ctx, orders); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	assertDense(t, store)

	if err := svc.Delete(ctx, rows[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertDense(t, store)
}

func TestListActiveFiltersAndOrders(t *testing.T) {
	store := newMemoryStore()
	store.seed(4)
	inactive := store.rows[2]
	inactive.Active = false
	store.rows[2] = inactive
	svc := newTestService(store)

	questions, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}

	wantIDs := []int{1, 3, 4}
	if len(questions) != len(wantIDs) {
		t.Fatalf("got %d questions, want %d", len(questions), len(wantIDs))
	}
	for i, q := range questions {
		if q.ID != wantIDs[i] {
			t.Fatalf("entry %d is question %d, want %d", i, q.ID, wantIDs[i])
		}
	}
}
