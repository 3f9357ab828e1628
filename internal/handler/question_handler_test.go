package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
	"github.com/jufeed/feedback-backend/internal/service"
	"github.com/jufeed/feedback-backend/internal/validator"
	"github.com/rs/zerolog"
)

// fakeQuestionStore backs the handler tests with an in-memory question list
// and rollback-on-error transaction semantics.
type fakeQuestionStore struct {
	rows   map[int]model.Question
	nextID int
}

func newFakeQuestionStore(n int) *fakeQuestionStore {
	s := &fakeQuestionStore{rows: make(map[int]model.Question), nextID: 1}
	for i := 1; i <= n; i++ {
		s.rows[s.nextID] = model.Question{
			ID:        s.nextID,
			Text:      "Question",
			Type:      model.QuestionTypeRating,
			Position:  i,
			Required:  true,
			Active:    true,
			CreatedAt: time.Now(),
		}
		s.nextID++
	}
	return s
}

func (s *fakeQuestionStore) ordered() []model.Question {
	out := make([]model.Question, 0, len(s.rows))
	for _, q := range s.rows {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (s *fakeQuestionStore) ListAll(_ context.Context) ([]model.Question, error) {
	return s.ordered(), nil
}

func (s *fakeQuestionStore) ListActive(_ context.Context) ([]model.Question, error) {
	var out []model.Question
	for _, q := range s.ordered() {
		if q.Active {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeQuestionStore) GetByID(_ context.Context, id int) (*model.Question, error) {
	q, ok := s.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &q, nil
}

func (s *fakeQuestionStore) InOrderingTx(_ context.Context, fn func(tx repository.OrderingTx) error) error {
	snap := make(map[int]model.Question, len(s.rows))
	for id, q := range s.rows {
		snap[id] = q
	}
	nextID := s.nextID

	if err := fn(&fakeTx{store: s}); err != nil {
		s.rows = snap
		s.nextID = nextID
		return err
	}
	return nil
}

type fakeTx struct {
	store *fakeQuestionStore
}

func (t *fakeTx) Count(_ context.Context) (int, error) {
	return len(t.store.rows), nil
}

func (t *fakeTx) PositionOf(_ context.Context, id int) (int, error) {
	q, ok := t.store.rows[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return q.Position, nil
}

func (t *fakeTx) PositionsOf(_ context.Context, ids []int) (map[int]int, error) {
	out := make(map[int]int)
	for _, id := range ids {
		if q, ok := t.store.rows[id]; ok {
			out[id] = q.Position
		}
	}
	return out, nil
}

func (t *fakeTx) Positions(_ context.Context) ([]int, error) {
	var out []int
	for _, q := range t.store.rows {
		out = append(out, q.Position)
	}
	sort.Ints(out)
	return out, nil
}

func (t *fakeTx) Insert(_ context.Context, q *model.Question) error {
	q.ID = t.store.nextID
	q.CreatedAt = time.Now()
	t.store.nextID++
	t.store.rows[q.ID] = *q
	return nil
}

func (t *fakeTx) Update(_ context.Context, q *model.Question) error {
	if _, ok := t.store.rows[q.ID]; !ok {
		return pgx.ErrNoRows
	}
	t.store.rows[q.ID] = *q
	return nil
}

func (t *fakeTx) Delete(_ context.Context, id int) error {
	if _, ok := t.store.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(t.store.rows, id)
	return nil
}

func (t *fakeTx) ShiftAtOrAfter(_ context.Context, from, delta int) error {
	for id, q := range t.store.rows {
		if q.Position >= from {
			q.Position += delta
			t.store.rows[id] = q
		}
	}
	return nil
}

func (t *fakeTx) ShiftBetween(_ context.Context, low, high, delta, excludeID int) error {
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

func (t *fakeTx) OffsetPositions(_ context.Context, ids []int, offset int) error {
	for _, id := range ids {
		q := t.store.rows[id]
		q.Position += offset
		t.store.rows[id] = q
	}
	return nil
}

func (t *fakeTx) LandPositions(_ context.Context, orders []model.QuestionOrder) error {
	for _, o := range orders {
		q := t.store.rows[o.ID]
		q.Position = o.Position
		t.store.rows[o.ID] = q
	}
	return nil
}

func setupQuestionRouter(store *fakeQuestionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	svc := service.NewQuestionService(store, nil, zerolog.Nop())
	h := NewQuestionHandler(svc)

	r := gin.New()
	r.GET("/questions", h.List)
	r.POST("/questions", h.Create)
	r.PUT("/questions/reorder", h.Reorder)
	r.PUT("/questions/:id", h.Update)
	r.DELETE("/questions/:id", h.Delete)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	if body.Error == nil {
		t.Fatalf("expected error body, got %s", w.Body.String())
	}
	return body.Error.Code
}

func TestCreateQuestionEndpoint(t *testing.T) {
	store := newFakeQuestionStore(2)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodPost, "/questions",
		`{"question_text":"How was the pacing?","question_type":"RATING","display_order":1}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}

	rows := store.ordered()
	if len(rows) != 3 || rows[0].Text != "How was the pacing?" {
		t.Fatalf("question not inserted at head: %+v", rows)
	}
}

func TestCreateQuestionRejectsBadPosition(t *testing.T) {
	store := newFakeQuestionStore(2)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodPost, "/questions",
		`{"question_text":"Too far","question_type":"RATING","display_order":9}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "POSITION_OUT_OF_RANGE" {
		t.Fatalf("error code = %q, want POSITION_OUT_OF_RANGE", code)
	}
}

func TestCreateQuestionValidatesPayload(t *testing.T) {
	store := newFakeQuestionStore(1)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodPost, "/questions",
		`{"question_type":"ESSAY","display_order":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "VALIDATION_ERROR" {
		t.Fatalf("error code = %q, want VALIDATION_ERROR", code)
	}
}

func TestDeleteQuestionEndpoint(t *testing.T) {
	store := newFakeQuestionStore(3)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodDelete, "/questions/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	rows := store.ordered()
	if len(rows) != 2 || rows[0].Position != 1 || rows[1].Position != 2 {
		t.Fatalf("gap not closed after delete: %+v", rows)
	}
}

func TestDeleteMissingQuestionReturnsNotFound(t *testing.T) {
	store := newFakeQuestionStore(1)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodDelete, "/questions/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if code := errorCode(t, w); code != "NOT_FOUND" {
		t.Fatalf("error code = %q, want NOT_FOUND", code)
	}
}

func TestReorderEndpoint(t *testing.T) {
	store := newFakeQuestionStore(3)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodPut, "/questions/reorder",
		`{"questions":[{"id":1,"display_order":3},{"id":2,"display_order":1},{"id":3,"display_order":2}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	rows := store.ordered()
	wantIDs := []int{2, 3, 1}
	for i, q := range rows {
		if q.ID != wantIDs[i] {
			t.Fatalf("position %d held by question %d, want %d", i+1, q.ID, wantIDs[i])
		}
	}
}

func TestReorderRejectsDuplicateTargets(t *testing.T) {
	store := newFakeQuestionStore(2)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodPut, "/questions/reorder",
		`{"questions":[{"id":1,"display_order":1},{"id":2,"display_order":1}]}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if code := errorCode(t, w); code != "DUPLICATE_POSITION" {
		t.Fatalf("error code = %q, want DUPLICATE_POSITION", code)
	}
}

func TestReorderRejectsNonPermutation(t *testing.T) {
	store := newFakeQuestionStore(3)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodPut, "/questions/reorder",
		`{"questions":[{"id":1,"display_order":3}]}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if code := errorCode(t, w); code != "CONFLICT" {
		t.Fatalf("error code = %q, want CONFLICT", code)
	}
}

func TestUpdateQuestionMovesPosition(t *testing.T) {
	store := newFakeQuestionStore(3)
	r := setupQuestionRouter(store)

	w := doRequest(t, r, http.MethodPut, "/questions/1",
		`{"question_text":"Edited","question_type":"TEXT","display_order":3,"is_required":false,"is_active":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	rows := store.ordered()
	if rows[2].ID != 1 || rows[2].Text != "Edited" {
		t.Fatalf("question 1 not moved to the end: %+v", rows)
	}
}
