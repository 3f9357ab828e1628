package model

import "time"

// Question is a single feedback-form question. Position is its 1-based rank
// in display order; the ordering engine keeps positions dense across the
// whole table (exactly {1..N}, no gaps, no duplicates).
type Question struct {
	ID        int          `json:"id"`
	Text      string       `json:"question_text"`
	Type      QuestionType `json:"question_type"`
	Position  int          `json:"display_order"`
	Required  bool         `json:"is_required"`
	Active    bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

type QuestionType string

const (
	QuestionTypeRating QuestionType = "RATING"
	QuestionTypeText   QuestionType = "TEXT"
)

// QuestionOrder pairs a question id with its target position in a bulk reorder.
type QuestionOrder struct {
	ID       int `json:"id" binding:"required,min=1"`
	Position int `json:"display_order" binding:"required,min=1"`
}

// CreateQuestionRequest is the payload for adding a question at a position.
type CreateQuestionRequest struct {
	Text     string `json:"question_text" binding:"required,min=1,max=2000"`
	Type     string `json:"question_type" binding:"required,oneof=RATING TEXT"`
	Position int    `json:"display_order" binding:"required,min=1"`
	Required *bool  `json:"is_required"`
}

// UpdateQuestionRequest is the payload for editing a question, optionally
// moving it to a new position.
type UpdateQuestionRequest struct {
	Text     string `json:"question_text" binding:"required,min=1,max=2000"`
	Type     string `json:"question_type" binding:"required,oneof=RATING TEXT"`
	Position int    `json:"display_order" binding:"required,min=1"`
	Required *bool  `json:"is_required" binding:"required"`
	Active   *bool  `json:"is_active" binding:"required"`
}

// ReorderQuestionsRequest is the payload for a bulk drag-and-drop reorder.
type ReorderQuestionsRequest struct {
	Questions []QuestionOrder `json:"questions" binding:"required,min=1,dive"`
}
