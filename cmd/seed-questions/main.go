package main

import (
	"context"
	"fmt"

	"github.com/jufeed/feedback-backend/internal/config"
	"github.com/jufeed/feedback-backend/internal/database"
	"github.com/jufeed/feedback-backend/internal/logger"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
	"github.com/jufeed/feedback-backend/internal/service"
)

// defaultQuestions is the starter feedback form, appended in order.
var defaultQuestions = []struct {
	Text     string
	Type     model.QuestionType
	Required bool
}{
	{"How would you rate the clarity of the lectures?", model.QuestionTypeRating, true},
	{"How would you rate the faculty's subject knowledge?", model.QuestionTypeRating, true},
	{"How would you rate the pace of the course?", model.QuestionTypeRating, true},
	{"How would you rate the usefulness of assignments and materials?", model.QuestionTypeRating, true},
	{"How would you rate the faculty's availability outside class?", model.QuestionTypeRating, true},
	{"How would you rate the course overall?", model.QuestionTypeRating, true},
	{"What could be improved about this course?", model.QuestionTypeText, false},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	questionService := service.NewQuestionService(questionRepo, nil, log)

	existing, err := questionService.ListAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list questions")
	}
	if len(existing) > 0 {
		fmt.Printf("Questions already present (%d), nothing to seed\n", len(existing))
		return
	}

	for i, dq := range defaultQuestions {
		q := &model.Question{
			Text:     dq.Text,
			Type:     dq.Type,
			Position: i + 1,
			Required: dq.Required,
			Active:   true,
		}
		if err := questionService.Create(ctx, q); err != nil {
			log.Fatal().Err(err).Str("text", dq.Text).Msg("Failed to seed question")
		}
	}

	fmt.Printf("Seeded %d questions\n", len(defaultQuestions))
}
