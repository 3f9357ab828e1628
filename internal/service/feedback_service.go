package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/config"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Feedback submission errors.
var (
	ErrFeedbackNotFound         = errors.New("feedback not found")
	ErrFeedbackAlreadySubmitted = errors.New("feedback for this course already submitted")
	ErrMissingRequiredAnswers   = errors.New("a required question was not answered")
	ErrUnknownQuestionAnswer    = errors.New("an answer references an unknown or inactive question")
	ErrInvalidRatingAnswer      = errors.New("a rating answer is not a number between 1 and 5")
	ErrFacultyCourseMismatch    = errors.New("faculty is not assigned to this course")
)

// FeedbackService handles student submissions and the admin review surface.
type FeedbackService struct {
	repo       *repository.FeedbackRepository
	courseRepo *repository.CourseRepository
	questions  *QuestionService
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(
	repo *repository.FeedbackRepository,
	courseRepo *repository.CourseRepository,
	questions *QuestionService,
	rdb *redis.Client,
	log zerolog.Logger,
) *FeedbackService {
	return &FeedbackService{
		repo:       repo,
		courseRepo: courseRepo,
		questions:  questions,
		rdb:        rdb,
		log:        log.With().Str("component", "feedback_service").Logger(),
	}
}

// Submit records one student's evaluation of one course. Answers must cover
// every required active question and reference only active questions; rating
// answers must be integers between 1 and 5. On success a summary refresh is
// enqueued and a live event is published for connected admins.
func (s *FeedbackService) Submit(ctx context.Context, student *model.Student, req *model.SubmitFeedbackRequest) (*model.Feedback, error) {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.FacultyID != req.FacultyID {
		return nil, ErrFacultyCourseMismatch
	}

	exists, err := s.repo.ExistsByStudentAndCourse(ctx, student.ID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrFeedbackAlreadySubmitted
	}

	if err := s.validateAnswers(ctx, req.Answers); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}

	feedback := &model.Feedback{
		StudentID: student.ID,
		CourseID:  req.CourseID,
		FacultyID: req.FacultyID,
		Answers:   raw,
	}
	if req.Comment != "" {
		feedback.Comment = &req.Comment
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		if errors.Is(err, repository.ErrDuplicateFeedback) {
			return nil, ErrFeedbackAlreadySubmitted
		}
		return nil, err
	}

	s.enqueueSummaryRefresh(ctx, req.CourseID)
	s.publishEvent(ctx, feedback, student, course)

	return feedback, nil
}

// validateAnswers checks the answer map against the current active question
// list.
func (s *FeedbackService) validateAnswers(ctx context.Context, answers map[string]string) error {
	questions, err := s.questions.ListActive(ctx)
	if err != nil {
		return err
	}

	active := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		active[strconv.Itoa(q.ID)] = q
	}

	for key, value := range answers {
		q, ok := active[key]
		if !ok {
			return ErrUnknownQuestionAnswer
		}
		if q.Type == model.QuestionTypeRating {
			rating, err := strconv.Atoi(value)
			if err != nil || rating < 1 || rating > 5 {
				return ErrInvalidRatingAnswer
			}
		}
	}

	for key, q := range active {
		if !q.Required {
			continue
		}
		if answer, ok := answers[key]; !ok || answer == "" {
			return ErrMissingRequiredAnswers
		}
	}
	return nil
}

// SubmittedCourseIDs returns the ids of courses the student already evaluated.
func (s *FeedbackService) SubmittedCourseIDs(ctx context.Context, studentID int) ([]int, error) {
	return s.repo.ListCourseIDsByStudent(ctx, studentID)
}

// ListDetails retrieves joined feedback rows for the admin review screen.
func (s *FeedbackService) ListDetails(ctx context.Context, courseID *int, page, perPage int) ([]model.FeedbackDetail, int, error) {
	offset := (page - 1) * perPage
	return s.repo.ListDetailsPaginated(ctx, courseID, perPage, offset)
}

// ListSummaries retrieves the per-course aggregates.
func (s *FeedbackService) ListSummaries(ctx context.Context) ([]model.CourseSummary, error) {
	return s.repo.ListCourseSummaries(ctx)
}

// Delete removes a feedback submission and enqueues a summary refresh so the
// aggregates drop the deleted row.
func (s *FeedbackService) Delete(ctx context.Context, id int) error {
	courseID, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFeedbackNotFound
		}
		return err
	}
	s.enqueueSummaryRefresh(ctx, courseID)
	return nil
}

func (s *FeedbackService) enqueueSummaryRefresh(ctx context.Context, courseID int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.RefreshSummaryQueue, courseID).Err(); err != nil {
		s.log.Warn().Err(err).Int("course_id", courseID).Msg("Failed to enqueue summary refresh")
	}
}

func (s *FeedbackService) publishEvent(ctx context.Context, f *model.Feedback, student *model.Student, course *model.Course) {
	if s.rdb == nil {
		return
	}
	event := model.FeedbackEvent{
		FeedbackID:  f.ID,
		StudentCode: student.Code,
		CourseID:    course.ID,
		CourseName:  course.Name,
		FacultyID:   f.FacultyID,
		SubmittedAt: f.CreatedAt,
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.FeedbackEventChannel(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to publish feedback event")
	}
}
