package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/jufeed/feedback-backend/internal/config"
	"github.com/jufeed/feedback-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	SummaryBatchSize    = 50
	SummaryBatchTimeout = 2 * time.Second
	SummaryPollTimeout  = 1 * time.Second
)

// SummaryWorker drains the refresh queue and recomputes per-course feedback
// aggregates in batches. Queue items are course ids; duplicates within a
// batch collapse into one recompute.
type SummaryWorker struct {
	repo *repository.FeedbackRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewSummaryWorker creates a new SummaryWorker.
func NewSummaryWorker(repo *repository.FeedbackRepository, rdb *redis.Client, log zerolog.Logger) *SummaryWorker {
	return &SummaryWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "summary_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled. The remaining batch is
// flushed on shutdown.
func (w *SummaryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SummaryWorker started")

	batch := make([]int, 0, SummaryBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= SummaryBatchSize || time.Since(lastFlush) >= SummaryBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, SummaryPollTimeout, config.WorkerKey.RefreshSummaryQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			courseID, err := strconv.Atoi(item[1])
			if err != nil {
				w.log.Error().Str("item", item[1]).Msg("Invalid course id on queue")
				continue
			}

			batch = append(batch, courseID)
		}
	}
}

// flushSafe recomputes the summaries for the batch, requeueing the course
// ids on failure so no refresh is lost.
func (w *SummaryWorker) flushSafe(ctx context.Context, batch []int) {
	if len(batch) == 0 {
		return
	}

	seen := make(map[int]bool, len(batch))
	courseIDs := make([]int, 0, len(batch))
	for _, id := range batch {
		if !seen[id] {
			seen[id] = true
			courseIDs = append(courseIDs, id)
		}
	}

	if err := w.repo.RefreshCourseSummaries(ctx, courseIDs); err != nil {
		w.log.Error().Err(err).Ints("course_ids", courseIDs).Msg("Summary refresh failed — requeueing")
		for _, id := range courseIDs {
			w.rdb.RPush(ctx, config.WorkerKey.RefreshSummaryQueue, id)
		}
		return
	}

	w.log.Debug().Ints("course_ids", courseIDs).Msg("Summaries refreshed")
}
