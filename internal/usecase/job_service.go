package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

const defaultJobWorkerCount = 4

const (
	jobStatusSuccess = "success"
	jobStatusSkipped = "skipped"
	jobStatusFailed  = "failed"
)

type RecalculateTaskResult struct {
	RoomCode   string
	Gameweek   int
	Status     string
	Scored     int
	Message    string
	DurationMs int64
}

type RecalculateGameweekResult struct {
	Gameweek     int
	SuccessCount int
	SkippedCount int
	FailedCount  int
	Tasks        []RecalculateTaskResult
}

// JobService runs scheduled work that spans rooms.
type JobService struct {
	repo        minigame.Repository
	scoring     *ScoringService
	workerCount int
	logger      *logging.Logger
}

func NewJobService(repo minigame.Repository, scoring *ScoringService, workerCount int, logger *logging.Logger) *JobService {
	if workerCount <= 0 {
		workerCount = defaultJobWorkerCount
	}
	return &JobService{
		repo:        repo,
		scoring:     scoring,
		workerCount: workerCount,
		logger:      logging.OrDefault(logger),
	}
}

// RecalculateGameweek rescores every session of the gameweek. A failing
// session does not stop the others.
func (s *JobService) RecalculateGameweek(ctx context.Context, gameweek int) (RecalculateGameweekResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.RecalculateGameweek")
	defer span.End()

	if !minigame.ValidGameweek(gameweek) {
		return RecalculateGameweekResult{}, fmt.Errorf("%w: gameweek must be between %d and %d", ErrInvalidInput, minigame.MinGameweek, minigame.MaxGameweek)
	}
	keys, err := s.repo.ListSessionKeysByGameweek(ctx, gameweek)
	if err != nil {
		return RecalculateGameweekResult{}, fmt.Errorf("list session keys: %w", err)
	}

	result := RecalculateGameweekResult{Gameweek: gameweek}
	if len(keys) == 0 {
		return result, nil
	}
	s.scoring.refreshResults(ctx, gameweek)

	pool, err := ants.NewPool(min(s.workerCount, len(keys)))
	if err != nil {
		return RecalculateGameweekResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan RecalculateTaskResult, len(keys))
	var successCount, skippedCount, failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, key := range keys {
		key := key
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RecalculateTaskResult{RoomCode: key.RoomCode, Gameweek: key.Gameweek}
			out, err := s.scoring.Recalculate(ctx, key)
			switch {
			case err != nil:
				row.Status = jobStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "recalculate session failed",
					"room_code", key.RoomCode,
					"gameweek", key.Gameweek,
					"error", err,
				)
			case out.ResultsKnown == 0:
				row.Status = jobStatusSkipped
				row.Message = "no results yet"
				skippedCount.Add(1)
			default:
				row.Status = jobStatusSuccess
				row.Scored = out.Scored
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()
			results <- row
		}); err != nil {
			workers.Done()
			return RecalculateGameweekResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].RoomCode < result.Tasks[j].RoomCode
	})
	result.SuccessCount = int(successCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "gameweek recalculation finished",
		"gameweek", gameweek,
		"success", result.SuccessCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}
