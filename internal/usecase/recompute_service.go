package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
)

type RecomputeInput struct {
	Season     string
	MaxWorkers int
	// Gameweeks narrows the run; empty means every known round.
	Gameweeks []int
}

type RecomputeTaskResult struct {
	GameweekID int    `json:"gameweek_id"`
	Players    int    `json:"players"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type RecomputeResult struct {
	Season       string                `json:"season"`
	TaskCount    int                   `json:"task_count"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	WorkerCount  int                   `json:"worker_count"`
	Tasks        []RecomputeTaskResult `json:"tasks"`
}

// RecomputeService re-runs the scoring pipeline across many gameweeks
// at once, fanning the per-round computations over a worker pool.
// Each round computes independently, so a failed round is reported
// and the rest still land.
type RecomputeService struct {
	gameweekRepo gameweek.Repository
	scoring      *ScoringService
	logger       *logging.Logger
}

func NewRecomputeService(gameweekRepo gameweek.Repository, scoring *ScoringService, logger *logging.Logger) *RecomputeService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RecomputeService{
		gameweekRepo: gameweekRepo,
		scoring:      scoring,
		logger:       logger,
	}
}

func (s *RecomputeService) RecomputeSeason(ctx context.Context, input RecomputeInput) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RecomputeSeason")
	defer span.End()

	if input.Season == "" {
		return RecomputeResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	targets, err := s.resolveTargets(ctx, input.Gameweeks)
	if err != nil {
		return RecomputeResult{}, err
	}
	if len(targets) == 0 {
		return RecomputeResult{Season: input.Season}, nil
	}

	workerCount := input.MaxWorkers
	if workerCount < 1 {
		workerCount = 4
	}
	if workerCount > len(targets) {
		workerCount = len(targets)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]RecomputeTaskResult, len(targets))
	var workers sync.WaitGroup
	for i, gameweekID := range targets {
		i, gameweekID := i, gameweekID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RecomputeTaskResult{GameweekID: gameweekID, Status: "success"}
			scores, err := s.scoring.Compute(ctx, input.Season, gameweekID)
			if err != nil {
				row.Status = "failed"
				row.Message = err.Error()
			} else {
				row.Players = len(scores)
			}
			row.DurationMs = time.Since(start).Milliseconds()
			results[i] = row
		}); err != nil {
			workers.Done()
			results[i] = RecomputeTaskResult{
				GameweekID: gameweekID,
				Status:     "failed",
				Message:    fmt.Sprintf("submit to worker pool: %v", err),
			}
		}
	}
	workers.Wait()

	out := RecomputeResult{
		Season:      input.Season,
		TaskCount:   len(results),
		WorkerCount: workerCount,
		Tasks:       results,
	}
	for _, row := range results {
		if row.Status == "success" {
			out.SuccessCount++
		} else {
			out.FailedCount++
		}
	}

	s.logger.InfoContext(ctx, "season recompute finished",
		"season", input.Season,
		"tasks", out.TaskCount,
		"success", out.SuccessCount,
		"failed", out.FailedCount,
	)

	return out, nil
}

func (s *RecomputeService) resolveTargets(ctx context.Context, requested []int) ([]int, error) {
	if len(requested) > 0 {
		targets := make([]int, 0, len(requested))
		seen := make(map[int]struct{}, len(requested))
		for _, id := range requested {
			if id <= 0 {
				return nil, fmt.Errorf("%w: gameweek id must be positive", ErrInvalidInput)
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			targets = append(targets, id)
		}
		sort.Ints(targets)
		return targets, nil
	}

	known, err := s.gameweekRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gameweeks: %w", err)
	}
	targets := make([]int, 0, len(known))
	for _, gw := range known {
		targets = append(targets, gw.ID)
	}
	sort.Ints(targets)

	return targets, nil
}
