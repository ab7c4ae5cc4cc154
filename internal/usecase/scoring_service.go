package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/score"
	"github.com/biplovsubedi/prediction-league/internal/domain/standing"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
)

// ScoringService turns one gameweek's actual standings plus the
// season's predictions into per-player score rows.
type ScoringService struct {
	predictionRepo prediction.Repository
	standingRepo   standing.Repository
	scoreRepo      score.Repository
	gameweekRepo   gameweek.Repository
	logger         *logging.Logger
}

func NewScoringService(
	predictionRepo prediction.Repository,
	standingRepo standing.Repository,
	scoreRepo score.Repository,
	gameweekRepo gameweek.Repository,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoringService{
		predictionRepo: predictionRepo,
		standingRepo:   standingRepo,
		scoreRepo:      scoreRepo,
		gameweekRepo:   gameweekRepo,
		logger:         logger,
	}
}

// Compute upserts score rows for (season, gameweekID) and returns the
// rows it wrote. A prediction whose team has no standing this gameweek
// contributes nothing, and a player with zero matched predictions gets
// no row at all. Re-running with unchanged inputs writes identical
// rows.
func (s *ScoringService) Compute(ctx context.Context, season string, gameweekID int) ([]score.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Compute")
	defer span.End()

	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if gameweekID <= 0 {
		return nil, fmt.Errorf("%w: gameweek id must be positive", ErrInvalidInput)
	}

	completed := false
	if gw, ok, err := s.gameweekRepo.GetByID(ctx, gameweekID); err != nil {
		return nil, fmt.Errorf("load gameweek %d: %w", gameweekID, err)
	} else if ok {
		completed = gw.Settled()
	}

	predictions, err := s.predictionRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list predictions season=%s: %w", season, err)
	}
	standings, err := s.standingRepo.ListForGameweek(ctx, season, gameweekID)
	if err != nil {
		return nil, fmt.Errorf("list standings season=%s gameweek=%d: %w", season, gameweekID, err)
	}

	actualRankByTeam := make(map[int]int, len(standings))
	for _, row := range standings {
		actualRankByTeam[row.TeamID] = row.ActualRank
	}

	buckets := make(map[string]*score.Score)
	for _, p := range predictions {
		actualRank, ok := actualRankByTeam[p.TeamID]
		if !ok {
			continue
		}

		bucket, ok := buckets[p.Username]
		if !ok {
			bucket = &score.Score{
				Season:     season,
				GameweekID: gameweekID,
				Username:   p.Username,
				Completed:  completed,
			}
			buckets[p.Username] = bucket
		}

		deviation := p.PredictedRank - actualRank
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation == 0 {
			bucket.ScoreCorrect++
			bucket.RankCorrect++
		}
		bucket.ScoreDeviation += deviation
		bucket.RankDeviation += deviation
	}

	scores := make([]score.Score, 0, len(buckets))
	for _, bucket := range buckets {
		scores = append(scores, *bucket)
	}
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].Username < scores[j].Username
	})

	if len(scores) > 0 {
		if err := s.scoreRepo.UpsertAll(ctx, scores); err != nil {
			return nil, fmt.Errorf("upsert scores season=%s gameweek=%d: %w", season, gameweekID, err)
		}
	}

	s.logger.DebugContext(ctx, "scores computed",
		"season", season,
		"gameweek", gameweekID,
		"players", len(scores),
		"completed", completed,
	)

	return scores, nil
}
