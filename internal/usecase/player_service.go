package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/biplovsubedi/prediction-league/internal/domain/player"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/score"
	"github.com/biplovsubedi/prediction-league/internal/domain/team"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
)

type PlayerPrediction struct {
	TeamID        int
	TeamName      string
	TeamShortName string
	PredictedRank int
}

type PlayerProfile struct {
	Player      player.Player
	History     []score.Score
	Predictions []PlayerPrediction
}

// PlayerService serves per-player read paths: profile, gameweek score
// history, and the submitted prediction set with team names attached.
type PlayerService struct {
	playerRepo     player.Repository
	scoreRepo      score.Repository
	predictionRepo prediction.Repository
	teamRepo       team.Repository
	logger         *logging.Logger
}

func NewPlayerService(
	playerRepo player.Repository,
	scoreRepo score.Repository,
	predictionRepo prediction.Repository,
	teamRepo team.Repository,
	logger *logging.Logger,
) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		playerRepo:     playerRepo,
		scoreRepo:      scoreRepo,
		predictionRepo: predictionRepo,
		teamRepo:       teamRepo,
		logger:         logger,
	}
}

func (s *PlayerService) Profile(ctx context.Context, season, username string) (PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Profile")
	defer span.End()

	if season == "" || username == "" {
		return PlayerProfile{}, fmt.Errorf("%w: season and username are required", ErrInvalidInput)
	}

	p, ok, err := s.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		return PlayerProfile{}, fmt.Errorf("load player %s: %w", username, err)
	}
	if !ok {
		return PlayerProfile{}, fmt.Errorf("%w: player %s", ErrNotFound, username)
	}

	history, err := s.History(ctx, season, username)
	if err != nil {
		return PlayerProfile{}, err
	}
	predictions, err := s.Predictions(ctx, season, username)
	if err != nil {
		return PlayerProfile{}, err
	}

	return PlayerProfile{
		Player:      p,
		History:     history,
		Predictions: predictions,
	}, nil
}

// History lists the player's score rows for the season, newest
// gameweek first.
func (s *PlayerService) History(ctx context.Context, season, username string) ([]score.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.History")
	defer span.End()

	if season == "" || username == "" {
		return nil, fmt.Errorf("%w: season and username are required", ErrInvalidInput)
	}

	history, err := s.scoreRepo.ListForPlayer(ctx, season, username)
	if err != nil {
		return nil, fmt.Errorf("list scores season=%s player=%s: %w", season, username, err)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].GameweekID > history[j].GameweekID })

	return history, nil
}

// Predictions returns the player's submitted set ordered by predicted
// rank, with team names resolved. Teams unknown to the local store
// keep an empty name rather than failing the read.
func (s *PlayerService) Predictions(ctx context.Context, season, username string) ([]PlayerPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Predictions")
	defer span.End()

	if season == "" || username == "" {
		return nil, fmt.Errorf("%w: season and username are required", ErrInvalidInput)
	}

	predictions, err := s.predictionRepo.ListByPlayer(ctx, season, username)
	if err != nil {
		return nil, fmt.Errorf("list predictions season=%s player=%s: %w", season, username, err)
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teamByID := make(map[int]team.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	out := make([]PlayerPrediction, 0, len(predictions))
	for _, p := range predictions {
		entry := PlayerPrediction{
			TeamID:        p.TeamID,
			PredictedRank: p.PredictedRank,
		}
		if t, ok := teamByID[p.TeamID]; ok {
			entry.TeamName = t.Name
			entry.TeamShortName = t.ShortName
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PredictedRank < out[j].PredictedRank })

	return out, nil
}
