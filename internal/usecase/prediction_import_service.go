package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biplovsubedi/prediction-league/internal/domain/player"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/team"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
)

// predictionColumns is the expected CSV row width:
// username, team_name, twenty ranks ordered by ascending team id,
// player_type.
const predictionColumns = 23

const leagueTeamCount = 20

type ImportSummary struct {
	Players     int
	Predictions int
	Skipped     int
}

// PredictionImportService ingests the bulk prediction CSV. Rows that
// are empty or start with '#' are skipped; any malformed row aborts
// the import with a row-numbered error.
type PredictionImportService struct {
	playerRepo     player.Repository
	predictionRepo prediction.Repository
	teamRepo       team.Repository
	logger         *logging.Logger
}

func NewPredictionImportService(
	playerRepo player.Repository,
	predictionRepo prediction.Repository,
	teamRepo team.Repository,
	logger *logging.Logger,
) *PredictionImportService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionImportService{
		playerRepo:     playerRepo,
		predictionRepo: predictionRepo,
		teamRepo:       teamRepo,
		logger:         logger,
	}
}

func (s *PredictionImportService) Import(ctx context.Context, season string, r io.Reader) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionImportService.Import")
	defer span.End()

	if season == "" {
		return ImportSummary{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) < leagueTeamCount {
		return ImportSummary{}, fmt.Errorf("%w: need %d teams before importing predictions, have %d",
			ErrDependencyUnavailable, leagueTeamCount, len(teams))
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	teams = teams[:leagueTeamCount]

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	summary := ImportSummary{}
	rowNumber := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("%w: read csv row %d: %v", ErrInvalidInput, rowNumber+1, err)
		}
		rowNumber++

		if len(row) == 0 || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			summary.Skipped++
			continue
		}
		if len(row) < predictionColumns {
			return summary, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInput, rowNumber, len(row), predictionColumns)
		}

		username := strings.TrimSpace(row[0])
		teamName := strings.TrimSpace(row[1])
		playerType := player.Type(strings.TrimSpace(row[22]))
		if playerType == "" {
			playerType = player.TypeNormal
		}

		predictions := make([]prediction.Prediction, 0, leagueTeamCount)
		for idx, t := range teams {
			rank, err := strconv.Atoi(strings.TrimSpace(row[2+idx]))
			if err != nil {
				return summary, fmt.Errorf("%w: row %d rank column %d: %v", ErrInvalidInput, rowNumber, 2+idx, err)
			}
			predictions = append(predictions, prediction.Prediction{
				Season:        season,
				Username:      username,
				TeamID:        t.ID,
				PredictedRank: rank,
			})
		}
		if err := prediction.ValidateSet(predictions); err != nil {
			return summary, fmt.Errorf("%w: row %d: %v", ErrInvalidInput, rowNumber, err)
		}

		p := player.Player{Username: username, TeamName: teamName, Type: playerType}
		if err := p.Validate(); err != nil {
			return summary, fmt.Errorf("%w: row %d: %v", ErrInvalidInput, rowNumber, err)
		}
		if err := s.playerRepo.Upsert(ctx, p); err != nil {
			return summary, fmt.Errorf("upsert player %s: %w", username, err)
		}
		if err := s.predictionRepo.ReplaceForPlayer(ctx, season, username, predictions); err != nil {
			return summary, fmt.Errorf("replace predictions player=%s: %w", username, err)
		}

		summary.Players++
		summary.Predictions += len(predictions)
	}

	s.logger.InfoContext(ctx, "prediction import finished",
		"season", season,
		"players", summary.Players,
		"predictions", summary.Predictions,
		"skipped", summary.Skipped,
	)

	return summary, nil
}
