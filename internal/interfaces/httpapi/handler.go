package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/score"
	"github.com/biplovsubedi/prediction-league/internal/platform/cache"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
	"github.com/biplovsubedi/prediction-league/internal/scheduler"
	"github.com/biplovsubedi/prediction-league/internal/usecase"
)

type Handler struct {
	leaderboardService *usecase.LeaderboardService
	playerService      *usecase.PlayerService
	syncService        *usecase.SyncService
	recomputeService   *usecase.RecomputeService
	importService      *usecase.PredictionImportService
	standingsProvider  usecase.StandingsProvider
	syncScheduler      *scheduler.Scheduler
	tableCache         *cache.Store
	defaultSeason      string
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	leaderboardService *usecase.LeaderboardService,
	playerService *usecase.PlayerService,
	syncService *usecase.SyncService,
	recomputeService *usecase.RecomputeService,
	importService *usecase.PredictionImportService,
	standingsProvider usecase.StandingsProvider,
	syncScheduler *scheduler.Scheduler,
	tableCache *cache.Store,
	defaultSeason string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leaderboardService: leaderboardService,
		playerService:      playerService,
		syncService:        syncService,
		recomputeService:   recomputeService,
		importService:      importService,
		standingsProvider:  standingsProvider,
		syncScheduler:      syncScheduler,
		tableCache:         tableCache,
		defaultSeason:      defaultSeason,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type leaderboardEntryDTO struct {
	Username       string `json:"username"`
	TeamName       string `json:"team_name"`
	PlayerType     string `json:"player_type"`
	ScoreCorrect   int    `json:"score_correct"`
	ScoreDeviation int    `json:"score_deviation"`
	Rank           int    `json:"rank"`
	PreviousRank   int    `json:"previous_rank"`
	Movement       int    `json:"movement"`
	DeviationRank  int    `json:"deviation_rank"`
}

type leaderboardDTO struct {
	Season     string                `json:"season"`
	GameweekID int                   `json:"gameweek_id"`
	Completed  bool                  `json:"completed"`
	Entries    []leaderboardEntryDTO `json:"entries"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	season := h.seasonParam(r)
	playerType := playerTypeParam(r)
	view, err := h.leaderboardService.Leaderboard(ctx, season, playerType)
	if err != nil {
		h.logger.ErrorContext(ctx, "get leaderboard failed", "season", season, "player_type", playerType, "error", err)
		writeError(ctx, w, err)
		return
	}

	entries := make([]leaderboardEntryDTO, 0, len(view.Entries))
	for _, entry := range view.Entries {
		entries = append(entries, leaderboardEntryDTO{
			Username:       entry.Username,
			TeamName:       entry.TeamName,
			PlayerType:     entry.PlayerType,
			ScoreCorrect:   entry.ScoreCorrect,
			ScoreDeviation: entry.ScoreDeviation,
			Rank:           entry.Rank,
			PreviousRank:   entry.PreviousRank,
			Movement:       entry.Movement,
			DeviationRank:  entry.DeviationRank,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardDTO{
		Season:     view.Season,
		GameweekID: view.GameweekID,
		Completed:  view.Completed,
		Entries:    entries,
	})
}

type gameweekDTO struct {
	ID          int  `json:"id"`
	IsCurrent   bool `json:"is_current"`
	Finished    bool `json:"finished"`
	DataChecked bool `json:"data_checked"`
	Settled     bool `json:"settled"`
}

func (h *Handler) ListGameweeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameweeks")
	defer span.End()

	gameweeks, err := h.leaderboardService.Gameweeks(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list gameweeks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toGameweekDTOs(gameweeks))
}

type scoreDTO struct {
	Season         string `json:"season"`
	GameweekID     int    `json:"gameweek_id"`
	Username       string `json:"username"`
	ScoreCorrect   int    `json:"score_correct"`
	ScoreDeviation int    `json:"score_deviation"`
	RankCorrect    int    `json:"rank_correct"`
	RankDeviation  int    `json:"rank_deviation"`
	Completed      bool   `json:"completed"`
}

func (h *Handler) ListGameweekScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameweekScores")
	defer span.End()

	gameweekID, err := pathInt(r, "gameweekID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	season := h.seasonParam(r)
	playerType := playerTypeParam(r)
	scores, err := h.leaderboardService.ScoresForGameweek(ctx, season, gameweekID, playerType)
	if err != nil {
		h.logger.ErrorContext(ctx, "list gameweek scores failed", "season", season, "gameweek_id", gameweekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toScoreDTOs(scores))
}

type playerPredictionDTO struct {
	TeamID        int    `json:"team_id"`
	TeamName      string `json:"team_name"`
	TeamShortName string `json:"team_short_name"`
	PredictedRank int    `json:"predicted_rank"`
}

type playerProfileDTO struct {
	Username    string                `json:"username"`
	TeamName    string                `json:"team_name"`
	PlayerType  string                `json:"player_type"`
	History     []scoreDTO            `json:"history"`
	Predictions []playerPredictionDTO `json:"predictions"`
}

func (h *Handler) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerProfile")
	defer span.End()

	username := strings.TrimSpace(r.PathValue("username"))
	season := h.seasonParam(r)

	profile, err := h.playerService.Profile(ctx, season, username)
	if err != nil {
		h.logger.WarnContext(ctx, "get player profile failed", "season", season, "username", username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerProfileDTO{
		Username:    profile.Player.Username,
		TeamName:    profile.Player.TeamName,
		PlayerType:  string(profile.Player.Type),
		History:     toScoreDTOs(profile.History),
		Predictions: toPlayerPredictionDTOs(profile.Predictions),
	})
}

func (h *Handler) GetPlayerHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerHistory")
	defer span.End()

	username := strings.TrimSpace(r.PathValue("username"))
	season := h.seasonParam(r)

	history, err := h.playerService.History(ctx, season, username)
	if err != nil {
		h.logger.WarnContext(ctx, "get player history failed", "season", season, "username", username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toScoreDTOs(history))
}

func (h *Handler) GetPlayerPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerPredictions")
	defer span.End()

	username := strings.TrimSpace(r.PathValue("username"))
	season := h.seasonParam(r)

	predictions, err := h.playerService.Predictions(ctx, season, username)
	if err != nil {
		h.logger.WarnContext(ctx, "get player predictions failed", "season", season, "username", username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPlayerPredictionDTOs(predictions))
}

type tableRowDTO struct {
	Position  int    `json:"position"`
	TeamID    int    `json:"team_id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Points    int    `json:"points"`
	Win       int    `json:"win"`
	Draw      int    `json:"draw"`
	Loss      int    `json:"loss"`
}

// GetLeagueTable proxies the upstream live table. The response is
// cached so a burst of readers costs one upstream call.
func (h *Handler) GetLeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueTable")
	defer span.End()

	rows, err := h.loadLeagueTable(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get league table failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) loadLeagueTable(ctx context.Context) ([]tableRowDTO, error) {
	load := func(ctx context.Context) (any, error) {
		snapshot, err := h.standingsProvider.FetchSnapshot(ctx)
		if err != nil {
			return nil, err
		}

		rows := make([]tableRowDTO, 0, len(snapshot.Teams))
		for _, team := range snapshot.Teams {
			rows = append(rows, tableRowDTO{
				Position:  team.Position,
				TeamID:    team.ID,
				Name:      team.Name,
				ShortName: team.ShortName,
				Points:    team.Points,
				Win:       team.Win,
				Draw:      team.Draw,
				Loss:      team.Loss,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
		return rows, nil
	}

	if h.tableCache == nil {
		rows, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return rows.([]tableRowDTO), nil
	}

	cached, err := h.tableCache.GetOrLoad(ctx, "league-table", load)
	if err != nil {
		return nil, err
	}
	return cached.([]tableRowDTO), nil
}

func (h *Handler) seasonParam(r *http.Request) string {
	season := strings.TrimSpace(r.URL.Query().Get("season"))
	if season == "" {
		return h.defaultSeason
	}
	return season
}

func playerTypeParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("player_type"))
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func toGameweekDTOs(gameweeks []gameweek.Gameweek) []gameweekDTO {
	out := make([]gameweekDTO, 0, len(gameweeks))
	for _, gw := range gameweeks {
		out = append(out, gameweekDTO{
			ID:          gw.ID,
			IsCurrent:   gw.IsCurrent,
			Finished:    gw.Finished,
			DataChecked: gw.DataChecked,
			Settled:     gw.Settled(),
		})
	}
	return out
}

func toScoreDTOs(scores []score.Score) []scoreDTO {
	out := make([]scoreDTO, 0, len(scores))
	for _, row := range scores {
		out = append(out, scoreDTO{
			Season:         row.Season,
			GameweekID:     row.GameweekID,
			Username:       row.Username,
			ScoreCorrect:   row.ScoreCorrect,
			ScoreDeviation: row.ScoreDeviation,
			RankCorrect:    row.RankCorrect,
			RankDeviation:  row.RankDeviation,
			Completed:      row.Completed,
		})
	}
	return out
}

func toPlayerPredictionDTOs(predictions []usecase.PlayerPrediction) []playerPredictionDTO {
	out := make([]playerPredictionDTO, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, playerPredictionDTO{
			TeamID:        p.TeamID,
			TeamName:      p.TeamName,
			TeamShortName: p.TeamShortName,
			PredictedRank: p.PredictedRank,
		})
	}
	return out
}
