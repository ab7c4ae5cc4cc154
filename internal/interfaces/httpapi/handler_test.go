package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/player"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/team"
	"github.com/biplovsubedi/prediction-league/internal/infrastructure/repository/memory"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
	"github.com/biplovsubedi/prediction-league/internal/usecase"
)

const testJobToken = "test-job-token"

type fixedProvider struct {
	snapshot usecase.ExternalSnapshot
}

func (p *fixedProvider) FetchSnapshot(_ context.Context) (usecase.ExternalSnapshot, error) {
	return p.snapshot, nil
}

func testSnapshot() usecase.ExternalSnapshot {
	return usecase.ExternalSnapshot{
		Teams: []usecase.ExternalTeam{
			{ID: 1, Name: "Arsenal", ShortName: "ARS", Code: 3, Position: 2, Points: 20, Win: 6, Draw: 2, Loss: 1},
			{ID: 11, Name: "Liverpool", ShortName: "LIV", Code: 14, Position: 1, Points: 22, Win: 7, Draw: 1, Loss: 1},
			{ID: 43, Name: "Man City", ShortName: "MCI", Code: 43, Position: 3, Points: 18, Win: 5, Draw: 3, Loss: 1},
		},
		Events: []usecase.ExternalEvent{
			{ID: 1, IsCurrent: true},
			{ID: 2},
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	teams := []team.Team{
		{ID: 1, Name: "Arsenal", ShortName: "ARS", Code: 3},
		{ID: 11, Name: "Liverpool", ShortName: "LIV", Code: 14},
		{ID: 43, Name: "Man City", ShortName: "MCI", Code: 43},
	}
	players := []player.Player{
		{Username: "alice", TeamName: "Gunners Forever", Type: player.TypeNormal},
		{Username: "bob", TeamName: "Kop Corner", Type: player.TypeNormal},
	}
	predictions := []prediction.Prediction{
		{Season: memory.SeedSeason, Username: "alice", TeamID: 1, PredictedRank: 2},
		{Season: memory.SeedSeason, Username: "alice", TeamID: 11, PredictedRank: 1},
		{Season: memory.SeedSeason, Username: "alice", TeamID: 43, PredictedRank: 3},
		{Season: memory.SeedSeason, Username: "bob", TeamID: 1, PredictedRank: 1},
		{Season: memory.SeedSeason, Username: "bob", TeamID: 11, PredictedRank: 3},
		{Season: memory.SeedSeason, Username: "bob", TeamID: 43, PredictedRank: 2},
	}

	teamRepo := memory.NewTeamRepository(teams)
	gameweekRepo := memory.NewGameweekRepository([]gameweek.Gameweek{})
	playerRepo := memory.NewPlayerRepository(players)
	predictionRepo := memory.NewPredictionRepository(predictions)
	standingRepo := memory.NewStandingRepository()
	scoreRepo := memory.NewScoreRepository()
	syncStateRepo := memory.NewSyncStateRepository()

	logger := logging.NewNop()
	scoring := usecase.NewScoringService(predictionRepo, standingRepo, scoreRepo, gameweekRepo, logger)
	provider := &fixedProvider{snapshot: testSnapshot()}
	syncService := usecase.NewSyncService(
		provider, teamRepo, gameweekRepo, standingRepo, syncStateRepo, scoring,
		usecase.SyncConfig{Season: memory.SeedSeason, DebounceWindow: time.Hour},
		logger,
	)
	leaderboardService := usecase.NewLeaderboardService(scoreRepo, gameweekRepo, playerRepo, nil, logger)
	playerService := usecase.NewPlayerService(playerRepo, scoreRepo, predictionRepo, teamRepo, logger)
	importService := usecase.NewPredictionImportService(playerRepo, predictionRepo, teamRepo, logger)
	recomputeService := usecase.NewRecomputeService(gameweekRepo, scoring, logger)

	handler := NewHandler(
		leaderboardService, playerService, syncService, recomputeService,
		importService, provider, nil, nil, memory.SeedSeason, logger,
	)

	return NewRouter(handler, nil, nil, testJobToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func runSync(t *testing.T, router http.Handler) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("sync job: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestSyncJobThenLeaderboard(t *testing.T) {
	router := newTestRouter(t)
	runSync(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if got := data["gameweek_id"]; got != float64(1) {
		t.Fatalf("expected display gameweek 1, got %v", got)
	}
	entries, ok := data["entries"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 leaderboard entries, got %v", data["entries"])
	}

	// Actual order is LIV, ARS, MCI. Alice predicted exactly that.
	top := entries[0].(map[string]any)
	if got := top["username"]; got != "alice" {
		t.Fatalf("expected alice on top, got %v", got)
	}
	if got := top["score_correct"]; got != float64(3) {
		t.Fatalf("expected alice score_correct=3, got %v", got)
	}
}

func TestLeaderboardRejectsUnknownPlayerType(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard?player_type=celebrity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGameweekScoresRoute(t *testing.T) {
	router := newTestRouter(t)
	runSync(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/gameweeks/1/scores", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	rows, ok := body["data"].([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("expected 2 score rows, got %v", body["data"])
	}
}

func TestGameweekScoresRoute_InvalidID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/gameweeks/zero/scores", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestPlayerProfileRoute(t *testing.T) {
	router := newTestRouter(t)
	runSync(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/players/alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	if got := data["username"]; got != "alice" {
		t.Fatalf("expected username alice, got %v", got)
	}
	predictions, ok := data["predictions"].([]any)
	if !ok || len(predictions) != 3 {
		t.Fatalf("expected 3 predictions, got %v", data["predictions"])
	}
}

func TestPlayerProfileRoute_UnknownPlayer(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/players/nobody", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestLeagueTableRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/table", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	rows, ok := body["data"].([]any)
	if !ok || len(rows) != 3 {
		t.Fatalf("expected 3 table rows, got %v", body["data"])
	}
	first := rows[0].(map[string]any)
	if got := first["short_name"]; got != "LIV" {
		t.Fatalf("expected LIV first, got %v", got)
	}
}

func TestRecomputeJobRoute_RejectsInvalidPayload(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/recompute", strings.NewReader(`{"gameweeks":[0]}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJobRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
