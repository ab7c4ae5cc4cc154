package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/score"
	"github.com/biplovsubedi/prediction-league/internal/domain/standing"
	"github.com/biplovsubedi/prediction-league/internal/domain/team"
	"github.com/biplovsubedi/prediction-league/internal/infrastructure/repository/memory"
)

type stubProvider struct {
	snapshot ExternalSnapshot
	err      error
	calls    int
}

func (p *stubProvider) FetchSnapshot(context.Context) (ExternalSnapshot, error) {
	p.calls++
	if p.err != nil {
		return ExternalSnapshot{}, p.err
	}
	return p.snapshot, nil
}

type syncFixture struct {
	svc           *SyncService
	provider      *stubProvider
	teamRepo      *memory.TeamRepository
	gameweekRepo  *memory.GameweekRepository
	standingRepo  *memory.StandingRepository
	scoreRepo     *memory.ScoreRepository
	syncStateRepo *memory.SyncStateRepository
}

func newSyncFixture(provider *stubProvider) *syncFixture {
	f := &syncFixture{
		provider:      provider,
		teamRepo:      memory.NewTeamRepository(nil),
		gameweekRepo:  memory.NewGameweekRepository(nil),
		standingRepo:  memory.NewStandingRepository(),
		scoreRepo:     memory.NewScoreRepository(),
		syncStateRepo: memory.NewSyncStateRepository(),
	}
	scoring := NewScoringService(
		memory.NewPredictionRepository(nil),
		f.standingRepo,
		f.scoreRepo,
		f.gameweekRepo,
		nil,
	)
	f.svc = NewSyncService(
		provider,
		f.teamRepo,
		f.gameweekRepo,
		f.standingRepo,
		f.syncStateRepo,
		scoring,
		SyncConfig{Season: "2025/26", DebounceWindow: 24 * time.Hour},
		nil,
	)
	return f
}

func snapshotWithCurrent() ExternalSnapshot {
	return ExternalSnapshot{
		Teams: []ExternalTeam{
			{ID: 1, Name: "Arsenal", ShortName: "ARS", Code: 3, Position: 1, Points: 12},
			{ID: 2, Name: "Liverpool", ShortName: "LIV", Code: 14, Position: 2, Points: 10},
		},
		Events: []ExternalEvent{
			{ID: 1, Finished: true, DataChecked: true},
			{ID: 2, IsCurrent: true},
		},
	}
}

func TestSyncRunUpsertsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(&stubProvider{snapshot: snapshotWithCurrent()})

	result, err := f.svc.Run(ctx, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != SyncStatusOK || result.Season != "2025/26" {
		t.Fatalf("result = %+v, want ok for the configured season", result)
	}

	teams, err := f.teamRepo.List(ctx)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(teams))
	}

	standings, err := f.standingRepo.ListForGameweek(ctx, "2025/26", 2)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("got %d standings for gameweek 2, want 2", len(standings))
	}
	if standings[0].ActualRank != 1 || standings[0].Points != 12 {
		t.Fatalf("standing = %+v, want rank 1 points 12", standings[0])
	}

	state, err := f.syncStateRepo.Get(ctx)
	if err != nil {
		t.Fatalf("get sync state: %v", err)
	}
	if state.LastRunAt == nil {
		t.Fatal("expected last_run_at to be recorded")
	}
}

func TestSyncRunDebounce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newSyncFixture(&stubProvider{snapshot: snapshotWithCurrent()})

	first, err := f.svc.Run(ctx, "2025/26")
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Status != SyncStatusOK {
		t.Fatalf("first status = %s, want ok", first.Status)
	}

	before, err := f.standingRepo.ListForGameweek(ctx, "2025/26", 2)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}

	second, err := f.svc.Run(ctx, "2025/26")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Status != SyncStatusSkipped {
		t.Fatalf("second status = %s, want skipped_recent_run", second.Status)
	}
	if f.provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1", f.provider.calls)
	}

	after, err := f.standingRepo.ListForGameweek(ctx, "2025/26", 2)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("skipped run mutated standings: %d -> %d rows", len(before), len(after))
	}
}

func TestSyncRunFetchFailureReleasesDebounceSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &stubProvider{err: errors.New("upstream timeout")}
	f := newSyncFixture(provider)

	if _, err := f.svc.Run(ctx, "2025/26"); err == nil {
		t.Fatal("expected fetch failure to surface")
	}

	state, err := f.syncStateRepo.Get(ctx)
	if err != nil {
		t.Fatalf("get sync state: %v", err)
	}
	if state.LastRunAt != nil {
		t.Fatal("failed fetch must leave last_run_at unset so the retry is not debounced")
	}

	provider.err = nil
	provider.snapshot = snapshotWithCurrent()
	result, err := f.svc.Run(ctx, "2025/26")
	if err != nil {
		t.Fatalf("retry Run: %v", err)
	}
	if result.Status != SyncStatusOK {
		t.Fatalf("retry status = %s, want ok", result.Status)
	}
}

type failingTeamRepo struct {
	*memory.TeamRepository
	upsertErr error
}

func (r *failingTeamRepo) UpsertAll(ctx context.Context, teams []team.Team) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	return r.TeamRepository.UpsertAll(ctx, teams)
}

type failingGameweekRepo struct {
	*memory.GameweekRepository
	upsertErr error
}

func (r *failingGameweekRepo) UpsertAll(ctx context.Context, gameweeks []gameweek.Gameweek) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	return r.GameweekRepository.UpsertAll(ctx, gameweeks)
}

type failingStandingRepo struct {
	*memory.StandingRepository
	upsertErr error
}

func (r *failingStandingRepo) UpsertForGameweek(ctx context.Context, season string, gameweekID int, standings []standing.ActualStanding) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	return r.StandingRepository.UpsertForGameweek(ctx, season, gameweekID, standings)
}

type failingScoreRepo struct {
	*memory.ScoreRepository
	upsertErr error
}

func (r *failingScoreRepo) UpsertAll(ctx context.Context, scores []score.Score) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	return r.ScoreRepository.UpsertAll(ctx, scores)
}

type midCycleFixture struct {
	svc           *SyncService
	teamRepo      *failingTeamRepo
	gameweekRepo  *failingGameweekRepo
	standingRepo  *failingStandingRepo
	scoreRepo     *failingScoreRepo
	syncStateRepo *memory.SyncStateRepository
}

// newMidCycleFixture seeds predictions so the scoring step has rows to
// write, letting a score-upsert failure actually fire.
func newMidCycleFixture(provider *stubProvider) *midCycleFixture {
	f := &midCycleFixture{
		teamRepo:      &failingTeamRepo{TeamRepository: memory.NewTeamRepository(nil)},
		gameweekRepo:  &failingGameweekRepo{GameweekRepository: memory.NewGameweekRepository(nil)},
		standingRepo:  &failingStandingRepo{StandingRepository: memory.NewStandingRepository()},
		scoreRepo:     &failingScoreRepo{ScoreRepository: memory.NewScoreRepository()},
		syncStateRepo: memory.NewSyncStateRepository(),
	}
	scoring := NewScoringService(
		memory.NewPredictionRepository([]prediction.Prediction{
			{Season: "2025/26", Username: "alice", TeamID: 1, PredictedRank: 1},
			{Season: "2025/26", Username: "alice", TeamID: 2, PredictedRank: 2},
		}),
		f.standingRepo,
		f.scoreRepo,
		f.gameweekRepo,
		nil,
	)
	f.svc = NewSyncService(
		provider,
		f.teamRepo,
		f.gameweekRepo,
		f.standingRepo,
		f.syncStateRepo,
		scoring,
		SyncConfig{Season: "2025/26", DebounceWindow: 24 * time.Hour},
		nil,
	)
	return f
}

func TestSyncRunMidCycleFailureReleasesDebounceSlot(t *testing.T) {
	t.Parallel()

	stepErr := errors.New("storage offline")
	cases := []struct {
		name             string
		inject           func(f *midCycleFixture)
		clear            func(f *midCycleFixture)
		teamsWritten     int
		standingsWritten int
	}{
		{
			name:   "team upsert fails",
			inject: func(f *midCycleFixture) { f.teamRepo.upsertErr = stepErr },
			clear:  func(f *midCycleFixture) { f.teamRepo.upsertErr = nil },
		},
		{
			name:         "gameweek upsert fails",
			inject:       func(f *midCycleFixture) { f.gameweekRepo.upsertErr = stepErr },
			clear:        func(f *midCycleFixture) { f.gameweekRepo.upsertErr = nil },
			teamsWritten: 2,
		},
		{
			name:         "standings rewrite fails",
			inject:       func(f *midCycleFixture) { f.standingRepo.upsertErr = stepErr },
			clear:        func(f *midCycleFixture) { f.standingRepo.upsertErr = nil },
			teamsWritten: 2,
		},
		{
			name:             "score upsert fails",
			inject:           func(f *midCycleFixture) { f.scoreRepo.upsertErr = stepErr },
			clear:            func(f *midCycleFixture) { f.scoreRepo.upsertErr = nil },
			teamsWritten:     2,
			standingsWritten: 2,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			f := newMidCycleFixture(&stubProvider{snapshot: snapshotWithCurrent()})
			tc.inject(f)

			if _, err := f.svc.Run(ctx, "2025/26"); !errors.Is(err, stepErr) {
				t.Fatalf("Run error = %v, want the injected step failure", err)
			}

			// Earlier steps stay applied, the cycle is not transactional.
			teams, err := f.teamRepo.List(ctx)
			if err != nil {
				t.Fatalf("list teams: %v", err)
			}
			if len(teams) != tc.teamsWritten {
				t.Fatalf("got %d teams after failure, want %d", len(teams), tc.teamsWritten)
			}
			standings, err := f.standingRepo.ListForGameweek(ctx, "2025/26", 2)
			if err != nil {
				t.Fatalf("list standings: %v", err)
			}
			if len(standings) != tc.standingsWritten {
				t.Fatalf("got %d standings after failure, want %d", len(standings), tc.standingsWritten)
			}

			state, err := f.syncStateRepo.Get(ctx)
			if err != nil {
				t.Fatalf("get sync state: %v", err)
			}
			if state.LastRunAt != nil {
				t.Fatal("failed run must hand the debounce slot back")
			}

			// The immediate retry converges to the full snapshot.
			tc.clear(f)
			result, err := f.svc.Run(ctx, "2025/26")
			if err != nil {
				t.Fatalf("retry Run: %v", err)
			}
			if result.Status != SyncStatusOK {
				t.Fatalf("retry status = %s, want ok", result.Status)
			}
			scores, err := f.scoreRepo.ListForGameweek(ctx, "2025/26", 2)
			if err != nil {
				t.Fatalf("list scores: %v", err)
			}
			if len(scores) != 1 || scores[0].Username != "alice" {
				t.Fatalf("scores after retry = %+v, want one row for alice", scores)
			}
		})
	}
}

func TestSyncRunFallbackGameweek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snapshot := snapshotWithCurrent()
	snapshot.Events = []ExternalEvent{
		{ID: 1, Finished: true, DataChecked: true},
		{ID: 2, Finished: true, DataChecked: true},
	}
	f := newSyncFixture(&stubProvider{snapshot: snapshot})

	if _, err := f.svc.Run(ctx, "2025/26"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Nothing is flagged current, so the highest known round wins.
	standings, err := f.standingRepo.ListForGameweek(ctx, "2025/26", 2)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(standings) == 0 {
		t.Fatal("expected standings written to fallback gameweek 2")
	}
}

func TestSyncRunFallbackWithoutAnyGameweek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snapshot := snapshotWithCurrent()
	snapshot.Events = nil
	f := newSyncFixture(&stubProvider{snapshot: snapshot})

	if _, err := f.svc.Run(ctx, "2025/26"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	standings, err := f.standingRepo.ListForGameweek(ctx, "2025/26", 1)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(standings) == 0 {
		t.Fatal("expected standings written to default gameweek 1")
	}
}
