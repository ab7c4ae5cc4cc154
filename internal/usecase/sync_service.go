package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/standing"
	"github.com/biplovsubedi/prediction-league/internal/domain/syncstate"
	"github.com/biplovsubedi/prediction-league/internal/domain/team"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
)

// StandingsProvider fetches one read-only snapshot of the upstream
// league state: clubs, scoring rounds, and per-club table positions.
type StandingsProvider interface {
	FetchSnapshot(ctx context.Context) (ExternalSnapshot, error)
}

type ExternalSnapshot struct {
	Teams  []ExternalTeam
	Events []ExternalEvent
}

type ExternalTeam struct {
	ID        int
	Name      string
	ShortName string
	Code      int
	Position  int
	Points    int
	Win       int
	Loss      int
	Draw      int
}

type ExternalEvent struct {
	ID          int
	IsCurrent   bool
	Finished    bool
	DataChecked bool
}

const (
	SyncStatusOK      = "ok"
	SyncStatusSkipped = "skipped_recent_run"
)

type SyncResult struct {
	Status string
	Season string
}

type SyncConfig struct {
	Season         string
	DebounceWindow time.Duration
}

// SyncService orchestrates one refresh cycle: debounce check,
// snapshot fetch, reference-data upserts, standings rewrite for the
// active gameweek, and score recomputation. Steps after the fetch are
// individually idempotent but not wrapped in one transaction; a late
// failure leaves earlier upserts applied.
type SyncService struct {
	provider      StandingsProvider
	teamRepo      team.Repository
	gameweekRepo  gameweek.Repository
	standingRepo  standing.Repository
	syncStateRepo syncstate.Repository
	scoring       *ScoringService
	cfg           SyncConfig
	logger        *logging.Logger
	now           func() time.Time
}

func NewSyncService(
	provider StandingsProvider,
	teamRepo team.Repository,
	gameweekRepo gameweek.Repository,
	standingRepo standing.Repository,
	syncStateRepo syncstate.Repository,
	scoring *ScoringService,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = 24 * time.Hour
	}

	return &SyncService{
		provider:      provider,
		teamRepo:      teamRepo,
		gameweekRepo:  gameweekRepo,
		standingRepo:  standingRepo,
		syncStateRepo: syncStateRepo,
		scoring:       scoring,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// Run executes one sync cycle for season. An empty season falls back
// to the configured current season. The debounce slot is taken
// atomically up front, so concurrent callers inside one window see at
// most one SyncStatusOK; any failure after that hands the slot back so
// the next attempt is not wrongly debounced.
func (s *SyncService) Run(ctx context.Context, season string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Run")
	defer span.End()

	if season == "" {
		season = s.cfg.Season
	}
	if season == "" {
		return SyncResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if s.provider == nil {
		return SyncResult{}, fmt.Errorf("%w: standings provider is not configured", ErrDependencyUnavailable)
	}

	startedAt := s.now()
	acquired, previous, err := s.syncStateRepo.AcquireRun(ctx, startedAt, s.cfg.DebounceWindow)
	if err != nil {
		return SyncResult{}, fmt.Errorf("acquire sync slot: %w", err)
	}
	if !acquired {
		s.logger.InfoContext(ctx, "sync skipped, last run is inside the debounce window",
			"season", season,
			"debounce_window", s.cfg.DebounceWindow.String(),
		)
		return SyncResult{Status: SyncStatusSkipped, Season: season}, nil
	}

	// The slot only stays claimed once the whole cycle lands. Earlier
	// upserts may persist, but a failed run must not burn the window.
	completed := false
	defer func() {
		if completed {
			return
		}
		if restoreErr := s.syncStateRepo.Restore(ctx, previous); restoreErr != nil {
			s.logger.ErrorContext(ctx, "restore sync slot after failed run", "error", restoreErr)
		}
	}()

	snapshot, err := s.provider.FetchSnapshot(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch standings snapshot: %w", err)
	}

	if err := s.upsertTeams(ctx, snapshot.Teams); err != nil {
		return SyncResult{}, err
	}
	current, err := s.upsertGameweeks(ctx, snapshot.Events)
	if err != nil {
		return SyncResult{}, err
	}

	activeGameweek, err := s.resolveActiveGameweek(ctx, current)
	if err != nil {
		return SyncResult{}, err
	}

	if err := s.rewriteStandings(ctx, season, activeGameweek, snapshot.Teams); err != nil {
		return SyncResult{}, err
	}

	if _, err := s.scoring.Compute(ctx, season, activeGameweek); err != nil {
		return SyncResult{}, err
	}

	if err := s.syncStateRepo.Touch(ctx, s.now()); err != nil {
		return SyncResult{}, fmt.Errorf("record sync completion: %w", err)
	}
	completed = true

	s.logger.InfoContext(ctx, "sync completed",
		"season", season,
		"gameweek", activeGameweek,
		"teams", len(snapshot.Teams),
		"events", len(snapshot.Events),
	)

	return SyncResult{Status: SyncStatusOK, Season: season}, nil
}

func (s *SyncService) upsertTeams(ctx context.Context, external []ExternalTeam) error {
	if len(external) == 0 {
		return nil
	}

	teams := make([]team.Team, 0, len(external))
	for _, t := range external {
		teams = append(teams, team.Team{
			ID:        t.ID,
			Name:      t.Name,
			ShortName: t.ShortName,
			Code:      t.Code,
		})
	}
	if err := s.teamRepo.UpsertAll(ctx, teams); err != nil {
		return fmt.Errorf("upsert teams: %w", err)
	}

	return nil
}

// upsertGameweeks stores every event and returns the id flagged
// current, or 0 when the feed flags none.
func (s *SyncService) upsertGameweeks(ctx context.Context, events []ExternalEvent) (int, error) {
	current := 0
	if len(events) == 0 {
		return current, nil
	}

	gameweeks := make([]gameweek.Gameweek, 0, len(events))
	for _, e := range events {
		gameweeks = append(gameweeks, gameweek.Gameweek{
			ID:          e.ID,
			IsCurrent:   e.IsCurrent,
			Finished:    e.Finished,
			DataChecked: e.DataChecked,
		})
		if e.IsCurrent {
			current = e.ID
		}
	}
	if err := s.gameweekRepo.UpsertAll(ctx, gameweeks); err != nil {
		return 0, fmt.Errorf("upsert gameweeks: %w", err)
	}

	return current, nil
}

// resolveActiveGameweek prefers the round the feed flags current. The
// feed sometimes flags nothing, so fall back to the highest known id,
// then to 1. The fallback is best effort, never an error.
func (s *SyncService) resolveActiveGameweek(ctx context.Context, current int) (int, error) {
	if current > 0 {
		return current, nil
	}

	known, err := s.gameweekRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list gameweeks: %w", err)
	}

	highest := 0
	for _, gw := range known {
		if gw.ID > highest {
			highest = gw.ID
		}
	}
	if highest == 0 {
		highest = 1
	}

	s.logger.WarnContext(ctx, "no gameweek flagged current, using fallback", "gameweek", highest)
	return highest, nil
}

func (s *SyncService) rewriteStandings(ctx context.Context, season string, gameweekID int, external []ExternalTeam) error {
	standings := make([]standing.ActualStanding, 0, len(external))
	for _, t := range external {
		standings = append(standings, standing.ActualStanding{
			Season:     season,
			GameweekID: gameweekID,
			TeamID:     t.ID,
			ActualRank: t.Position,
			Points:     t.Points,
		})
	}
	if err := s.standingRepo.UpsertForGameweek(ctx, season, gameweekID, standings); err != nil {
		return fmt.Errorf("rewrite standings season=%s gameweek=%d: %w", season, gameweekID, err)
	}

	return nil
}
