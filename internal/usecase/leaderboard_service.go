package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/player"
	"github.com/biplovsubedi/prediction-league/internal/domain/score"
	"github.com/biplovsubedi/prediction-league/internal/platform/cache"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
)

type LeaderboardEntry struct {
	Username       string
	TeamName       string
	PlayerType     string
	ScoreCorrect   int
	ScoreDeviation int
	Rank           int
	PreviousRank   int
	Movement       int
	DeviationRank  int
}

type LeaderboardView struct {
	Season     string
	GameweekID int
	Completed  bool
	Entries    []LeaderboardEntry
}

// LeaderboardService builds the tie-aware leaderboard from persisted
// score rows. Views are cached per season with a short TTL since the
// underlying rows only move when a sync cycle lands.
type LeaderboardService struct {
	scoreRepo    score.Repository
	gameweekRepo gameweek.Repository
	playerRepo   player.Repository
	views        *cache.Store
	logger       *logging.Logger
}

func NewLeaderboardService(
	scoreRepo score.Repository,
	gameweekRepo gameweek.Repository,
	playerRepo player.Repository,
	views *cache.Store,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeaderboardService{
		scoreRepo:    scoreRepo,
		gameweekRepo: gameweekRepo,
		playerRepo:   playerRepo,
		views:        views,
		logger:       logger,
	}
}

// Leaderboard returns the ranked table for the season's display
// gameweek: the newest settled round, or the round flagged current
// when nothing has settled yet. A non-empty playerType narrows the
// entries after ranking, so ranks stay global.
func (s *LeaderboardService) Leaderboard(ctx context.Context, season, playerType string) (LeaderboardView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Leaderboard")
	defer span.End()

	if season == "" {
		return LeaderboardView{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if err := validatePlayerTypeFilter(playerType); err != nil {
		return LeaderboardView{}, err
	}

	load := func(ctx context.Context) (any, error) {
		return s.buildLeaderboard(ctx, season)
	}

	var view LeaderboardView
	if s.views == nil {
		built, err := load(ctx)
		if err != nil {
			return LeaderboardView{}, err
		}
		view = built.(LeaderboardView)
	} else {
		cached, err := s.views.GetOrLoad(ctx, "leaderboard:"+season, load)
		if err != nil {
			return LeaderboardView{}, err
		}
		typed, ok := cached.(LeaderboardView)
		if !ok {
			return LeaderboardView{}, fmt.Errorf("unexpected cached leaderboard type %T", cached)
		}
		view = typed
	}

	if playerType != "" {
		// Copy before narrowing, the unfiltered view may live in cache.
		filtered := make([]LeaderboardEntry, 0, len(view.Entries))
		for _, entry := range view.Entries {
			if entry.PlayerType == playerType {
				filtered = append(filtered, entry)
			}
		}
		view.Entries = filtered
	}

	return view, nil
}

// ScoresForGameweek lists the score rows of one round ordered best
// first, optionally narrowed to one player type.
func (s *LeaderboardService) ScoresForGameweek(ctx context.Context, season string, gameweekID int, playerType string) ([]score.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ScoresForGameweek")
	defer span.End()

	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if gameweekID <= 0 {
		return nil, fmt.Errorf("%w: gameweek id must be positive", ErrInvalidInput)
	}
	if err := validatePlayerTypeFilter(playerType); err != nil {
		return nil, err
	}

	scores, err := s.scoreRepo.ListForGameweek(ctx, season, gameweekID)
	if err != nil {
		return nil, err
	}

	if playerType != "" {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		typeByUsername := make(map[string]string, len(players))
		for _, p := range players {
			typeByUsername[p.Username] = string(p.Type)
		}
		filtered := scores[:0]
		for _, row := range scores {
			if typeByUsername[row.Username] == playerType {
				filtered = append(filtered, row)
			}
		}
		scores = filtered
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].ScoreCorrect != scores[j].ScoreCorrect {
			return scores[i].ScoreCorrect > scores[j].ScoreCorrect
		}
		if scores[i].ScoreDeviation != scores[j].ScoreDeviation {
			return scores[i].ScoreDeviation < scores[j].ScoreDeviation
		}
		return scores[i].Username < scores[j].Username
	})

	return scores, nil
}

func validatePlayerTypeFilter(playerType string) error {
	switch playerType {
	case "", string(player.TypeNormal), string(player.TypePundit):
		return nil
	default:
		return fmt.Errorf("%w: unknown player type %q", ErrInvalidInput, playerType)
	}
}

// Gameweeks lists every known round, newest first.
func (s *LeaderboardService) Gameweeks(ctx context.Context) ([]gameweek.Gameweek, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Gameweeks")
	defer span.End()

	gameweeks, err := s.gameweekRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gameweeks: %w", err)
	}
	sort.Slice(gameweeks, func(i, j int) bool { return gameweeks[i].ID > gameweeks[j].ID })

	return gameweeks, nil
}

func (s *LeaderboardService) buildLeaderboard(ctx context.Context, season string) (LeaderboardView, error) {
	gameweeks, err := s.gameweekRepo.List(ctx)
	if err != nil {
		return LeaderboardView{}, fmt.Errorf("list gameweeks: %w", err)
	}

	display, ok := resolveDisplayGameweek(gameweeks)
	if !ok {
		return LeaderboardView{}, fmt.Errorf("%w: no gameweek available for leaderboard", ErrNotFound)
	}

	scores, err := s.scoreRepo.ListForGameweek(ctx, season, display.ID)
	if err != nil {
		return LeaderboardView{}, fmt.Errorf("list scores season=%s gameweek=%d: %w", season, display.ID, err)
	}

	ranks := CompetitionRanks(rankEntries(scores, scoreKey))
	deviationRanks := CompetitionRanks(rankEntries(scores, deviationKey))

	previousRanks := map[string]int{}
	if previous, ok := resolvePreviousGameweek(gameweeks, display.ID); ok {
		previousScores, err := s.scoreRepo.ListForGameweek(ctx, season, previous.ID)
		if err != nil {
			return LeaderboardView{}, fmt.Errorf("list previous scores season=%s gameweek=%d: %w", season, previous.ID, err)
		}
		previousRanks = CompetitionRanks(rankEntries(previousScores, scoreKey))
	}

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return LeaderboardView{}, fmt.Errorf("list players: %w", err)
	}
	playerByUsername := make(map[string]player.Player, len(players))
	for _, p := range players {
		playerByUsername[p.Username] = p
	}

	entries := make([]LeaderboardEntry, 0, len(scores))
	for _, row := range scores {
		entry := LeaderboardEntry{
			Username:       row.Username,
			ScoreCorrect:   row.ScoreCorrect,
			ScoreDeviation: row.ScoreDeviation,
			Rank:           ranks[row.Username],
			DeviationRank:  deviationRanks[row.Username],
		}
		if p, ok := playerByUsername[row.Username]; ok {
			entry.TeamName = p.TeamName
			entry.PlayerType = string(p.Type)
		}
		if previous, ok := previousRanks[row.Username]; ok {
			entry.PreviousRank = previous
			entry.Movement = previous - entry.Rank
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].Username < entries[j].Username
	})

	return LeaderboardView{
		Season:     season,
		GameweekID: display.ID,
		Completed:  display.Settled(),
		Entries:    entries,
	}, nil
}

// resolveDisplayGameweek picks the newest settled round, falling back
// to the round flagged current while the season is still in flight.
func resolveDisplayGameweek(gameweeks []gameweek.Gameweek) (gameweek.Gameweek, bool) {
	var settled gameweek.Gameweek
	var current gameweek.Gameweek
	for _, gw := range gameweeks {
		if gw.Settled() && gw.ID > settled.ID {
			settled = gw
		}
		if gw.IsCurrent && gw.ID > current.ID {
			current = gw
		}
	}
	if settled.ID > 0 {
		return settled, true
	}
	if current.ID > 0 {
		return current, true
	}

	return gameweek.Gameweek{}, false
}

// resolvePreviousGameweek picks the newest settled round strictly
// below displayID. Data checking can lag a round, so this is not
// always displayID-1.
func resolvePreviousGameweek(gameweeks []gameweek.Gameweek, displayID int) (gameweek.Gameweek, bool) {
	var previous gameweek.Gameweek
	for _, gw := range gameweeks {
		if gw.ID >= displayID || !gw.Settled() {
			continue
		}
		if gw.ID > previous.ID {
			previous = gw
		}
	}

	return previous, previous.ID > 0
}

func rankEntries(scores []score.Score, key func(score.Score) []int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(scores))
	for _, row := range scores {
		entries = append(entries, RankedEntry{ID: row.Username, Key: key(row)})
	}
	return entries
}

func scoreKey(row score.Score) []int {
	return []int{-row.ScoreCorrect, row.ScoreDeviation}
}

func deviationKey(row score.Score) []int {
	return []int{row.ScoreDeviation, -row.ScoreCorrect}
}
