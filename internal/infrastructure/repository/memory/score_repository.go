package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/biplovsubedi/prediction-league/internal/domain/score"
)

type scoreKey struct {
	season     string
	gameweekID int
	username   string
}

type ScoreRepository struct {
	mu     sync.RWMutex
	scores map[scoreKey]score.Score
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{scores: make(map[scoreKey]score.Score)}
}

func (r *ScoreRepository) UpsertAll(_ context.Context, scores []score.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range scores {
		key := scoreKey{season: item.Season, gameweekID: item.GameweekID, username: item.Username}
		r.scores[key] = item
	}

	return nil
}

func (r *ScoreRepository) ListForGameweek(_ context.Context, season string, gameweekID int) ([]score.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []score.Score
	for key, item := range r.scores {
		if key.season == season && key.gameweekID == gameweekID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })

	return out, nil
}

func (r *ScoreRepository) ListForPlayer(_ context.Context, season, username string) ([]score.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []score.Score
	for key, item := range r.scores {
		if key.season == season && key.username == username {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameweekID < out[j].GameweekID })

	return out, nil
}
