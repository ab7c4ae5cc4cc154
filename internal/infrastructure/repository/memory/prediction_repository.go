package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
)

type predictionKey struct {
	season   string
	username string
}

type PredictionRepository struct {
	mu       sync.RWMutex
	byPlayer map[predictionKey][]prediction.Prediction
}

func NewPredictionRepository(predictions []prediction.Prediction) *PredictionRepository {
	byPlayer := make(map[predictionKey][]prediction.Prediction)
	for _, item := range predictions {
		key := predictionKey{season: item.Season, username: item.Username}
		byPlayer[key] = append(byPlayer[key], item)
	}

	return &PredictionRepository{byPlayer: byPlayer}
}

func (r *PredictionRepository) ReplaceForPlayer(_ context.Context, season, username string, predictions []prediction.Prediction) error {
	rows := make([]prediction.Prediction, 0, len(predictions))
	rows = append(rows, predictions...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byPlayer[predictionKey{season: season, username: username}] = rows
	return nil
}

func (r *PredictionRepository) ListBySeason(_ context.Context, season string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for key, rows := range r.byPlayer {
		if key.season != season {
			continue
		}
		out = append(out, rows...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].PredictedRank < out[j].PredictedRank
	})

	return out, nil
}

func (r *PredictionRepository) ListByPlayer(_ context.Context, season, username string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byPlayer[predictionKey{season: season, username: username}]
	out := make([]prediction.Prediction, 0, len(rows))
	out = append(out, rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].PredictedRank < out[j].PredictedRank })

	return out, nil
}
