package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
)

type GameweekRepository struct {
	mu        sync.RWMutex
	gameweeks map[int]gameweek.Gameweek
}

func NewGameweekRepository(gameweeks []gameweek.Gameweek) *GameweekRepository {
	byID := make(map[int]gameweek.Gameweek, len(gameweeks))
	for _, item := range gameweeks {
		byID[item.ID] = item
	}

	return &GameweekRepository{gameweeks: byID}
}

func (r *GameweekRepository) UpsertAll(_ context.Context, gameweeks []gameweek.Gameweek) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range gameweeks {
		if item.ID <= 0 {
			continue
		}
		r.gameweeks[item.ID] = item
	}

	return nil
}

func (r *GameweekRepository) List(_ context.Context) ([]gameweek.Gameweek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gameweek.Gameweek, 0, len(r.gameweeks))
	for _, item := range r.gameweeks {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *GameweekRepository) GetByID(_ context.Context, id int) (gameweek.Gameweek, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.gameweeks[id]
	return item, ok, nil
}
