package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/biplovsubedi/prediction-league/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	byUsername := make(map[string]player.Player, len(players))
	for _, item := range players {
		byUsername[item.Username] = item
	}

	return &PlayerRepository{players: byUsername}
}

func (r *PlayerRepository) Upsert(_ context.Context, p player.Player) error {
	if p.Username == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.players[p.Username] = p
	return nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, item := range r.players {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })

	return out, nil
}

func (r *PlayerRepository) GetByUsername(_ context.Context, username string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[username]
	return item, ok, nil
}
