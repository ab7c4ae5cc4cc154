package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/biplovsubedi/prediction-league/internal/domain/standing"
)

type standingKey struct {
	season     string
	gameweekID int
}

type StandingRepository struct {
	mu         sync.RWMutex
	byGameweek map[standingKey]map[int]standing.ActualStanding
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{byGameweek: make(map[standingKey]map[int]standing.ActualStanding)}
}

func (r *StandingRepository) UpsertForGameweek(_ context.Context, season string, gameweekID int, standings []standing.ActualStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := standingKey{season: season, gameweekID: gameweekID}
	rows := r.byGameweek[key]
	if rows == nil {
		rows = make(map[int]standing.ActualStanding, len(standings))
		r.byGameweek[key] = rows
	}
	for _, item := range standings {
		rows[item.TeamID] = item
	}

	return nil
}

func (r *StandingRepository) ListForGameweek(_ context.Context, season string, gameweekID int) ([]standing.ActualStanding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byGameweek[standingKey{season: season, gameweekID: gameweekID}]
	out := make([]standing.ActualStanding, 0, len(rows))
	for _, item := range rows {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })

	return out, nil
}
