package score

import "context"

type Repository interface {
	UpsertAll(ctx context.Context, scores []Score) error
	ListForGameweek(ctx context.Context, season string, gameweekID int) ([]Score, error)
	ListForPlayer(ctx context.Context, season, username string) ([]Score, error)
}
