package standing

import "context"

type Repository interface {
	UpsertForGameweek(ctx context.Context, season string, gameweekID int, standings []ActualStanding) error
	ListForGameweek(ctx context.Context, season string, gameweekID int) ([]ActualStanding, error)
}
