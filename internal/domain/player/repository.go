package player

import "context"

type Repository interface {
	Upsert(ctx context.Context, p Player) error
	List(ctx context.Context) ([]Player, error)
	GetByUsername(ctx context.Context, username string) (Player, bool, error)
}
