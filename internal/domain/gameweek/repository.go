package gameweek

import "context"

type Repository interface {
	UpsertAll(ctx context.Context, gameweeks []Gameweek) error
	List(ctx context.Context) ([]Gameweek, error)
	GetByID(ctx context.Context, id int) (Gameweek, bool, error)
}
