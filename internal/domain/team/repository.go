package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	UpsertAll(ctx context.Context, teams []Team) error
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, id int) (Team, bool, error)
}
