package prediction

import "context"

type Repository interface {
	ReplaceForPlayer(ctx context.Context, season, username string, predictions []Prediction) error
	ListBySeason(ctx context.Context, season string) ([]Prediction, error)
	ListByPlayer(ctx context.Context, season, username string) ([]Prediction, error)
}
