package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
)

type predictionTableModel struct {
	Season        string `db:"season"`
	Username      string `db:"username"`
	TeamID        int    `db:"team_id"`
	PredictedRank int    `db:"predicted_rank"`
}

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// ReplaceForPlayer swaps the player's full set in one transaction so
// the uniqueness constraints never see a half-written state.
func (r *PredictionRepository) ReplaceForPlayer(ctx context.Context, season, username string, predictions []prediction.Prediction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace predictions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM predictions WHERE season = $1 AND username = $2`, season, username); err != nil {
		return fmt.Errorf("clear predictions: %w", err)
	}

	if len(predictions) > 0 {
		const query = `
			INSERT INTO predictions (season, username, team_id, predicted_rank, updated_at)
			VALUES (:season, :username, :team_id, :predicted_rank, now())`

		rows := make([]predictionTableModel, 0, len(predictions))
		for _, item := range predictions {
			rows = append(rows, predictionTableModel{
				Season:        item.Season,
				Username:      item.Username,
				TeamID:        item.TeamID,
				PredictedRank: item.PredictedRank,
			})
		}
		if _, err := tx.NamedExecContext(ctx, query, rows); err != nil {
			return fmt.Errorf("insert predictions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace predictions: %w", err)
	}

	return nil
}

func (r *PredictionRepository) ListBySeason(ctx context.Context, season string) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	const query = `
		SELECT season, username, team_id, predicted_rank
		FROM predictions
		WHERE season = $1
		ORDER BY username, predicted_rank`
	if err := r.db.SelectContext(ctx, &rows, query, season); err != nil {
		return nil, fmt.Errorf("select predictions by season: %w", err)
	}

	return mapPredictionRows(rows), nil
}

func (r *PredictionRepository) ListByPlayer(ctx context.Context, season, username string) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	const query = `
		SELECT season, username, team_id, predicted_rank
		FROM predictions
		WHERE season = $1 AND username = $2
		ORDER BY predicted_rank`
	if err := r.db.SelectContext(ctx, &rows, query, season, username); err != nil {
		return nil, fmt.Errorf("select predictions by player: %w", err)
	}

	return mapPredictionRows(rows), nil
}

func mapPredictionRows(rows []predictionTableModel) []prediction.Prediction {
	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Prediction{
			Season:        row.Season,
			Username:      row.Username,
			TeamID:        row.TeamID,
			PredictedRank: row.PredictedRank,
		})
	}
	return out
}
