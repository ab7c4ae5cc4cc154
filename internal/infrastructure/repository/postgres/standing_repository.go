package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/biplovsubedi/prediction-league/internal/domain/standing"
)

type standingTableModel struct {
	Season     string `db:"season"`
	GameweekID int    `db:"gameweek_id"`
	TeamID     int    `db:"team_id"`
	ActualRank int    `db:"actual_rank"`
	Points     int    `db:"points"`
}

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) UpsertForGameweek(ctx context.Context, season string, gameweekID int, standings []standing.ActualStanding) error {
	if len(standings) == 0 {
		return nil
	}

	const query = `
		INSERT INTO actual_standings (season, gameweek_id, team_id, actual_rank, points, updated_at)
		VALUES (:season, :gameweek_id, :team_id, :actual_rank, :points, now())
		ON CONFLICT (season, gameweek_id, team_id) DO UPDATE SET
			actual_rank = EXCLUDED.actual_rank,
			points = EXCLUDED.points,
			updated_at = now()`

	rows := make([]standingTableModel, 0, len(standings))
	for _, item := range standings {
		rows = append(rows, standingTableModel{
			Season:     season,
			GameweekID: gameweekID,
			TeamID:     item.TeamID,
			ActualRank: item.ActualRank,
			Points:     item.Points,
		})
	}
	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("upsert standings: %w", err)
	}

	return nil
}

func (r *StandingRepository) ListForGameweek(ctx context.Context, season string, gameweekID int) ([]standing.ActualStanding, error) {
	var rows []standingTableModel
	const query = `
		SELECT season, gameweek_id, team_id, actual_rank, points
		FROM actual_standings
		WHERE season = $1 AND gameweek_id = $2
		ORDER BY actual_rank, team_id`
	if err := r.db.SelectContext(ctx, &rows, query, season, gameweekID); err != nil {
		return nil, fmt.Errorf("select standings: %w", err)
	}

	out := make([]standing.ActualStanding, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.ActualStanding{
			Season:     row.Season,
			GameweekID: row.GameweekID,
			TeamID:     row.TeamID,
			ActualRank: row.ActualRank,
			Points:     row.Points,
		})
	}

	return out, nil
}
