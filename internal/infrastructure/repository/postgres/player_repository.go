package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/biplovsubedi/prediction-league/internal/domain/player"
)

type playerTableModel struct {
	Username string `db:"username"`
	TeamName string `db:"team_name"`
	Type     string `db:"player_type"`
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Upsert(ctx context.Context, p player.Player) error {
	const query = `
		INSERT INTO players (username, team_name, player_type, updated_at)
		VALUES (:username, :team_name, :player_type, now())
		ON CONFLICT (username) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			player_type = EXCLUDED.player_type,
			updated_at = now()`

	row := playerTableModel{
		Username: p.Username,
		TeamName: p.TeamName,
		Type:     string(p.Type),
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}

	return nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT username, team_name, player_type FROM players ORDER BY username`); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			Username: row.Username,
			TeamName: row.TeamName,
			Type:     player.Type(row.Type),
		})
	}

	return out, nil
}

func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (player.Player, bool, error) {
	var row playerTableModel
	err := r.db.GetContext(ctx, &row, `SELECT username, team_name, player_type FROM players WHERE username = $1`, username)
	if isNotFound(err) {
		return player.Player{}, false, nil
	}
	if err != nil {
		return player.Player{}, false, fmt.Errorf("select player by username: %w", err)
	}

	return player.Player{
		Username: row.Username,
		TeamName: row.TeamName,
		Type:     player.Type(row.Type),
	}, true, nil
}
