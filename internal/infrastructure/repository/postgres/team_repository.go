package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/biplovsubedi/prediction-league/internal/domain/team"
)

type teamTableModel struct {
	ID        int    `db:"id"`
	Name      string `db:"name"`
	ShortName string `db:"short_name"`
	Code      int    `db:"code"`
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) UpsertAll(ctx context.Context, teams []team.Team) error {
	if len(teams) == 0 {
		return nil
	}

	const query = `
		INSERT INTO teams (id, name, short_name, code, updated_at)
		VALUES (:id, :name, :short_name, :code, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name,
			code = EXCLUDED.code,
			updated_at = now()`

	rows := make([]teamTableModel, 0, len(teams))
	for _, item := range teams {
		rows = append(rows, teamTableModel{
			ID:        item.ID,
			Name:      item.Name,
			ShortName: item.ShortName,
			Code:      item.Code,
		})
	}
	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("upsert teams: %w", err)
	}

	return nil
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, short_name, code FROM teams ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:        row.ID,
			Name:      row.Name,
			ShortName: row.ShortName,
			Code:      row.Code,
		})
	}

	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int) (team.Team, bool, error) {
	var row teamTableModel
	err := r.db.GetContext(ctx, &row, `SELECT id, name, short_name, code FROM teams WHERE id = $1`, id)
	if isNotFound(err) {
		return team.Team{}, false, nil
	}
	if err != nil {
		return team.Team{}, false, fmt.Errorf("select team by id: %w", err)
	}

	return team.Team{
		ID:        row.ID,
		Name:      row.Name,
		ShortName: row.ShortName,
		Code:      row.Code,
	}, true, nil
}
