package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
)

type gameweekTableModel struct {
	ID          int  `db:"id"`
	IsCurrent   bool `db:"is_current"`
	Finished    bool `db:"finished"`
	DataChecked bool `db:"data_checked"`
}

type GameweekRepository struct {
	db *sqlx.DB
}

func NewGameweekRepository(db *sqlx.DB) *GameweekRepository {
	return &GameweekRepository{db: db}
}

func (r *GameweekRepository) UpsertAll(ctx context.Context, gameweeks []gameweek.Gameweek) error {
	if len(gameweeks) == 0 {
		return nil
	}

	const query = `
		INSERT INTO gameweeks (id, is_current, finished, data_checked, updated_at)
		VALUES (:id, :is_current, :finished, :data_checked, now())
		ON CONFLICT (id) DO UPDATE SET
			is_current = EXCLUDED.is_current,
			finished = EXCLUDED.finished,
			data_checked = EXCLUDED.data_checked,
			updated_at = now()`

	rows := make([]gameweekTableModel, 0, len(gameweeks))
	for _, item := range gameweeks {
		rows = append(rows, gameweekTableModel{
			ID:          item.ID,
			IsCurrent:   item.IsCurrent,
			Finished:    item.Finished,
			DataChecked: item.DataChecked,
		})
	}
	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("upsert gameweeks: %w", err)
	}

	return nil
}

func (r *GameweekRepository) List(ctx context.Context) ([]gameweek.Gameweek, error) {
	var rows []gameweekTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, is_current, finished, data_checked FROM gameweeks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select gameweeks: %w", err)
	}

	out := make([]gameweek.Gameweek, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameweek.Gameweek{
			ID:          row.ID,
			IsCurrent:   row.IsCurrent,
			Finished:    row.Finished,
			DataChecked: row.DataChecked,
		})
	}

	return out, nil
}

func (r *GameweekRepository) GetByID(ctx context.Context, id int) (gameweek.Gameweek, bool, error) {
	var row gameweekTableModel
	err := r.db.GetContext(ctx, &row, `SELECT id, is_current, finished, data_checked FROM gameweeks WHERE id = $1`, id)
	if isNotFound(err) {
		return gameweek.Gameweek{}, false, nil
	}
	if err != nil {
		return gameweek.Gameweek{}, false, fmt.Errorf("select gameweek by id: %w", err)
	}

	return gameweek.Gameweek{
		ID:          row.ID,
		IsCurrent:   row.IsCurrent,
		Finished:    row.Finished,
		DataChecked: row.DataChecked,
	}, true, nil
}
