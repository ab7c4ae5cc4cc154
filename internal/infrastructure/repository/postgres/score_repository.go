package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/biplovsubedi/prediction-league/internal/domain/score"
)

type scoreTableModel struct {
	Season         string `db:"season"`
	GameweekID     int    `db:"gameweek_id"`
	Username       string `db:"username"`
	ScoreCorrect   int    `db:"score_correct"`
	ScoreDeviation int    `db:"score_deviation"`
	RankCorrect    int    `db:"rank_correct"`
	RankDeviation  int    `db:"rank_deviation"`
	Completed      bool   `db:"completed"`
}

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) UpsertAll(ctx context.Context, scores []score.Score) error {
	if len(scores) == 0 {
		return nil
	}

	const query = `
		INSERT INTO scores (season, gameweek_id, username, score_correct, score_deviation, rank_correct, rank_deviation, completed, updated_at)
		VALUES (:season, :gameweek_id, :username, :score_correct, :score_deviation, :rank_correct, :rank_deviation, :completed, now())
		ON CONFLICT (season, gameweek_id, username) DO UPDATE SET
			score_correct = EXCLUDED.score_correct,
			score_deviation = EXCLUDED.score_deviation,
			rank_correct = EXCLUDED.rank_correct,
			rank_deviation = EXCLUDED.rank_deviation,
			completed = EXCLUDED.completed,
			updated_at = now()`

	rows := make([]scoreTableModel, 0, len(scores))
	for _, item := range scores {
		rows = append(rows, scoreTableModel{
			Season:         item.Season,
			GameweekID:     item.GameweekID,
			Username:       item.Username,
			ScoreCorrect:   item.ScoreCorrect,
			ScoreDeviation: item.ScoreDeviation,
			RankCorrect:    item.RankCorrect,
			RankDeviation:  item.RankDeviation,
			Completed:      item.Completed,
		})
	}
	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("upsert scores: %w", err)
	}

	return nil
}

func (r *ScoreRepository) ListForGameweek(ctx context.Context, season string, gameweekID int) ([]score.Score, error) {
	var rows []scoreTableModel
	const query = `
		SELECT season, gameweek_id, username, score_correct, score_deviation, rank_correct, rank_deviation, completed
		FROM scores
		WHERE season = $1 AND gameweek_id = $2
		ORDER BY username`
	if err := r.db.SelectContext(ctx, &rows, query, season, gameweekID); err != nil {
		return nil, fmt.Errorf("select scores by gameweek: %w", err)
	}

	return mapScoreRows(rows), nil
}

func (r *ScoreRepository) ListForPlayer(ctx context.Context, season, username string) ([]score.Score, error) {
	var rows []scoreTableModel
	const query = `
		SELECT season, gameweek_id, username, score_correct, score_deviation, rank_correct, rank_deviation, completed
		FROM scores
		WHERE season = $1 AND username = $2
		ORDER BY gameweek_id`
	if err := r.db.SelectContext(ctx, &rows, query, season, username); err != nil {
		return nil, fmt.Errorf("select scores by player: %w", err)
	}

	return mapScoreRows(rows), nil
}

func mapScoreRows(rows []scoreTableModel) []score.Score {
	out := make([]score.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, score.Score{
			Season:         row.Season,
			GameweekID:     row.GameweekID,
			Username:       row.Username,
			ScoreCorrect:   row.ScoreCorrect,
			ScoreDeviation: row.ScoreDeviation,
			RankCorrect:    row.RankCorrect,
			RankDeviation:  row.RankDeviation,
			Completed:      row.Completed,
		})
	}
	return out
}
