package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/game-leaderboard/internal/domain/score"
)

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Create(ctx context.Context, userID, gameID int64, value float64) (score.Score, error) {
	const query = `
INSERT INTO scores (user_id, game_id, value)
VALUES ($1, $2, $3)
RETURNING id, date_added`

	created := score.Score{UserID: userID, GameID: gameID, Value: value}
	if err := r.db.QueryRowxContext(ctx, query, userID, gameID, value).Scan(&created.ID, &created.DateAdded); err != nil {
		return score.Score{}, fmt.Errorf("create score: %w", err)
	}

	return created, nil
}

func (r *ScoreRepository) LatestByGame(ctx context.Context, gameID int64) ([]score.Latest, error) {
	// DISTINCT ON keeps the newest submission per user; the id ordering
	// breaks same-timestamp ties in favor of the later insert.
	const query = `
SELECT DISTINCT ON (user_id) user_id, value
FROM scores
WHERE game_id = $1
ORDER BY user_id, date_added DESC, id DESC`

	var rows []latestScoreModel
	if err := r.db.SelectContext(ctx, &rows, query, gameID); err != nil {
		return nil, fmt.Errorf("select latest scores by game: %w", err)
	}

	out := make([]score.Latest, 0, len(rows))
	for _, row := range rows {
		out = append(out, score.Latest{UserID: row.UserID, Value: row.Value})
	}
	return out, nil
}
