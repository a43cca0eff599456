package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/game-leaderboard/internal/domain/game"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, name string) (game.Game, error) {
	const query = `
INSERT INTO games (name)
VALUES ($1)
RETURNING id, date_added`

	created := game.Game{Name: name}
	if err := r.db.QueryRowxContext(ctx, query, name).Scan(&created.ID, &created.DateAdded); err != nil {
		if isUniqueViolation(err) {
			return game.Game{}, fmt.Errorf("%w: %s", game.ErrNameTaken, name)
		}
		return game.Game{}, fmt.Errorf("create game: %w", err)
	}

	return created, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (game.Game, bool, error) {
	const query = `SELECT id, name, date_added FROM games WHERE id = $1`

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, gameID); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}

	return game.Game{ID: row.ID, Name: row.Name, DateAdded: row.DateAdded}, true, nil
}

func (r *GameRepository) List(ctx context.Context) (map[int64]string, error) {
	const query = `SELECT id, name, date_added FROM games ORDER BY id`

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}
