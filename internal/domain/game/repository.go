package game

import "context"

type Repository interface {
	Create(ctx context.Context, name string) (Game, error)
	GetByID(ctx context.Context, gameID int64) (Game, bool, error)
	// List returns every game as an id→name lookup.
	List(ctx context.Context) (map[int64]string, error)
}
