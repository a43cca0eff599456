package score

import "context"

type Repository interface {
	Create(ctx context.Context, userID, gameID int64, value float64) (Score, error)
	// LatestByGame returns each participant's most recent submission for
	// one game, one row per user.
	LatestByGame(ctx context.Context, gameID int64) ([]Latest, error)
}
