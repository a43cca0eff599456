package user

import "context"

type Repository interface {
	Create(ctx context.Context, item User) (User, error)
	GetByID(ctx context.Context, userID int64) (User, bool, error)
	// GetByIDs returns the users that exist among ids; result order is
	// not guaranteed to match the input, callers merge by id.
	GetByIDs(ctx context.Context, userIDs []int64) ([]User, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
}
