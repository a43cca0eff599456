package ranking

import "context"

// Index is the per-game rank-ordered projection of latest scores.
//
// Equal scores order by descending user id. That is the index's native
// reverse member order, so single-member rank lookups and range reads
// can never disagree about a tie.
type Index interface {
	// Submit upserts the participant's latest score (last-write-wins).
	Submit(ctx context.Context, gameID, userID int64, value float64) error
	// RankAndScore returns the 1-indexed rank and latest score, or
	// found=false when the user has no entry in that game.
	RankAndScore(ctx context.Context, gameID, userID int64) (RankedScore, bool, error)
	// TopRange returns the window [start, end] (0-indexed from rank 1,
	// both ends inclusive) in descending score order. Games with fewer
	// participants yield a short result; unknown games yield an empty
	// one. Scores are only populated when withScores is set.
	TopRange(ctx context.Context, gameID int64, start, end int64, withScores bool) ([]Entry, error)
	// AllGameRanks returns the user's 1-indexed rank for every game
	// where they have an entry. Enumeration is cursor-based; games
	// created while the scan is in flight may be missed for that call.
	AllGameRanks(ctx context.Context, userID int64) (map[int64]int64, error)
}

// NameCache is an id→name cache-aside tier. One instance per namespace
// (users, games); ids from different namespaces are never mixed.
type NameCache interface {
	Set(ctx context.Context, id int64, name string) error
	// Get returns found=false on a cache miss; a miss is not an error.
	Get(ctx context.Context, id int64) (string, bool, error)
	// GetMany is one batched round trip. The result always has the same
	// length and order as ids; a miss keeps its slot with Found=false.
	// It is not a snapshot: writes racing the batch may yield a mix of
	// old and new values across slots.
	GetMany(ctx context.Context, ids []int64) ([]NameHit, error)
	SetMany(ctx context.Context, pairs []NamePair) error
}
