package score

import "time"

// Score is one submission row. The durable store keeps the full
// append-only history; the ranking index only ever projects the latest
// value per (game, user) pair.
type Score struct {
	ID        int64
	UserID    int64
	GameID    int64
	Value     float64
	DateAdded time.Time
}

// Latest is the last-write-wins projection of Score used when
// rebuilding a game's ranking index from durable history.
type Latest struct {
	UserID int64
	Value  float64
}
