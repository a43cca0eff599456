package game

import "time"

// Game is immutable once created; there is no update or delete path.
type Game struct {
	ID        int64
	Name      string
	DateAdded time.Time
}
