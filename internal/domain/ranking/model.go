package ranking

// Entry is a computed rank row; it is never persisted.
type Entry struct {
	UserID int64
	Score  float64
}

// RankedScore is one participant's position in a single game.
// Rank is 1-indexed; the highest score holds rank 1.
type RankedScore struct {
	Rank  int64
	Score float64
}

// NameHit is one slot of a batched name-cache read. Found=false is a
// cache miss, which is a first-class outcome and not the same thing as
// the id being unknown to the durable store.
type NameHit struct {
	ID    int64
	Name  string
	Found bool
}

// NamePair is one id→name upsert for batched cache writes.
type NamePair struct {
	ID   int64
	Name string
}
