package postgres

type latestScoreModel struct {
	UserID int64   `db:"user_id"`
	Value  float64 `db:"value"`
}
