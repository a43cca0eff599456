package postgres

import "time"

type gameTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	DateAdded time.Time `db:"date_added"`
}
