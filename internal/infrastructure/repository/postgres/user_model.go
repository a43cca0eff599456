package postgres

import "time"

type userTableModel struct {
	ID             int64     `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Country        string    `db:"country"`
	IsActive       bool      `db:"is_active"`
	IsAdmin        bool      `db:"is_admin"`
	DateAdded      time.Time `db:"date_added"`
}
