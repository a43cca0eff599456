package user

import "time"

// User is the durable profile row; the durable store is authoritative,
// the name cache only ever holds a possibly-stale id→username copy.
type User struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	Country        string
	IsActive       bool
	IsAdmin        bool
	DateAdded      time.Time
}
