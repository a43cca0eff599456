package user

import "errors"

// ErrUsernameTaken reports a write rejected by the username uniqueness
// constraint in the durable store.
var ErrUsernameTaken = errors.New("username already taken")
