package game

import "errors"

// ErrNameTaken reports a write rejected by the game name uniqueness
// constraint in the durable store.
var ErrNameTaken = errors.New("game name already taken")
