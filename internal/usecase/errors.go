package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/game-leaderboard/internal/platform/resilience"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("resource already exists")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrDurableStore     = errors.New("durable store failure")
)

// classifyCacheErr maps exhausted retries and a tripped breaker onto
// ErrCacheUnavailable so the transport layer can answer 503. A nil or
// unclassified error passes through untouched.
func classifyCacheErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, resilience.ErrRetriesExhausted) || errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%w: %s: %v", ErrCacheUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
