package redisboard

import (
	"context"
	"io"
	"net"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// IsTransient reports whether a cache backend error is worth retrying.
// redis.Nil is an absence, not a failure, and is never transient;
// command errors (wrong type, bad arguments) are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
