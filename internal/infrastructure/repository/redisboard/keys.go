package redisboard

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Ids are rendered zero-padded to a fixed width so that the backend's
// lexicographic member order equals numeric id order. That makes the
// tie-break for equal scores (higher id first under reverse range
// iteration) hold for ids of any magnitude. The padded form never
// leaves this package.
const idWidth = 20

func encodeID(id int64) string {
	return fmt.Sprintf("%0*d", idWidth, id)
}

func decodeID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "decode id %q", raw)
	}
	return id, nil
}
