package redisboard

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/platform/resilience"
)

// NameCache maps entity ids to display names in a dedicated logical
// database, one plain string key per id. Two instances run side by
// side in production, one for user names and one for game names.
type NameCache struct {
	client  *redis.Client
	retryer *resilience.Retryer
	breaker *resilience.CircuitBreaker
}

func NewNameCache(client *redis.Client, retryer *resilience.Retryer, breaker *resilience.CircuitBreaker) *NameCache {
	if retryer == nil {
		retryer = resilience.NewRetryer(resilience.DefaultRetryConfig(), IsTransient)
	}
	return &NameCache{
		client:  client,
		retryer: retryer,
		breaker: breaker,
	}
}

func (c *NameCache) Set(ctx context.Context, id int64, name string) error {
	err := c.retryer.Do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, nameKey(id), name, 0).Err()
	})
	if err != nil {
		return errors.Wrapf(err, "cache name id=%d", id)
	}
	return nil
}

func (c *NameCache) Get(ctx context.Context, id int64) (string, bool, error) {
	if err := c.allow(); err != nil {
		return "", false, err
	}

	name, err := c.client.Get(ctx, nameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		c.recordSuccess()
		return "", false, nil
	}
	if err != nil {
		c.recordFailure(err)
		return "", false, errors.Wrapf(err, "read name id=%d", id)
	}
	c.recordSuccess()
	return name, true, nil
}

// GetMany resolves a batch of ids in one round trip. The result always
// has the same length as ids, hit n corresponding to ids[n]; absent
// entries come back with Found false and are never dropped.
func (c *NameCache) GetMany(ctx context.Context, ids []int64) ([]ranking.NameHit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := c.allow(); err != nil {
		return nil, err
	}

	keys := make([]string, len(ids))
	for n, id := range ids {
		keys[n] = nameKey(id)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.recordFailure(err)
		return nil, errors.Wrapf(err, "read %d names", len(ids))
	}
	c.recordSuccess()

	out := make([]ranking.NameHit, len(ids))
	for n, id := range ids {
		out[n] = ranking.NameHit{ID: id}
		if name, ok := vals[n].(string); ok {
			out[n].Name = name
			out[n].Found = true
		}
	}
	return out, nil
}

func (c *NameCache) SetMany(ctx context.Context, pairs []ranking.NamePair) error {
	if len(pairs) == 0 {
		return nil
	}
	err := c.retryer.Do(ctx, func(ctx context.Context) error {
		_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, p := range pairs {
				pipe.Set(ctx, nameKey(p.ID), p.Name, 0)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "cache %d names", len(pairs))
	}
	return nil
}

func (c *NameCache) allow() error {
	if c.breaker == nil {
		return nil
	}
	if err := c.breaker.Allow(); err != nil {
		return errors.Wrap(err, "name cache read rejected")
	}
	return nil
}

func (c *NameCache) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
}

func (c *NameCache) recordFailure(err error) {
	if c.breaker != nil && IsTransient(err) {
		c.breaker.RecordFailure()
	}
}

func nameKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
