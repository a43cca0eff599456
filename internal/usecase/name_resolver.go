package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/game-leaderboard/internal/domain/game"
	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/game-leaderboard/internal/platform/resilience"
)

// NameResolver composes one cache-aside name tier over its durable
// source. Misses backfill from the durable store and write back on a
// best-effort basis; a cache write failure never fails the resolve.
// Cache read failures degrade to the durable store with a warning, so
// a down cache slows name resolution rather than breaking it.
type NameResolver struct {
	namespace  string
	cache      ranking.NameCache
	lookup     func(ctx context.Context, id int64) (string, bool, error)
	lookupMany func(ctx context.Context, ids []int64) (map[int64]string, error)
	flight     *resilience.SingleFlight
	log        *logging.Logger
}

func NewUserNameResolver(cache ranking.NameCache, repo user.Repository, log *logging.Logger) *NameResolver {
	return newNameResolver("user", cache, log,
		func(ctx context.Context, id int64) (string, bool, error) {
			item, found, err := repo.GetByID(ctx, id)
			if err != nil {
				return "", false, fmt.Errorf("get user: %w", err)
			}
			return item.Username, found, nil
		},
		func(ctx context.Context, ids []int64) (map[int64]string, error) {
			items, err := repo.GetByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("get users by ids: %w", err)
			}
			out := make(map[int64]string, len(items))
			for _, item := range items {
				out[item.ID] = item.Username
			}
			return out, nil
		},
	)
}

func NewGameNameResolver(cache ranking.NameCache, repo game.Repository, log *logging.Logger) *NameResolver {
	return newNameResolver("game", cache, log,
		func(ctx context.Context, id int64) (string, bool, error) {
			item, found, err := repo.GetByID(ctx, id)
			if err != nil {
				return "", false, fmt.Errorf("get game: %w", err)
			}
			return item.Name, found, nil
		},
		func(ctx context.Context, ids []int64) (map[int64]string, error) {
			all, err := repo.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("list games: %w", err)
			}
			out := make(map[int64]string, len(ids))
			for _, id := range ids {
				if name, ok := all[id]; ok {
					out[id] = name
				}
			}
			return out, nil
		},
	)
}

func newNameResolver(
	namespace string,
	cache ranking.NameCache,
	log *logging.Logger,
	lookup func(ctx context.Context, id int64) (string, bool, error),
	lookupMany func(ctx context.Context, ids []int64) (map[int64]string, error),
) *NameResolver {
	if log == nil {
		log = logging.NewNop()
	}
	return &NameResolver{
		namespace:  namespace,
		cache:      cache,
		lookup:     lookup,
		lookupMany: lookupMany,
		flight:     &resilience.SingleFlight{},
		log:        log,
	}
}

// Resolve returns the display name for id, backfilling the cache on a
// miss. found=false means the id is unknown to both tiers.
func (r *NameResolver) Resolve(ctx context.Context, id int64) (string, bool, error) {
	name, found, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.WarnContext(ctx, "name cache read failed, falling back to durable store",
			"namespace", r.namespace, "id", id, "error", err)
	} else if found {
		return name, true, nil
	}

	key := fmt.Sprintf("%s:%d", r.namespace, id)
	result, err, _ := r.flight.Do(key, func() (any, error) {
		durable, exists, err := r.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, nil
		}
		if err := r.cache.Set(ctx, id, durable); err != nil {
			r.log.WarnContext(ctx, "name cache backfill failed",
				"namespace", r.namespace, "id", id, "error", err)
		}
		return durable, nil
	})
	if err != nil {
		return "", false, err
	}
	if result == nil {
		return "", false, nil
	}
	return result.(string), true, nil
}

// ResolveMany resolves a batch in one cache round trip plus at most one
// durable batch lookup for the misses. The result map is keyed by id;
// ids unknown to both tiers are absent from it. Callers must merge by
// id, never by position.
func (r *NameResolver) ResolveMany(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	out := make(map[int64]string, len(ids))
	missSet := make(map[int64]struct{}, len(ids))

	hits, err := r.cache.GetMany(ctx, ids)
	if err != nil {
		r.log.WarnContext(ctx, "name cache batch read failed, falling back to durable store",
			"namespace", r.namespace, "ids", len(ids), "error", err)
		for _, id := range ids {
			missSet[id] = struct{}{}
		}
	} else {
		for _, hit := range hits {
			if hit.Found {
				out[hit.ID] = hit.Name
			} else {
				missSet[hit.ID] = struct{}{}
			}
		}
	}

	if len(missSet) == 0 {
		return out, nil
	}

	missed := make([]int64, 0, len(missSet))
	for id := range missSet {
		missed = append(missed, id)
	}
	durable, err := r.lookupMany(ctx, missed)
	if err != nil {
		return nil, err
	}

	backfill := make([]ranking.NamePair, 0, len(durable))
	for id, name := range durable {
		out[id] = name
		backfill = append(backfill, ranking.NamePair{ID: id, Name: name})
	}
	if len(backfill) > 0 {
		if err := r.cache.SetMany(ctx, backfill); err != nil {
			r.log.WarnContext(ctx, "name cache batch backfill failed",
				"namespace", r.namespace, "ids", len(backfill), "error", err)
		}
	}

	return out, nil
}
