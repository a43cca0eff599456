package redisboard

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/platform/resilience"
)

const scanBatchSize = 512

// RankingIndex keeps one sorted set per game (key = game id, member =
// user id, score = latest submitted value). Writes are last-write-wins
// upserts retried on transient backend failures; reads optionally pass
// through a circuit breaker so a dead backend fails fast.
type RankingIndex struct {
	client  *redis.Client
	retryer *resilience.Retryer
	breaker *resilience.CircuitBreaker
}

func NewRankingIndex(client *redis.Client, retryer *resilience.Retryer, breaker *resilience.CircuitBreaker) *RankingIndex {
	if retryer == nil {
		retryer = resilience.NewRetryer(resilience.DefaultRetryConfig(), IsTransient)
	}
	return &RankingIndex{
		client:  client,
		retryer: retryer,
		breaker: breaker,
	}
}

func (i *RankingIndex) Submit(ctx context.Context, gameID, userID int64, value float64) error {
	err := i.retryer.Do(ctx, func(ctx context.Context) error {
		return i.client.ZAdd(ctx, encodeID(gameID), redis.Z{
			Score:  value,
			Member: encodeID(userID),
		}).Err()
	})
	if err != nil {
		return errors.Wrapf(err, "submit score game=%d user=%d", gameID, userID)
	}
	return nil
}

func (i *RankingIndex) RankAndScore(ctx context.Context, gameID, userID int64) (ranking.RankedScore, bool, error) {
	if err := i.allow(); err != nil {
		return ranking.RankedScore{}, false, err
	}

	key := encodeID(gameID)
	member := encodeID(userID)

	var rankCmd *redis.IntCmd
	var scoreCmd *redis.FloatCmd
	_, err := i.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		rankCmd = pipe.ZRevRank(ctx, key, member)
		scoreCmd = pipe.ZScore(ctx, key, member)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		i.recordSuccess()
		return ranking.RankedScore{}, false, nil
	}
	if err != nil {
		i.recordFailure(err)
		return ranking.RankedScore{}, false, errors.Wrapf(err, "rank lookup game=%d user=%d", gameID, userID)
	}
	i.recordSuccess()

	return ranking.RankedScore{
		Rank:  rankCmd.Val() + 1,
		Score: scoreCmd.Val(),
	}, true, nil
}

func (i *RankingIndex) TopRange(ctx context.Context, gameID int64, start, end int64, withScores bool) ([]ranking.Entry, error) {
	if err := i.allow(); err != nil {
		return nil, err
	}

	key := encodeID(gameID)
	if withScores {
		rows, err := i.client.ZRevRangeWithScores(ctx, key, start, end).Result()
		if err != nil {
			i.recordFailure(err)
			return nil, errors.Wrapf(err, "top range game=%d", gameID)
		}
		i.recordSuccess()

		out := make([]ranking.Entry, 0, len(rows))
		for _, row := range rows {
			member, ok := row.Member.(string)
			if !ok {
				return nil, errors.Newf("unexpected member type %T in game %d", row.Member, gameID)
			}
			userID, err := decodeID(member)
			if err != nil {
				return nil, err
			}
			out = append(out, ranking.Entry{UserID: userID, Score: row.Score})
		}
		return out, nil
	}

	members, err := i.client.ZRevRange(ctx, key, start, end).Result()
	if err != nil {
		i.recordFailure(err)
		return nil, errors.Wrapf(err, "top range game=%d", gameID)
	}
	i.recordSuccess()

	out := make([]ranking.Entry, 0, len(members))
	for _, member := range members {
		userID, err := decodeID(member)
		if err != nil {
			return nil, err
		}
		out = append(out, ranking.Entry{UserID: userID})
	}
	return out, nil
}

// AllGameRanks walks every per-game sorted set with a cursor-based SCAN
// and resolves the user's rank in each via one pipeline. Keys created
// while the scan is in flight may be missed for this call; the next
// call sees them. The pipeline is not a snapshot across games.
func (i *RankingIndex) AllGameRanks(ctx context.Context, userID int64) (map[int64]int64, error) {
	if err := i.allow(); err != nil {
		return nil, err
	}

	var gameKeys []string
	var cursor uint64
	for {
		keys, next, err := i.client.ScanType(ctx, cursor, "*", scanBatchSize, "zset").Result()
		if err != nil {
			i.recordFailure(err)
			return nil, errors.Wrapf(err, "scan game indexes user=%d", userID)
		}
		gameKeys = append(gameKeys, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	out := make(map[int64]int64, len(gameKeys))
	if len(gameKeys) == 0 {
		i.recordSuccess()
		return out, nil
	}

	member := encodeID(userID)
	cmds := make([]*redis.IntCmd, len(gameKeys))
	_, err := i.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for n, key := range gameKeys {
			cmds[n] = pipe.ZRevRank(ctx, key, member)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		i.recordFailure(err)
		return nil, errors.Wrapf(err, "pipelined rank lookup user=%d", userID)
	}
	i.recordSuccess()

	for n, cmd := range cmds {
		if errors.Is(cmd.Err(), redis.Nil) {
			continue
		}
		if cmd.Err() != nil {
			return nil, errors.Wrapf(cmd.Err(), "rank lookup key=%s user=%d", gameKeys[n], userID)
		}
		gameID, err := decodeID(gameKeys[n])
		if err != nil {
			return nil, err
		}
		out[gameID] = cmd.Val() + 1
	}

	return out, nil
}

func (i *RankingIndex) allow() error {
	if i.breaker == nil {
		return nil
	}
	if err := i.breaker.Allow(); err != nil {
		return errors.Wrap(err, "ranking index read rejected")
	}
	return nil
}

func (i *RankingIndex) recordSuccess() {
	if i.breaker != nil {
		i.breaker.RecordSuccess()
	}
}

// Only connectivity-class failures count against the breaker; command
// errors say nothing about backend health.
func (i *RankingIndex) recordFailure(err error) {
	if i.breaker != nil && IsTransient(err) {
		i.breaker.RecordFailure()
	}
}
