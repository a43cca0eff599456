package redisboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
)

func newTestIndex(t *testing.T) (*RankingIndex, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRankingIndex(client, nil, nil), srv
}

func TestRankingIndexSubmitAndRank(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Submit(ctx, 1, 10, 100))
	require.NoError(t, idx.Submit(ctx, 1, 20, 300))
	require.NoError(t, idx.Submit(ctx, 1, 30, 200))

	rs, found, err := idx.RankAndScore(ctx, 1, 20)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), rs.Rank)
	require.Equal(t, float64(300), rs.Score)

	rs, found, err = idx.RankAndScore(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(3), rs.Rank)
}

func TestRankingIndexLastWriteWins(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Submit(ctx, 1, 10, 500))
	require.NoError(t, idx.Submit(ctx, 1, 10, 50))

	rs, found, err := idx.RankAndScore(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, float64(50), rs.Score)
}

func TestRankingIndexResubmitIdempotent(t *testing.T) {
	idx, srv := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Submit(ctx, 1, 10, 100))
	require.NoError(t, idx.Submit(ctx, 1, 10, 100))

	members, err := srv.ZMembers(encodeID(1))
	require.NoError(t, err)
	require.Len(t, members, 1)

	rs, found, err := idx.RankAndScore(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), rs.Rank)
}

func TestRankingIndexTieBreaksOnHigherID(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Submit(ctx, 1, 3, 250))
	require.NoError(t, idx.Submit(ctx, 1, 5, 250))

	entries, err := idx.TopRange(ctx, 1, 0, -1, true)
	require.NoError(t, err)
	require.Equal(t, []ranking.Entry{
		{UserID: 5, Score: 250},
		{UserID: 3, Score: 250},
	}, entries)
}

func TestRankingIndexTopRangeWindow(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	for n := int64(1); n <= 5; n++ {
		require.NoError(t, idx.Submit(ctx, 1, n, float64(n*100)))
	}

	entries, err := idx.TopRange(ctx, 1, 1, 3, true)
	require.NoError(t, err)
	require.Equal(t, []ranking.Entry{
		{UserID: 4, Score: 400},
		{UserID: 3, Score: 300},
		{UserID: 2, Score: 200},
	}, entries)

	entries, err = idx.TopRange(ctx, 1, 0, 1, false)
	require.NoError(t, err)
	require.Equal(t, []ranking.Entry{{UserID: 5}, {UserID: 4}}, entries)

	entries, err = idx.TopRange(ctx, 1, 10, 20, true)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRankingIndexRankMiss(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Submit(ctx, 1, 10, 100))

	_, found, err := idx.RankAndScore(ctx, 1, 999)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = idx.RankAndScore(ctx, 2, 10)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRankingIndexAllGameRanks(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Submit(ctx, 1, 10, 100))
	require.NoError(t, idx.Submit(ctx, 1, 20, 200))
	require.NoError(t, idx.Submit(ctx, 2, 10, 500))
	require.NoError(t, idx.Submit(ctx, 3, 20, 50))

	ranks, err := idx.AllGameRanks(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, map[int64]int64{1: 2, 2: 1}, ranks)

	ranks, err = idx.AllGameRanks(ctx, 999)
	require.NoError(t, err)
	require.Empty(t, ranks)
}
