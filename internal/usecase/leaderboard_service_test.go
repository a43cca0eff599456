package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
	"github.com/riskibarqy/game-leaderboard/internal/platform/resilience"
)

func newLeaderboardFixture(t *testing.T) (*LeaderboardService, *stubIndex, *stubUserRepo, *stubGameRepo) {
	t.Helper()

	userRepo := newStubUserRepo(
		user.User{ID: 1, Username: "alice", Country: "id", DateAdded: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
		user.User{ID: 2, Username: "bob", Country: "sg"},
		user.User{ID: 3, Username: "carol", Country: "my"},
		user.User{ID: 5, Username: "eve", Country: "id"},
	)
	gameRepo := newStubGameRepo(map[int64]string{10: "tetris", 20: "pinball"})
	index := newStubIndex()

	service := NewLeaderboardService(
		index,
		userRepo,
		NewUserNameResolver(newStubNameCache(), userRepo, nil),
		NewGameNameResolver(newStubNameCache(), gameRepo, nil),
		nil,
	)
	return service, index, userRepo, gameRepo
}

func submitAll(t *testing.T, index *stubIndex, gameID int64, scores map[int64]float64) {
	t.Helper()
	for userID, value := range scores {
		if err := index.Submit(context.Background(), gameID, userID, value); err != nil {
			t.Fatalf("seed submit failed: %v", err)
		}
	}
}

func TestLeaderboardService_ScoredLeaderboard(t *testing.T) {
	t.Run("returns ranked window with usernames merged by id", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{1: 100, 2: 300, 3: 200, 5: 50})

		board, err := service.ScoredLeaderboard(t.Context(), 10, 1, 3)
		if err != nil {
			t.Fatalf("scored leaderboard failed: %v", err)
		}
		if board.GameName != "tetris" {
			t.Fatalf("unexpected game name: %s", board.GameName)
		}
		want := []LeaderboardEntry{
			{Rank: 1, UserID: 2, Username: "bob", Score: 300},
			{Rank: 2, UserID: 3, Username: "carol", Score: 200},
			{Rank: 3, UserID: 1, Username: "alice", Score: 100},
		}
		if len(board.Entries) != len(want) {
			t.Fatalf("unexpected entry count: %d", len(board.Entries))
		}
		for n, entry := range board.Entries {
			if entry != want[n] {
				t.Fatalf("entry %d mismatch: got=%+v want=%+v", n, entry, want[n])
			}
		}
	})

	t.Run("tie orders higher id first", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{3: 250, 5: 250})

		board, err := service.ScoredLeaderboard(t.Context(), 10, 1, 10)
		if err != nil {
			t.Fatalf("scored leaderboard failed: %v", err)
		}
		if board.Entries[0].UserID != 5 || board.Entries[1].UserID != 3 {
			t.Fatalf("unexpected tie order: %+v", board.Entries)
		}
	})

	t.Run("window past board end trims", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{1: 100, 2: 300})

		board, err := service.ScoredLeaderboard(t.Context(), 10, 2, 50)
		if err != nil {
			t.Fatalf("scored leaderboard failed: %v", err)
		}
		if len(board.Entries) != 1 || board.Entries[0].Rank != 2 {
			t.Fatalf("unexpected window: %+v", board.Entries)
		}
	})

	t.Run("unknown game is not found", func(t *testing.T) {
		service, _, _, _ := newLeaderboardFixture(t)

		_, err := service.ScoredLeaderboard(t.Context(), 404, 1, 10)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty board is not found", func(t *testing.T) {
		service, _, _, _ := newLeaderboardFixture(t)

		_, err := service.ScoredLeaderboard(t.Context(), 10, 1, 10)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("invalid window is rejected", func(t *testing.T) {
		service, _, _, _ := newLeaderboardFixture(t)

		if _, err := service.ScoredLeaderboard(t.Context(), 10, 0, 5); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := service.ScoredLeaderboard(t.Context(), 10, 5, 2); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("tripped breaker maps to cache unavailable", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		index.readErr = fmt.Errorf("read leaderboard: %w", resilience.ErrCircuitOpen)

		_, err := service.ScoredLeaderboard(t.Context(), 10, 1, 10)
		if !errors.Is(err, ErrCacheUnavailable) {
			t.Fatalf("expected ErrCacheUnavailable, got %v", err)
		}
	})
}

func TestLeaderboardService_ParticipantRankings(t *testing.T) {
	t.Run("aggregates ranks across games", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{1: 100, 2: 300})
		submitAll(t, index, 20, map[int64]float64{1: 500})

		rankings, err := service.ParticipantRankings(t.Context(), 1)
		if err != nil {
			t.Fatalf("participant rankings failed: %v", err)
		}
		want := []ParticipantRanking{
			{GameID: 10, GameName: "tetris", Rank: 2},
			{GameID: 20, GameName: "pinball", Rank: 1},
		}
		if len(rankings) != len(want) {
			t.Fatalf("unexpected ranking count: %d", len(rankings))
		}
		for n, row := range rankings {
			if row != want[n] {
				t.Fatalf("ranking %d mismatch: got=%+v want=%+v", n, row, want[n])
			}
		}
	})

	t.Run("user with no entries gets empty result", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{2: 300})

		rankings, err := service.ParticipantRankings(t.Context(), 1)
		if err != nil {
			t.Fatalf("participant rankings failed: %v", err)
		}
		if len(rankings) != 0 {
			t.Fatalf("expected empty rankings, got %+v", rankings)
		}
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		service, _, _, _ := newLeaderboardFixture(t)

		_, err := service.ParticipantRankings(t.Context(), 404)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLeaderboardService_RankAndScore(t *testing.T) {
	t.Run("returns single rank with names attached", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{1: 100, 2: 300})

		got, err := service.RankAndScore(t.Context(), 1, 10)
		if err != nil {
			t.Fatalf("rank and score failed: %v", err)
		}
		want := ParticipantGameRank{
			GameID: 10, GameName: "tetris",
			UserID: 1, Username: "alice",
			Rank: 2, Score: 100,
		}
		if got != want {
			t.Fatalf("unexpected result: got=%+v want=%+v", got, want)
		}
	})

	t.Run("missing entry is not found", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{2: 300})

		_, err := service.RankAndScore(t.Context(), 1, 10)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLeaderboardService_TopPlayerReport(t *testing.T) {
	t.Run("re-associates profiles by id in rank order", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{1: 100, 2: 300, 3: 200})

		report, err := service.TopPlayerReport(t.Context(), 10)
		if err != nil {
			t.Fatalf("top player report failed: %v", err)
		}
		if len(report) != 3 {
			t.Fatalf("unexpected report size: %d", len(report))
		}
		if report[0].UserID != 2 || report[0].Username != "bob" || report[0].Country != "sg" {
			t.Fatalf("unexpected top player: %+v", report[0])
		}
		if report[1].UserID != 3 || report[1].Username != "carol" {
			t.Fatalf("unexpected second player: %+v", report[1])
		}
		if report[2].UserID != 1 || report[2].Username != "alice" {
			t.Fatalf("unexpected third player: %+v", report[2])
		}
		if report[0].Rank != 1 || report[1].Rank != 2 || report[2].Rank != 3 {
			t.Fatalf("ranks must be 1-indexed positions: %+v", report)
		}
	})

	t.Run("keeps rank row when profile is missing", func(t *testing.T) {
		service, index, _, _ := newLeaderboardFixture(t)
		submitAll(t, index, 10, map[int64]float64{2: 300, 999: 500})

		report, err := service.TopPlayerReport(t.Context(), 10)
		if err != nil {
			t.Fatalf("top player report failed: %v", err)
		}
		if len(report) != 2 {
			t.Fatalf("unexpected report size: %d", len(report))
		}
		if report[0].UserID != 999 || report[0].Username != "" {
			t.Fatalf("unexpected orphan row: %+v", report[0])
		}
		if report[1].UserID != 2 || report[1].Username != "bob" {
			t.Fatalf("unexpected second row: %+v", report[1])
		}
	})

	t.Run("empty board is not found", func(t *testing.T) {
		service, _, _, _ := newLeaderboardFixture(t)

		_, err := service.TopPlayerReport(t.Context(), 10)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
