package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
)

func newScoreFixture(t *testing.T) (*ScoreService, *stubScoreRepo, *stubIndex) {
	t.Helper()
	scoreRepo := newStubScoreRepo()
	index := newStubIndex()
	service := NewScoreService(
		scoreRepo,
		newStubUserRepo(user.User{ID: 1, Username: "alice"}),
		newStubGameRepo(map[int64]string{10: "tetris"}),
		index,
		nil,
	)
	return service, scoreRepo, index
}

func TestScoreService_Submit(t *testing.T) {
	t.Run("writes durable store then ranking index", func(t *testing.T) {
		service, scoreRepo, index := newScoreFixture(t)

		result, err := service.Submit(t.Context(), SubmitScoreInput{UserID: 1, GameID: 10, Value: 250})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if result.Degraded {
			t.Fatalf("unexpected degraded result")
		}
		if len(scoreRepo.rows) != 1 || scoreRepo.rows[0].Value != 250 {
			t.Fatalf("unexpected durable rows: %+v", scoreRepo.rows)
		}
		if index.scores[10][1] != 250 {
			t.Fatalf("unexpected index state: %+v", index.scores)
		}
	})

	t.Run("index failure degrades instead of erroring", func(t *testing.T) {
		service, scoreRepo, index := newScoreFixture(t)
		index.submitErr = errors.New("connection refused")

		result, err := service.Submit(t.Context(), SubmitScoreInput{UserID: 1, GameID: 10, Value: 250})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if !result.Degraded {
			t.Fatalf("expected degraded result")
		}
		if len(scoreRepo.rows) != 1 {
			t.Fatalf("durable row must survive index failure: %+v", scoreRepo.rows)
		}
	})

	t.Run("durable failure skips the index entirely", func(t *testing.T) {
		service, scoreRepo, index := newScoreFixture(t)
		scoreRepo.createErr = errors.New("disk full")

		if _, err := service.Submit(t.Context(), SubmitScoreInput{UserID: 1, GameID: 10, Value: 250}); err == nil {
			t.Fatalf("expected error")
		}
		if index.submits != 0 {
			t.Fatalf("index must not be written when the durable store rejects")
		}
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		service, _, _ := newScoreFixture(t)

		_, err := service.Submit(t.Context(), SubmitScoreInput{UserID: 404, GameID: 10, Value: 250})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown game is not found", func(t *testing.T) {
		service, _, _ := newScoreFixture(t)

		_, err := service.Submit(t.Context(), SubmitScoreInput{UserID: 1, GameID: 404, Value: 250})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects non-positive ids", func(t *testing.T) {
		service, _, _ := newScoreFixture(t)

		if _, err := service.Submit(t.Context(), SubmitScoreInput{UserID: 0, GameID: 10}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := service.Submit(t.Context(), SubmitScoreInput{UserID: 1, GameID: -1}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}
