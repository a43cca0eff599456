package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/game-leaderboard/internal/domain/game"
	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/domain/score"
	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
)

type SubmitScoreInput struct {
	UserID int64
	GameID int64
	Value  float64
}

// SubmitScoreResult reports the stored row plus whether the ranking
// index write had to be skipped. Degraded means the durable store holds
// the score but the leaderboard will not reflect it until the next
// submission or an index rebuild.
type SubmitScoreResult struct {
	Score    score.Score
	Degraded bool
}

type ScoreService struct {
	scoreRepo score.Repository
	userRepo  user.Repository
	gameRepo  game.Repository
	index     ranking.Index
	log       *logging.Logger
}

func NewScoreService(
	scoreRepo score.Repository,
	userRepo user.Repository,
	gameRepo game.Repository,
	index ranking.Index,
	log *logging.Logger,
) *ScoreService {
	if log == nil {
		log = logging.NewNop()
	}
	return &ScoreService{
		scoreRepo: scoreRepo,
		userRepo:  userRepo,
		gameRepo:  gameRepo,
		index:     index,
		log:       log,
	}
}

// Submit appends the score to the durable store first; only after that
// commit does it upsert the ranking index. The two steps are not a
// transaction: an index failure leaves the durable row in place and is
// reported via Degraded, never as an error.
func (s *ScoreService) Submit(ctx context.Context, input SubmitScoreInput) (SubmitScoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoreService.Submit")
	defer span.End()

	if input.UserID <= 0 {
		return SubmitScoreResult{}, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	if input.GameID <= 0 {
		return SubmitScoreResult{}, fmt.Errorf("%w: game id must be positive", ErrInvalidInput)
	}

	_, exists, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return SubmitScoreResult{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return SubmitScoreResult{}, fmt.Errorf("%w: user=%d", ErrNotFound, input.UserID)
	}

	_, exists, err = s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		return SubmitScoreResult{}, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return SubmitScoreResult{}, fmt.Errorf("%w: game=%d", ErrNotFound, input.GameID)
	}

	stored, err := s.scoreRepo.Create(ctx, input.UserID, input.GameID, input.Value)
	if err != nil {
		return SubmitScoreResult{}, fmt.Errorf("create score: %w", err)
	}

	result := SubmitScoreResult{Score: stored}
	if err := s.index.Submit(ctx, input.GameID, input.UserID, input.Value); err != nil {
		s.log.ErrorContext(ctx, "ranking index write failed after durable commit",
			"user_id", input.UserID, "game_id", input.GameID, "error", err)
		result.Degraded = true
	}

	return result, nil
}
