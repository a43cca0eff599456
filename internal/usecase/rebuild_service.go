package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/game-leaderboard/internal/domain/game"
	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/domain/score"
	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
)

const (
	rebuildStatusSuccess = "success"
	rebuildStatusFailed  = "failed"

	defaultRebuildWorkers = 4
	maxRebuildWorkers     = 32
)

type RebuildInput struct {
	// MaxWorkers caps the per-game fan-out; zero means the configured
	// default.
	MaxWorkers int
}

type RebuildResult struct {
	GameCount    int                 `json:"game_count"`
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	WorkerCount  int                 `json:"worker_count"`
	Games        []RebuildGameResult `json:"games"`
}

type RebuildGameResult struct {
	GameID     int64  `json:"game_id"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// RebuildService re-derives every game's ranking index from the durable
// score history. It is the recovery path for index writes that were
// skipped after a durable commit; replaying the latest value per user
// is idempotent, so running it concurrently with live submissions is
// safe.
type RebuildService struct {
	gameRepo       game.Repository
	scoreRepo      score.Repository
	index          ranking.Index
	defaultWorkers int
	log            *logging.Logger
}

func NewRebuildService(
	gameRepo game.Repository,
	scoreRepo score.Repository,
	index ranking.Index,
	defaultWorkers int,
	log *logging.Logger,
) *RebuildService {
	if defaultWorkers <= 0 {
		defaultWorkers = defaultRebuildWorkers
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &RebuildService{
		gameRepo:       gameRepo,
		scoreRepo:      scoreRepo,
		index:          index,
		defaultWorkers: defaultWorkers,
		log:            log,
	}
}

func (s *RebuildService) Rebuild(ctx context.Context, input RebuildInput) (RebuildResult, error) {
	ctx, span := startUsecaseSpan(ctx, "RebuildService.Rebuild")
	defer span.End()

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.defaultWorkers
	}
	if workerCount > maxRebuildWorkers {
		workerCount = maxRebuildWorkers
	}

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("list games: %w", err)
	}

	result := RebuildResult{
		GameCount:   len(games),
		WorkerCount: workerCount,
	}
	if len(games) == 0 {
		return result, nil
	}

	results := make(chan RebuildGameResult, len(games))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for gameID := range games {
		gameID := gameID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RebuildGameResult{GameID: gameID}

			records, err := s.rebuildGame(ctx, gameID)
			row.Records = records
			row.DurationMs = time.Since(start).Milliseconds()
			if err != nil {
				row.Status = rebuildStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
				s.log.ErrorContext(ctx, "ranking index rebuild failed for game",
					"game_id", gameID, "error", err)
			} else {
				row.Status = rebuildStatusSuccess
				successCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return RebuildResult{}, fmt.Errorf("submit game to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Games = append(result.Games, row)
	}
	sort.Slice(result.Games, func(i, j int) bool {
		return result.Games[i].GameID < result.Games[j].GameID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

func (s *RebuildService) rebuildGame(ctx context.Context, gameID int64) (int, error) {
	latest, err := s.scoreRepo.LatestByGame(ctx, gameID)
	if err != nil {
		return 0, fmt.Errorf("load latest scores: %w", err)
	}

	for n, row := range latest {
		if err := s.index.Submit(ctx, gameID, row.UserID, row.Value); err != nil {
			return n, fmt.Errorf("replay score user=%d: %w", row.UserID, err)
		}
	}
	return len(latest), nil
}
