package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/game-leaderboard/internal/domain/game"
	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
)

type GameService struct {
	gameRepo  game.Repository
	nameCache ranking.NameCache
	log       *logging.Logger
}

func NewGameService(gameRepo game.Repository, nameCache ranking.NameCache, log *logging.Logger) *GameService {
	if log == nil {
		log = logging.NewNop()
	}
	return &GameService{
		gameRepo:  gameRepo,
		nameCache: nameCache,
		log:       log,
	}
}

func (s *GameService) Create(ctx context.Context, name string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.Create")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return game.Game{}, fmt.Errorf("%w: game name is required", ErrInvalidInput)
	}

	created, err := s.gameRepo.Create(ctx, name)
	if err != nil {
		if errors.Is(err, game.ErrNameTaken) {
			return game.Game{}, fmt.Errorf("%w: name=%s", ErrConflict, name)
		}
		return game.Game{}, fmt.Errorf("create game: %w", err)
	}

	if err := s.nameCache.Set(ctx, created.ID, created.Name); err != nil {
		s.log.WarnContext(ctx, "game name cache write failed after create",
			"game_id", created.ID, "error", err)
	}

	return created, nil
}

// List returns every game ordered by id.
func (s *GameService) List(ctx context.Context) ([]game.Game, error) {
	all, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	out := make([]game.Game, 0, len(all))
	for id, name := range all {
		out = append(out, game.Game{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
