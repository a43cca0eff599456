package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
)

const topPlayerReportSize = 10

type LeaderboardEntry struct {
	Rank     int64
	UserID   int64
	Username string
	Score    float64
}

type ScoredLeaderboard struct {
	GameID   int64
	GameName string
	Entries  []LeaderboardEntry
}

type ParticipantRanking struct {
	GameID   int64
	GameName string
	Rank     int64
}

type ParticipantGameRank struct {
	GameID   int64
	GameName string
	UserID   int64
	Username string
	Rank     int64
	Score    float64
}

type TopPlayer struct {
	Rank       int64
	UserID     int64
	Username   string
	Country    string
	DateJoined time.Time
}

// LeaderboardService joins the rank-ordered index with the two name
// tiers and the durable profile store. Every join is keyed by id; rank
// output order comes from the index alone.
type LeaderboardService struct {
	index     ranking.Index
	userRepo  user.Repository
	userNames *NameResolver
	gameNames *NameResolver
	log       *logging.Logger
}

func NewLeaderboardService(
	index ranking.Index,
	userRepo user.Repository,
	userNames *NameResolver,
	gameNames *NameResolver,
	log *logging.Logger,
) *LeaderboardService {
	if log == nil {
		log = logging.NewNop()
	}
	return &LeaderboardService{
		index:     index,
		userRepo:  userRepo,
		userNames: userNames,
		gameNames: gameNames,
		log:       log,
	}
}

// ScoredLeaderboard returns ranks [start, end] (1-indexed, inclusive)
// for one game with usernames attached. A window past the end of the
// board yields whatever ranks exist; a game with no entries at all is
// ErrNotFound.
func (s *LeaderboardService) ScoredLeaderboard(ctx context.Context, gameID, start, end int64) (ScoredLeaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.ScoredLeaderboard")
	defer span.End()

	if gameID <= 0 {
		return ScoredLeaderboard{}, fmt.Errorf("%w: game id must be positive", ErrInvalidInput)
	}
	if start < 1 || end < start {
		return ScoredLeaderboard{}, fmt.Errorf("%w: rank window [%d, %d] is invalid", ErrInvalidInput, start, end)
	}

	var gameName string
	var entries []ranking.Entry

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		name, found, err := s.gameNames.Resolve(ctx, gameID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: game=%d", ErrNotFound, gameID)
		}
		gameName = name
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.index.TopRange(ctx, gameID, start-1, end-1, true)
		if err != nil {
			return classifyCacheErr(err, "read leaderboard window")
		}
		entries = rows
		return nil
	})
	if err := p.Wait(); err != nil {
		return ScoredLeaderboard{}, err
	}

	if len(entries) == 0 {
		return ScoredLeaderboard{}, fmt.Errorf("%w: game=%d has no ranked scores in [%d, %d]", ErrNotFound, gameID, start, end)
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.UserID)
	}
	names, err := s.userNames.ResolveMany(ctx, ids)
	if err != nil {
		return ScoredLeaderboard{}, err
	}

	out := ScoredLeaderboard{
		GameID:   gameID,
		GameName: gameName,
		Entries:  make([]LeaderboardEntry, 0, len(entries)),
	}
	for n, entry := range entries {
		out.Entries = append(out.Entries, LeaderboardEntry{
			Rank:     start + int64(n),
			UserID:   entry.UserID,
			Username: names[entry.UserID],
			Score:    entry.Score,
		})
	}
	return out, nil
}

// ParticipantRankings returns the user's rank in every game where they
// hold an entry, ordered by game id. Games whose name resolves nowhere
// are dropped with a warning rather than failing the whole report.
func (s *LeaderboardService) ParticipantRankings(ctx context.Context, userID int64) ([]ParticipantRanking, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.ParticipantRankings")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}

	var ranks map[int64]int64

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		_, found, err := s.userNames.Resolve(ctx, userID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: user=%d", ErrNotFound, userID)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		got, err := s.index.AllGameRanks(ctx, userID)
		if err != nil {
			return classifyCacheErr(err, "scan participant rankings")
		}
		ranks = got
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	gameIDs := make([]int64, 0, len(ranks))
	for gameID := range ranks {
		gameIDs = append(gameIDs, gameID)
	}
	sort.Slice(gameIDs, func(i, j int) bool { return gameIDs[i] < gameIDs[j] })

	names, err := s.gameNames.ResolveMany(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ParticipantRanking, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		name, ok := names[gameID]
		if !ok {
			s.log.WarnContext(ctx, "dropping ranked game with unresolvable name",
				"game_id", gameID, "user_id", userID)
			continue
		}
		out = append(out, ParticipantRanking{
			GameID:   gameID,
			GameName: name,
			Rank:     ranks[gameID],
		})
	}
	return out, nil
}

// RankAndScore returns one participant's position in one game.
func (s *LeaderboardService) RankAndScore(ctx context.Context, userID, gameID int64) (ParticipantGameRank, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.RankAndScore")
	defer span.End()

	if userID <= 0 {
		return ParticipantGameRank{}, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	if gameID <= 0 {
		return ParticipantGameRank{}, fmt.Errorf("%w: game id must be positive", ErrInvalidInput)
	}

	var gameName, username string
	var ranked ranking.RankedScore

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		name, found, err := s.gameNames.Resolve(ctx, gameID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: game=%d", ErrNotFound, gameID)
		}
		gameName = name
		return nil
	})
	p.Go(func(ctx context.Context) error {
		name, found, err := s.userNames.Resolve(ctx, userID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: user=%d", ErrNotFound, userID)
		}
		username = name
		return nil
	})
	p.Go(func(ctx context.Context) error {
		got, found, err := s.index.RankAndScore(ctx, gameID, userID)
		if err != nil {
			return classifyCacheErr(err, "read rank and score")
		}
		if !found {
			return fmt.Errorf("%w: user=%d has no score in game=%d", ErrNotFound, userID, gameID)
		}
		ranked = got
		return nil
	})
	if err := p.Wait(); err != nil {
		return ParticipantGameRank{}, err
	}

	return ParticipantGameRank{
		GameID:   gameID,
		GameName: gameName,
		UserID:   userID,
		Username: username,
		Rank:     ranked.Rank,
		Score:    ranked.Score,
	}, nil
}

// TopPlayerReport returns the top ten profiles of one game. Profiles
// come back from the durable store in no particular order and are
// re-associated with their rank position by user id.
func (s *LeaderboardService) TopPlayerReport(ctx context.Context, gameID int64) ([]TopPlayer, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.TopPlayerReport")
	defer span.End()

	if gameID <= 0 {
		return nil, fmt.Errorf("%w: game id must be positive", ErrInvalidInput)
	}

	if _, found, err := s.gameNames.Resolve(ctx, gameID); err != nil {
		return nil, err
	} else if !found {
		return nil, fmt.Errorf("%w: game=%d", ErrNotFound, gameID)
	}

	entries, err := s.index.TopRange(ctx, gameID, 0, topPlayerReportSize-1, false)
	if err != nil {
		return nil, classifyCacheErr(err, "read top players")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: game=%d has no ranked scores", ErrNotFound, gameID)
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.UserID)
	}
	profiles, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get top player profiles: %w", err)
	}
	byID := make(map[int64]user.User, len(profiles))
	for _, profile := range profiles {
		byID[profile.ID] = profile
	}

	out := make([]TopPlayer, 0, len(entries))
	for n, entry := range entries {
		row := TopPlayer{
			Rank:   int64(n) + 1,
			UserID: entry.UserID,
		}
		profile, ok := byID[entry.UserID]
		if !ok {
			s.log.WarnContext(ctx, "ranked user missing from durable store",
				"user_id", entry.UserID, "game_id", gameID)
		} else {
			row.Username = profile.Username
			row.Country = profile.Country
			row.DateJoined = profile.DateAdded
		}
		out = append(out, row)
	}
	return out, nil
}
