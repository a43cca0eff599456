package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/game-leaderboard/internal/domain/game"
	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/domain/score"
	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
)

type stubNameCache struct {
	mu       sync.Mutex
	names    map[int64]string
	getErr   error
	setErr   error
	setCalls int
}

func newStubNameCache() *stubNameCache {
	return &stubNameCache{names: make(map[int64]string)}
}

func (c *stubNameCache) Set(_ context.Context, id int64, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	c.names[id] = name
	return nil
}

func (c *stubNameCache) Get(_ context.Context, id int64) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	name, ok := c.names[id]
	return name, ok, nil
}

func (c *stubNameCache) GetMany(_ context.Context, ids []int64) ([]ranking.NameHit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := make([]ranking.NameHit, len(ids))
	for n, id := range ids {
		out[n] = ranking.NameHit{ID: id}
		if name, ok := c.names[id]; ok {
			out[n].Name = name
			out[n].Found = true
		}
	}
	return out, nil
}

func (c *stubNameCache) SetMany(_ context.Context, pairs []ranking.NamePair) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	for _, p := range pairs {
		c.names[p.ID] = p.Name
	}
	return nil
}

// stubIndex keeps one score map per game and derives ranks the same
// way the real index does: descending score, descending user id on
// ties.
type stubIndex struct {
	mu        sync.Mutex
	scores    map[int64]map[int64]float64
	submitErr error
	readErr   error
	submits   int
}

func newStubIndex() *stubIndex {
	return &stubIndex{scores: make(map[int64]map[int64]float64)}
}

func (i *stubIndex) Submit(_ context.Context, gameID, userID int64, value float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.submits++
	if i.submitErr != nil {
		return i.submitErr
	}
	if i.scores[gameID] == nil {
		i.scores[gameID] = make(map[int64]float64)
	}
	i.scores[gameID][userID] = value
	return nil
}

func (i *stubIndex) ordered(gameID int64) []ranking.Entry {
	board := i.scores[gameID]
	out := make([]ranking.Entry, 0, len(board))
	for userID, value := range board {
		out = append(out, ranking.Entry{UserID: userID, Score: value})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].UserID > out[b].UserID
	})
	return out
}

func (i *stubIndex) RankAndScore(_ context.Context, gameID, userID int64) (ranking.RankedScore, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.readErr != nil {
		return ranking.RankedScore{}, false, i.readErr
	}
	for n, entry := range i.ordered(gameID) {
		if entry.UserID == userID {
			return ranking.RankedScore{Rank: int64(n) + 1, Score: entry.Score}, true, nil
		}
	}
	return ranking.RankedScore{}, false, nil
}

func (i *stubIndex) TopRange(_ context.Context, gameID, start, end int64, withScores bool) ([]ranking.Entry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.readErr != nil {
		return nil, i.readErr
	}
	all := i.ordered(gameID)
	if start >= int64(len(all)) {
		return nil, nil
	}
	if end >= int64(len(all)) {
		end = int64(len(all)) - 1
	}
	out := make([]ranking.Entry, 0, end-start+1)
	for _, entry := range all[start : end+1] {
		if !withScores {
			entry.Score = 0
		}
		out = append(out, entry)
	}
	return out, nil
}

func (i *stubIndex) AllGameRanks(_ context.Context, userID int64) (map[int64]int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.readErr != nil {
		return nil, i.readErr
	}
	out := make(map[int64]int64)
	for gameID := range i.scores {
		for n, entry := range i.ordered(gameID) {
			if entry.UserID == userID {
				out[gameID] = int64(n) + 1
			}
		}
	}
	return out, nil
}

type stubUserRepo struct {
	mu          sync.Mutex
	users       map[int64]user.User
	nextID      int64
	createErr   error
	getErr      error
	createCalls int
}

func newStubUserRepo(seed ...user.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[int64]user.User), nextID: 1}
	for _, item := range seed {
		r.users[item.ID] = item
		if item.ID >= r.nextID {
			r.nextID = item.ID + 1
		}
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, item user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return user.User{}, r.createErr
	}
	for _, existing := range r.users {
		if existing.Username == item.Username {
			return user.User{}, user.ErrUsernameTaken
		}
	}
	item.ID = r.nextID
	r.nextID++
	r.users[item.ID] = item
	return item, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, userID int64) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return user.User{}, false, r.getErr
	}
	item, ok := r.users[userID]
	return item, ok, nil
}

// GetByIDs deliberately returns rows ordered by descending id so tests
// catch any caller that zips results positionally.
func (r *stubUserRepo) GetByIDs(_ context.Context, userIDs []int64) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make([]user.User, 0, len(userIDs))
	for _, id := range userIDs {
		if item, ok := r.users[id]; ok {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.users {
		if item.Username == username {
			return item, true, nil
		}
	}
	return user.User{}, false, nil
}

type stubGameRepo struct {
	mu     sync.Mutex
	games  map[int64]string
	nextID int64
	err    error
}

func newStubGameRepo(seed map[int64]string) *stubGameRepo {
	r := &stubGameRepo{games: make(map[int64]string), nextID: 1}
	for id, name := range seed {
		r.games[id] = name
		if id >= r.nextID {
			r.nextID = id + 1
		}
	}
	return r
}

func (r *stubGameRepo) Create(_ context.Context, name string) (game.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return game.Game{}, r.err
	}
	for _, existing := range r.games {
		if existing == name {
			return game.Game{}, game.ErrNameTaken
		}
	}
	id := r.nextID
	r.nextID++
	r.games[id] = name
	return game.Game{ID: id, Name: name}, nil
}

func (r *stubGameRepo) GetByID(_ context.Context, gameID int64) (game.Game, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return game.Game{}, false, r.err
	}
	name, ok := r.games[gameID]
	return game.Game{ID: gameID, Name: name}, ok, nil
}

func (r *stubGameRepo) List(_ context.Context) (map[int64]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[int64]string, len(r.games))
	for id, name := range r.games {
		out[id] = name
	}
	return out, nil
}

type stubScoreRepo struct {
	mu        sync.Mutex
	rows      []score.Score
	nextID    int64
	createErr error
	latestErr error
}

func newStubScoreRepo() *stubScoreRepo {
	return &stubScoreRepo{nextID: 1}
}

func (r *stubScoreRepo) Create(_ context.Context, userID, gameID int64, value float64) (score.Score, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return score.Score{}, r.createErr
	}
	row := score.Score{ID: r.nextID, UserID: userID, GameID: gameID, Value: value}
	r.nextID++
	r.rows = append(r.rows, row)
	return row, nil
}

func (r *stubScoreRepo) LatestByGame(_ context.Context, gameID int64) ([]score.Latest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	latest := make(map[int64]float64)
	for _, row := range r.rows {
		if row.GameID == gameID {
			latest[row.UserID] = row.Value
		}
	}
	out := make([]score.Latest, 0, len(latest))
	for userID, value := range latest {
		out = append(out, score.Latest{UserID: userID, Value: value})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UserID < out[b].UserID })
	return out, nil
}
