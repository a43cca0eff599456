package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/game-leaderboard/internal/usecase"
)

const (
	defaultLeaderboardStart = 1
	defaultLeaderboardEnd   = 10
)

type Handler struct {
	userService        *usecase.UserService
	gameService        *usecase.GameService
	scoreService       *usecase.ScoreService
	leaderboardService *usecase.LeaderboardService
	rebuildService     *usecase.RebuildService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	userService *usecase.UserService,
	gameService *usecase.GameService,
	scoreService *usecase.ScoreService,
	leaderboardService *usecase.LeaderboardService,
	rebuildService *usecase.RebuildService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		userService:        userService,
		gameService:        gameService,
		scoreService:       scoreService,
		leaderboardService: leaderboardService,
		rebuildService:     rebuildService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Country  string `json:"country" validate:"omitempty,max=64"`
}

type userDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Country   string    `json:"country,omitempty"`
	DateAdded time.Time `json:"date_added"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterUser")
	defer span.End()

	var req registerUserRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.userService.Register(ctx, usecase.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Country:  req.Country,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register user failed", "username", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, userDTO{
		ID:        created.ID,
		Username:  created.Username,
		Email:     created.Email,
		Country:   created.Country,
		DateAdded: created.DateAdded,
	})
}

type createGameRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type gameDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	DateAdded time.Time `json:"date_added,omitzero"`
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGame")
	defer span.End()

	var req createGameRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.gameService.Create(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "create game failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameDTO{
		ID:        created.ID,
		Name:      created.Name,
		DateAdded: created.DateAdded,
	})
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	games, err := h.gameService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameDTO{ID: g.ID, Name: g.Name, DateAdded: g.DateAdded})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type submitScoreRequest struct {
	GameID int64   `json:"game_id" validate:"required,gt=0"`
	Score  float64 `json:"score"`
}

type submitScoreDTO struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	GameID             int64     `json:"game_id"`
	Score              float64   `json:"score"`
	DateAdded          time.Time `json:"date_added"`
	LeaderboardUpdated bool      `json:"leaderboard_updated"`
}

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitScore")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitScoreRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoreService.Submit(ctx, usecase.SubmitScoreInput{
		UserID: userID,
		GameID: req.GameID,
		Value:  req.Score,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit score failed",
			"user_id", userID, "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, submitScoreDTO{
		ID:                 result.Score.ID,
		UserID:             result.Score.UserID,
		GameID:             result.Score.GameID,
		Score:              result.Score.Value,
		DateAdded:          result.Score.DateAdded,
		LeaderboardUpdated: !result.Degraded,
	})
}

type leaderboardEntryDTO struct {
	Rank     int64   `json:"rank"`
	UserID   int64   `json:"user_id"`
	Username string  `json:"username,omitempty"`
	Score    float64 `json:"score"`
}

type leaderboardDTO struct {
	GameID   int64                 `json:"game_id"`
	GameName string                `json:"game_name"`
	Entries  []leaderboardEntryDTO `json:"entries"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	start, err := queryInt(r, "start", defaultLeaderboardStart)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	end, err := queryInt(r, "end", defaultLeaderboardEnd)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.leaderboardService.ScoredLeaderboard(ctx, gameID, start, end)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	entries := make([]leaderboardEntryDTO, 0, len(board.Entries))
	for _, entry := range board.Entries {
		entries = append(entries, leaderboardEntryDTO{
			Rank:     entry.Rank,
			UserID:   entry.UserID,
			Username: entry.Username,
			Score:    entry.Score,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardDTO{
		GameID:   board.GameID,
		GameName: board.GameName,
		Entries:  entries,
	})
}

type topPlayerDTO struct {
	Rank       int64     `json:"rank"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Country    string    `json:"country,omitempty"`
	DateJoined time.Time `json:"date_joined,omitzero"`
}

func (h *Handler) GetTopPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTopPlayers")
	defer span.End()

	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.leaderboardService.TopPlayerReport(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get top players failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]topPlayerDTO, 0, len(report))
	for _, row := range report {
		items = append(items, topPlayerDTO{
			Rank:       row.Rank,
			UserID:     row.UserID,
			Username:   row.Username,
			Country:    row.Country,
			DateJoined: row.DateJoined,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type participantRankingDTO struct {
	GameID   int64  `json:"game_id"`
	GameName string `json:"game_name"`
	Rank     int64  `json:"rank"`
}

func (h *Handler) GetUserRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserRankings")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rankings, err := h.leaderboardService.ParticipantRankings(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user rankings failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]participantRankingDTO, 0, len(rankings))
	for _, row := range rankings {
		items = append(items, participantRankingDTO{
			GameID:   row.GameID,
			GameName: row.GameName,
			Rank:     row.Rank,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type participantGameRankDTO struct {
	GameID   int64   `json:"game_id"`
	GameName string  `json:"game_name"`
	UserID   int64   `json:"user_id"`
	Username string  `json:"username,omitempty"`
	Rank     int64   `json:"rank"`
	Score    float64 `json:"score"`
}

func (h *Handler) GetUserGameRank(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserGameRank")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	row, err := h.leaderboardService.RankAndScore(ctx, userID, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user game rank failed",
			"user_id", userID, "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, participantGameRankDTO{
		GameID:   row.GameID,
		GameName: row.GameName,
		UserID:   row.UserID,
		Username: row.Username,
		Rank:     row.Rank,
		Score:    row.Score,
	})
}

type rebuildRequest struct {
	MaxWorkers int `json:"max_workers" validate:"omitempty,gte=0,lte=1024"`
}

func (h *Handler) RunRebuild(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRebuild")
	defer span.End()

	var req rebuildRequest
	if r.Body != nil && r.ContentLength != 0 {
		decoder := jsoniter.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
			return
		}
		if err := h.validateRequest(ctx, req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	result, err := h.rebuildService.Rebuild(ctx, usecase.RebuildInput{MaxWorkers: req.MaxWorkers})
	if err != nil {
		h.logger.ErrorContext(ctx, "index rebuild failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
