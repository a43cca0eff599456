package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/riskibarqy/game-leaderboard/internal/domain/ranking"
	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
)

type RegisterUserInput struct {
	Username string
	Email    string
	Password string
	Country  string
}

type UserService struct {
	userRepo  user.Repository
	nameCache ranking.NameCache
	log       *logging.Logger
}

func NewUserService(userRepo user.Repository, nameCache ranking.NameCache, log *logging.Logger) *UserService {
	if log == nil {
		log = logging.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		nameCache: nameCache,
		log:       log,
	}
}

// Register inserts the profile into the durable store first; the name
// cache write that follows is best effort and never fails the call.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.Register")
	defer span.End()

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.Country = strings.TrimSpace(input.Country)

	if input.Username == "" {
		return user.User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if input.Email == "" {
		return user.User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return user.User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	if _, taken, err := s.userRepo.GetByUsername(ctx, input.Username); err != nil {
		return user.User{}, fmt.Errorf("check username: %w", err)
	} else if taken {
		return user.User{}, fmt.Errorf("%w: username=%s", ErrConflict, input.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, user.User{
		Username:       input.Username,
		Email:          input.Email,
		HashedPassword: string(hash),
		Country:        input.Country,
		IsActive:       true,
	})
	if err != nil {
		// Catches a registration racing past the pre-check above.
		if errors.Is(err, user.ErrUsernameTaken) {
			return user.User{}, fmt.Errorf("%w: username=%s", ErrConflict, input.Username)
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.nameCache.Set(ctx, created.ID, created.Username); err != nil {
		s.log.WarnContext(ctx, "user name cache write failed after registration",
			"user_id", created.ID, "error", err)
	}

	return created, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (user.User, error) {
	if userID <= 0 {
		return user.User{}, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}

	item, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return user.User{}, fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}
	return item, nil
}
