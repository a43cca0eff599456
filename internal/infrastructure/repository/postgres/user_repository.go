package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/game-leaderboard/internal/domain/user"
)

type UserRepository struct {
	db *sqlx.DB
}

const userSelectColumns = `id, username, email, hashed_password, country, is_active, is_admin, date_added`

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, item user.User) (user.User, error) {
	const query = `
INSERT INTO users (username, email, hashed_password, country, is_active, is_admin)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, date_added`

	created := item
	err := r.db.QueryRowxContext(ctx, query,
		item.Username,
		item.Email,
		item.HashedPassword,
		item.Country,
		item.IsActive,
		item.IsAdmin,
	).Scan(&created.ID, &created.DateAdded)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, fmt.Errorf("%w: %s", user.ErrUsernameTaken, item.Username)
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (user.User, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userSelectColumns)

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user by id: %w", err)
	}

	return userFromRow(row), true, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, userIDs []int64) ([]user.User, error) {
	if len(userIDs) == 0 {
		return []user.User{}, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM users WHERE id IN (?)`, userSelectColumns),
		userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("build select users by ids query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select users by ids: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user.User, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userSelectColumns)

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user by username: %w", err)
	}

	return userFromRow(row), true, nil
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:             row.ID,
		Username:       row.Username,
		Email:          row.Email,
		HashedPassword: row.HashedPassword,
		Country:        row.Country,
		IsActive:       row.IsActive,
		IsAdmin:        row.IsAdmin,
		DateAdded:      row.DateAdded,
	}
}
