package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/models"
)

// UserStore persists trading accounts in the user table, one record per
// username. Money fields are stored as decimal strings so nothing is lost in
// serialization.
type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
	}
}

type userRecord struct {
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role,omitempty"`
	Cash         string    `json:"cash"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserRecord(user *models.User) *userRecord {
	return &userRecord{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Cash:         user.Cash.String(),
		CreatedAt:    user.CreatedAt,
	}
}

func (r *userRecord) toModel() (*models.User, error) {
	cash, err := decimal.NewFromString(r.Cash)
	if err != nil {
		return nil, fmt.Errorf("invalid cash value %q for user %s: %w", r.Cash, r.Username, err)
	}
	return &models.User{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Cash:         cash,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func (s *UserStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	record, err := surrealdb.Select[userRecord](ctx, s.db, surrealmodels.NewRecordID("user", username))
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if record == nil || record.Username == "" {
		return nil, fmt.Errorf("user '%s' not found", username)
	}
	return record.toModel()
}

func (s *UserStore) SaveUser(ctx context.Context, user *models.User) error {
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID("user", user.Username),
		"record": toUserRecord(user),
	}

	if _, err := surrealdb.Query[[]userRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	sql := "UPDATE $rid SET password_hash = $hash"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID("user", username),
		"hash": passwordHash,
	}

	if _, err := surrealdb.Query[[]userRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *UserStore) DeleteUser(ctx context.Context, username string) error {
	_, err := surrealdb.Delete[userRecord](ctx, s.db, surrealmodels.NewRecordID("user", username))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]string, error) {
	sql := "SELECT username FROM user ORDER BY username"

	results, err := surrealdb.Query[[]userRecord](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var usernames []string
	if results != nil && len(*results) > 0 {
		for _, record := range (*results)[0].Result {
			usernames = append(usernames, record.Username)
		}
	}
	return usernames, nil
}
