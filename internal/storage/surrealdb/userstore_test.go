package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/papertrade/internal/models"
)

func newTestUser(username, cash string) *models.User {
	return &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Role:         "trader",
		Cash:         decimal.RequireFromString(cash),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestUserStore_SaveAndGet(t *testing.T) {
	mgr := testManager(t)
	ctx := context.Background()
	store := mgr.Users()

	user := newTestUser("alice", "10000.00")
	require.NoError(t, store.SaveUser(ctx, user))

	got, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "trader", got.Role)
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("10000.00")),
		"cash = %s, want 10000.00", got.Cash)
}

func TestUserStore_GetMissing(t *testing.T) {
	mgr := testManager(t)

	_, err := mgr.Users().GetUser(context.Background(), "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUserStore_SaveOverwrites(t *testing.T) {
	mgr := testManager(t)
	ctx := context.Background()
	store := mgr.Users()

	require.NoError(t, store.SaveUser(ctx, newTestUser("alice", "10000.00")))

	updated := newTestUser("alice", "9500.00")
	require.NoError(t, store.SaveUser(ctx, updated))

	got, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("9500.00")))
}

func TestUserStore_UpdatePassword(t *testing.T) {
	mgr := testManager(t)
	ctx := context.Background()
	store := mgr.Users()

	require.NoError(t, store.SaveUser(ctx, newTestUser("alice", "10000.00")))
	require.NoError(t, store.UpdatePassword(ctx, "alice", "$2a$10$newhash"))

	got, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", got.PasswordHash)
	assert.True(t, got.Cash.Equal(decimal.RequireFromString("10000.00")),
		"password change must not touch cash")
}

func TestUserStore_Delete(t *testing.T) {
	mgr := testManager(t)
	ctx := context.Background()
	store := mgr.Users()

	require.NoError(t, store.SaveUser(ctx, newTestUser("alice", "10000.00")))
	require.NoError(t, store.DeleteUser(ctx, "alice"))

	_, err := store.GetUser(ctx, "alice")
	require.Error(t, err)
}

func TestUserStore_ListUsers(t *testing.T) {
	mgr := testManager(t)
	ctx := context.Background()
	store := mgr.Users()

	require.NoError(t, store.SaveUser(ctx, newTestUser("carol", "10000.00")))
	require.NoError(t, store.SaveUser(ctx, newTestUser("alice", "10000.00")))
	require.NoError(t, store.SaveUser(ctx, newTestUser("bob", "10000.00")))

	names, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}
