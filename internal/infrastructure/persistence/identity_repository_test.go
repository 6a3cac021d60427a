package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
}

func TestGormUserRepository(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	// two passwordless customers share a NULL username
	c1, err := identity.NewPasswordlessCustomer("asha@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c1))
	c2, err := identity.NewPasswordlessCustomer("ravi@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c2))

	agent, err := identity.NewDeliveryMan("Kumar", "kumar@example.com", "9876543210", "kumar", "secret1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, agent))
	require.NotZero(t, agent.ID)

	t.Run("lookups are case-insensitive", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "ASHA@example.com")
		require.NoError(t, err)
		assert.Equal(t, c1.ID, got.ID)
		assert.Empty(t, got.Username)

		got, err = repo.FindByUsername(ctx, "Kumar")
		require.NoError(t, err)
		assert.Equal(t, agent.ID, got.ID)
		assert.True(t, got.VerifyPassword("secret1"))
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.ExistsByEmail(ctx, "ravi@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repo.ExistsByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup, err := identity.NewPasswordlessCustomer("asha@example.com")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("by role and ids", func(t *testing.T) {
		agents, err := repo.FindByRole(ctx, identity.RoleDeliveryMan)
		require.NoError(t, err)
		require.Len(t, agents, 1)
		assert.Equal(t, "kumar", agents[0].Username)

		byID, err := repo.FindByIDs(ctx, []int64{c1.ID, agent.ID})
		require.NoError(t, err)
		assert.Len(t, byID, 2)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("update and delete", func(t *testing.T) {
		require.NoError(t, agent.UpdateProfile("Kumar S", "9876500000"))
		require.NoError(t, repo.Update(ctx, agent))
		got, err := repo.FindByID(ctx, agent.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kumar S", got.Name)

		require.NoError(t, repo.Delete(ctx, agent.ID))
		_, err = repo.FindByID(ctx, agent.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, agent.ID), shared.ErrNotFound)
	})
}
