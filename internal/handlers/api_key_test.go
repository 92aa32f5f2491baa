package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
)

func TestCreateAPIKey(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "display-owner", models.RoleUser)
	keys := NewAPIKeyHandler(env.db, env.authHandler)

	req := &CreateAPIKeyInput{AuthInput: env.session(t, owner)}
	req.Body.Name = "lobby-display"
	created, err := keys.HandleCreate(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.Body.Key, "cek_"))
	assert.Equal(t, "lobby-display", created.Body.Name)

	// The fresh key authenticates as its owner on the X-API-KEY path.
	got, err := env.authHandler.Authorize(context.Background(), auth.AuthInput{APIKey: created.Body.Key})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
}

func TestCreateAPIKeyValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "display-owner", models.RoleUser)
	keys := NewAPIKeyHandler(env.db, env.authHandler)

	t.Run("name required", func(t *testing.T) {
		req := &CreateAPIKeyInput{AuthInput: env.session(t, owner)}
		_, err := keys.HandleCreate(context.Background(), req)
		assert.Equal(t, 400, statusOf(t, err))
	})

	t.Run("expiry must be in the future", func(t *testing.T) {
		req := &CreateAPIKeyInput{AuthInput: env.session(t, owner)}
		req.Body.Name = "stale"
		past := time.Now().Add(-time.Hour)
		req.Body.ExpiresAt = &past
		_, err := keys.HandleCreate(context.Background(), req)
		assert.Equal(t, 400, statusOf(t, err))
	})
}

func TestListAPIKeysMasksSecrets(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "display-owner", models.RoleUser)
	other := env.createUser(t, "someone-else", models.RoleUser)
	keys := NewAPIKeyHandler(env.db, env.authHandler)

	req := &CreateAPIKeyInput{AuthInput: env.session(t, owner)}
	req.Body.Name = "lobby-display"
	created, err := keys.HandleCreate(context.Background(), req)
	require.NoError(t, err)

	list, err := keys.HandleList(context.Background(), &ListAPIKeysInput{AuthInput: env.session(t, owner)})
	require.NoError(t, err)
	require.Len(t, list.Body, 1)
	masked := list.Body[0].Key
	assert.True(t, strings.HasPrefix(masked, "cek_..."))
	assert.Equal(t, created.Body.Key[len(created.Body.Key)-4:], masked[len(masked)-4:])
	assert.NotEqual(t, created.Body.Key, masked)

	// Keys are scoped to their owner.
	otherList, err := keys.HandleList(context.Background(), &ListAPIKeysInput{AuthInput: env.session(t, other)})
	require.NoError(t, err)
	assert.Empty(t, otherList.Body)
}

func TestDeleteAPIKeyOnlyOwn(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "display-owner", models.RoleUser)
	other := env.createUser(t, "someone-else", models.RoleUser)
	keys := NewAPIKeyHandler(env.db, env.authHandler)

	req := &CreateAPIKeyInput{AuthInput: env.session(t, owner)}
	req.Body.Name = "lobby-display"
	created, err := keys.HandleCreate(context.Background(), req)
	require.NoError(t, err)

	// Someone else's delete is a silent no-op on this key.
	_, err = keys.HandleDelete(context.Background(), &DeleteAPIKeyInput{
		AuthInput: env.session(t, other),
		ID:        created.Body.ID,
	})
	require.NoError(t, err)
	var count int64
	require.NoError(t, env.db.Model(&models.APIKey{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = keys.HandleDelete(context.Background(), &DeleteAPIKeyInput{
		AuthInput: env.session(t, owner),
		ID:        created.Body.ID,
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.APIKey{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
