package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserStartsActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	email, err := NewEmail("alice@example.com")
	require.NoError(t, err)

	user, event := RegisterUser("u-1", email, now)
	assert.True(t, user.IsActive)
	assert.Equal(t, now, user.CreatedAt)
	assert.Equal(t, UserID("u-1"), event.UserID)
	assert.NoError(t, user.EnsureActive())
}

func TestDisableIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	email, err := NewEmail("alice@example.com")
	require.NoError(t, err)
	user, _ := RegisterUser("u-1", email, now)

	_, ok := user.Disable(now.Add(time.Minute))
	require.True(t, ok)
	assert.False(t, user.IsActive)

	_, ok = user.Disable(now.Add(time.Hour))
	assert.False(t, ok, "second disable must report no transition")
}

func TestEnsureActiveHidesDisabledState(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	email, err := NewEmail("alice@example.com")
	require.NoError(t, err)
	user, _ := RegisterUser("u-1", email, now)
	user.Disable(now)

	// A disabled account answers with the same error as a wrong password.
	assert.ErrorIs(t, user.EnsureActive(), ErrInvalidCredentials)
}
