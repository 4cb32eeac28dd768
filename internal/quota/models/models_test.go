package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "poagate/pkg/domain"
	dErrors "poagate/pkg/domain-errors"
)

var now = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func TestNewState(t *testing.T) {
	t.Run("valid inputs", func(t *testing.T) {
		userID := id.NewUserID()
		state, err := NewState(userID, TierFree, RoleUser, now)
		require.NoError(t, err)

		assert.Equal(t, userID, state.UserID)
		assert.Zero(t, state.ValidationsThisMonth)
		assert.Equal(t, time.June, state.LastResetMonth)
		assert.Equal(t, 2024, state.LastResetYear)
		assert.Zero(t, state.Version)
	})

	t.Run("nil user id", func(t *testing.T) {
		_, err := NewState(id.UserID{}, TierFree, RoleUser, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("invalid tier", func(t *testing.T) {
		_, err := NewState(id.NewUserID(), Tier("gold"), RoleUser, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := NewState(id.NewUserID(), TierFree, Role("owner"), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestNeedsReset(t *testing.T) {
	state, err := NewState(id.NewUserID(), TierFree, RoleUser, now)
	require.NoError(t, err)

	assert.False(t, state.NeedsReset(now))
	assert.False(t, state.NeedsReset(now.AddDate(0, 0, 10)), "same month")
	assert.True(t, state.NeedsReset(now.AddDate(0, 1, 0)), "next month")
	assert.True(t, state.NeedsReset(now.AddDate(1, 0, 0)), "same month next year")
}

func TestApplyReset(t *testing.T) {
	state, err := NewState(id.NewUserID(), TierFree, RoleUser, now)
	require.NoError(t, err)
	state.ValidationsThisMonth = 5

	july := now.AddDate(0, 1, 0)
	state.ApplyReset(july)

	assert.Zero(t, state.ValidationsThisMonth)
	assert.Equal(t, time.July, state.LastResetMonth)
	assert.False(t, state.NeedsReset(july))
}

func TestExempt(t *testing.T) {
	cases := []struct {
		tier Tier
		role Role
		want bool
	}{
		{TierFree, RoleUser, false},
		{TierFree, RoleAdmin, true},
		{TierProfessional, RoleUser, true},
		{TierEnterprise, RoleUser, true},
	}
	for _, tc := range cases {
		state, err := NewState(id.NewUserID(), tc.tier, tc.role, now)
		require.NoError(t, err)
		assert.Equal(t, tc.want, state.Exempt(), "tier=%s role=%s", tc.tier, tc.role)
	}
}

func TestClone(t *testing.T) {
	state, err := NewState(id.NewUserID(), TierFree, RoleUser, now)
	require.NoError(t, err)

	clone := state.Clone()
	clone.ValidationsThisMonth = 99
	assert.Zero(t, state.ValidationsThisMonth)
}

func TestQuotaExceededError(t *testing.T) {
	err := &QuotaExceededError{Tier: TierFree, Limit: 5, Used: 5}
	assert.Equal(t, "validation quota exceeded: 5 of 5 used on free tier", err.Error())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeQuotaExceeded))
}
