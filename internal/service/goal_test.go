package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/stride/internal/model"
)

func newTestGoalService(plan string) (*GoalService, *fakeGoalRepo) {
	goals := newFakeGoalRepo()
	subs := newTestSubscriptionService(newFakeSubscriptionRepo(), "u1", plan)
	return NewGoalService(goals, subs), goals
}

func TestGoalQuotaFreePlan(t *testing.T) {
	svc, _ := newTestGoalService(model.SubscriptionPlanFree)

	_, err := svc.Create("u1", "Run daily", "")
	require.NoError(t, err)
	_, err = svc.Create("u1", "Read more", "")
	require.NoError(t, err)

	_, err = svc.Create("u1", "One too many", "")
	assert.ErrorIs(t, err, ErrGoalLimitReached)
}

func TestGoalQuotaStandardPlan(t *testing.T) {
	svc, _ := newTestGoalService(model.SubscriptionPlanStandard)

	for i := 0; i < 10; i++ {
		_, err := svc.Create("u1", "Goal", "")
		require.NoError(t, err)
	}
	_, err := svc.Create("u1", "Eleventh", "")
	assert.ErrorIs(t, err, ErrGoalLimitReached)
}

func TestGoalQuotaPremiumUnlimited(t *testing.T) {
	svc, _ := newTestGoalService(model.SubscriptionPlanPremium)

	for i := 0; i < 50; i++ {
		_, err := svc.Create("u1", "Goal", "")
		require.NoError(t, err)
	}

	remaining, err := svc.RemainingQuota("u1")
	require.NoError(t, err)
	assert.Equal(t, model.GoalLimitUnlimited, remaining)
}

func TestGoalQuotaIgnoresCompletedGoals(t *testing.T) {
	svc, _ := newTestGoalService(model.SubscriptionPlanFree)

	first, err := svc.Create("u1", "First", "")
	require.NoError(t, err)
	_, err = svc.Create("u1", "Second", "")
	require.NoError(t, err)

	done := true
	_, err = svc.Update("u1", first.ID, GoalUpdate{Completed: &done})
	require.NoError(t, err)

	// Completing one frees a quota slot.
	_, err = svc.Create("u1", "Third", "")
	assert.NoError(t, err)
}

func TestGoalDeleteRemovesExactlyOne(t *testing.T) {
	svc, repo := newTestGoalService(model.SubscriptionPlanPremium)

	keep, err := svc.Create("u1", "Keep me", "")
	require.NoError(t, err)
	remove, err := svc.Create("u1", "Remove me", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete("u1", remove.ID))

	assert.Equal(t, 1, repo.deleteCalls, "expected a single delete call")

	goals, err := svc.Goals("u1", "recent")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, keep.ID, goals[0].ID)

	assert.ErrorIs(t, svc.Delete("u1", remove.ID), ErrGoalNotFound)
}

func TestGoalDeleteIsScopedToOwner(t *testing.T) {
	svc, _ := newTestGoalService(model.SubscriptionPlanPremium)

	goal, err := svc.Create("u1", "Mine", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete("intruder", goal.ID), ErrGoalNotFound)
}

func TestGoalValidation(t *testing.T) {
	svc, _ := newTestGoalService(model.SubscriptionPlanFree)

	_, err := svc.Create("u1", "   ", "")
	assert.ErrorIs(t, err, ErrGoalTitleEmpty)

	goal, err := svc.Create("u1", "Valid", "")
	require.NoError(t, err)

	bad := 150
	_, err = svc.Update("u1", goal.ID, GoalUpdate{Progress: &bad})
	assert.ErrorIs(t, err, ErrInvalidProgress)

	full := 100
	updated, err := svc.Update("u1", goal.ID, GoalUpdate{Progress: &full})
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, updated.Status)
}
