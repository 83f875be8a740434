package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/stride/internal/model"
)

func newTestWizard(plan string) (*WizardService, *fakeGoalRepo, *fakeProfileRepo) {
	profiles := newFakeProfileRepo()
	_ = profiles.Create(&model.Profile{
		ID:             "p1",
		UserID:         "u1",
		Timezone:       "UTC",
		OnboardingStep: model.OnboardingStepWelcome,
	})
	goals := newFakeGoalRepo()
	subs := newTestSubscriptionService(newFakeSubscriptionRepo(), "u1", plan)
	return NewWizardService(profiles, goals, subs), goals, profiles
}

func addGoals(t *testing.T, goals *fakeGoalRepo, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, goals.Create(&model.Goal{
			ID:     string(rune('a' + i)),
			UserID: "u1",
			Title:  "Goal",
			Status: model.GoalStatusActive,
		}))
	}
}

func TestWizardBlocksGoalStepWithoutGoals(t *testing.T) {
	wizard, goals, _ := newTestWizard(model.SubscriptionPlanFree)

	state, err := wizard.Next("u1") // welcome -> goals
	require.NoError(t, err)
	assert.Equal(t, model.OnboardingStepGoals, state.Step)

	_, err = wizard.Next("u1")
	assert.ErrorIs(t, err, ErrWizardNeedsGoal)

	addGoals(t, goals, 1)
	state, err = wizard.Next("u1")
	require.NoError(t, err)
	assert.Equal(t, model.OnboardingStepPreferences, state.Step)
}

func TestWizardEnforcesPlanLimitOnAdvance(t *testing.T) {
	wizard, goals, _ := newTestWizard(model.SubscriptionPlanFree)

	_, err := wizard.Next("u1") // welcome -> goals
	require.NoError(t, err)

	// Three active goals on a free plan (e.g. created before a
	// downgrade) must not pass the goals step.
	addGoals(t, goals, 3)
	_, err = wizard.Next("u1")
	assert.ErrorIs(t, err, ErrGoalLimitReached)
}

func TestWizardFullFlow(t *testing.T) {
	wizard, goals, profiles := newTestWizard(model.SubscriptionPlanStandard)
	addGoals(t, goals, 2)

	steps := []string{
		model.OnboardingStepGoals,
		model.OnboardingStepPreferences,
		model.OnboardingStepConfirm,
	}
	for _, want := range steps {
		state, err := wizard.Next("u1")
		require.NoError(t, err)
		assert.Equal(t, want, state.Step)
	}

	require.NoError(t, wizard.SetPreferences("u1", "Dana", "Europe/Berlin", "08:30"))

	state, err := wizard.Next("u1") // confirm -> done
	require.NoError(t, err)
	assert.True(t, state.Done)
	assert.Equal(t, model.OnboardingStepDone, state.Step)

	profile, err := profiles.ByUserID("u1")
	require.NoError(t, err)
	assert.True(t, profile.IsOnboarded())
	assert.Equal(t, "Dana", profile.Name)
	assert.Equal(t, "Europe/Berlin", profile.Timezone)

	_, err = wizard.Next("u1")
	assert.ErrorIs(t, err, ErrWizardDone)
}

func TestWizardBack(t *testing.T) {
	wizard, _, _ := newTestWizard(model.SubscriptionPlanFree)

	_, err := wizard.Back("u1")
	assert.ErrorIs(t, err, ErrWizardAtFirstStep)

	_, err = wizard.Next("u1") // welcome -> goals
	require.NoError(t, err)

	state, err := wizard.Back("u1")
	require.NoError(t, err)
	assert.Equal(t, model.OnboardingStepWelcome, state.Step)
}

func TestWizardSkip(t *testing.T) {
	wizard, _, profiles := newTestWizard(model.SubscriptionPlanFree)

	state, err := wizard.Skip("u1")
	require.NoError(t, err)
	assert.True(t, state.Done)

	profile, err := profiles.ByUserID("u1")
	require.NoError(t, err)
	assert.True(t, profile.IsOnboarded())

	_, err = wizard.Skip("u1")
	assert.ErrorIs(t, err, ErrWizardDone)
}

func TestWizardPreferencesValidation(t *testing.T) {
	wizard, _, _ := newTestWizard(model.SubscriptionPlanFree)

	assert.Error(t, wizard.SetPreferences("u1", "Dana", "Not/AZone", ""))
	assert.Error(t, wizard.SetPreferences("u1", "Dana", "UTC", "25:99"))
	assert.NoError(t, wizard.SetPreferences("u1", "Dana", "UTC", ""))
}
