package service

import (
	"errors"
	"time"

	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/validation"
)

var (
	ErrWizardNeedsGoal   = errors.New("select at least one goal to continue")
	ErrWizardDone        = errors.New("onboarding already completed")
	ErrWizardAtFirstStep = errors.New("already at the first step")
	ErrWizardInvalidStep = errors.New("unknown onboarding step")
)

// wizardOrder is the canonical linear flow. Every new account walks
// the same four steps.
var wizardOrder = []string{
	model.OnboardingStepWelcome,
	model.OnboardingStepGoals,
	model.OnboardingStepPreferences,
	model.OnboardingStepConfirm,
}

// WizardState is what the client needs to render the current step.
type WizardState struct {
	Step      string `json:"step"`
	StepIndex int    `json:"step_index"`
	StepCount int    `json:"step_count"`
	GoalCount int    `json:"goal_count"`
	GoalLimit int    `json:"goal_limit"` // -1 = unlimited
	Done      bool   `json:"done"`
}

// WizardService drives the onboarding flow. Step transitions are
// validated here so a client cannot skip the goal requirement by
// posting an arbitrary step.
type WizardService struct {
	profiles repository.ProfileRepository
	goals    repository.GoalRepository
	subs     *SubscriptionService
}

func NewWizardService(
	profiles repository.ProfileRepository,
	goals repository.GoalRepository,
	subs *SubscriptionService,
) *WizardService {
	return &WizardService{profiles: profiles, goals: goals, subs: subs}
}

func stepIndex(step string) int {
	for i, s := range wizardOrder {
		if s == step {
			return i
		}
	}
	return -1
}

func (s *WizardService) State(userID string) (*WizardState, error) {
	profile, err := s.profiles.ByUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.state(userID, profile)
}

func (s *WizardService) state(userID string, profile *model.Profile) (*WizardState, error) {
	goalCount, err := s.goals.CountActive(userID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subs.Subscription(userID)
	if err != nil {
		return nil, err
	}

	step := profile.OnboardingStep
	idx := stepIndex(step)
	if profile.IsOnboarded() {
		step = model.OnboardingStepDone
		idx = len(wizardOrder)
	} else if idx < 0 {
		step = model.OnboardingStepWelcome
		idx = 0
	}

	return &WizardState{
		Step:      step,
		StepIndex: idx,
		StepCount: len(wizardOrder),
		GoalCount: goalCount,
		GoalLimit: sub.GoalLimit(),
		Done:      profile.IsOnboarded(),
	}, nil
}

// Next advances one step. Leaving the goals step requires at least one
// active goal; the goal count must also respect the plan limit, which
// guards against goals created before a downgrade.
func (s *WizardService) Next(userID string) (*WizardState, error) {
	profile, err := s.profiles.ByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile.IsOnboarded() {
		return nil, ErrWizardDone
	}

	idx := stepIndex(profile.OnboardingStep)
	if idx < 0 {
		return nil, ErrWizardInvalidStep
	}

	if profile.OnboardingStep == model.OnboardingStepGoals {
		goalCount, err := s.goals.CountActive(userID)
		if err != nil {
			return nil, err
		}
		if goalCount == 0 {
			return nil, ErrWizardNeedsGoal
		}
		sub, err := s.subs.Subscription(userID)
		if err != nil {
			return nil, err
		}
		if limit := sub.GoalLimit(); limit != model.GoalLimitUnlimited && goalCount > limit {
			return nil, ErrGoalLimitReached
		}
	}

	if idx == len(wizardOrder)-1 {
		return s.complete(userID, profile)
	}

	profile.OnboardingStep = wizardOrder[idx+1]
	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}
	return s.state(userID, profile)
}

// Back moves one step toward welcome. No validation; going back never
// loses goals already created.
func (s *WizardService) Back(userID string) (*WizardState, error) {
	profile, err := s.profiles.ByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile.IsOnboarded() {
		return nil, ErrWizardDone
	}

	idx := stepIndex(profile.OnboardingStep)
	if idx <= 0 {
		return nil, ErrWizardAtFirstStep
	}

	profile.OnboardingStep = wizardOrder[idx-1]
	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}
	return s.state(userID, profile)
}

// SetPreferences stores the preferences step's fields on the profile.
func (s *WizardService) SetPreferences(userID, name, timezone, reminderTime string) error {
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := validation.ValidateTimezone(timezone); err != nil {
		return err
	}
	if reminderTime != "" {
		if err := validation.ValidateReminderTime(reminderTime); err != nil {
			return err
		}
	}

	profile, err := s.profiles.ByUserID(userID)
	if err != nil {
		return err
	}
	profile.Name = name
	profile.Timezone = timezone
	profile.ReminderTime = reminderTime
	return s.profiles.Update(profile)
}

// Skip ends the wizard early from any step. Goal quota enforcement is
// unaffected; it lives on the goal create path.
func (s *WizardService) Skip(userID string) (*WizardState, error) {
	profile, err := s.profiles.ByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile.IsOnboarded() {
		return nil, ErrWizardDone
	}
	return s.complete(userID, profile)
}

func (s *WizardService) complete(userID string, profile *model.Profile) (*WizardState, error) {
	now := time.Now().UTC()
	profile.OnboardingStep = model.OnboardingStepDone
	profile.OnboardedAt = &now
	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}
	return s.state(userID, profile)
}
