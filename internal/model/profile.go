package model

import "time"

// Onboarding wizard steps, in order.
const (
	OnboardingStepWelcome     = "welcome"
	OnboardingStepGoals       = "goals"
	OnboardingStepPreferences = "preferences"
	OnboardingStepConfirm     = "confirm"
	OnboardingStepDone        = "done"
)

type Profile struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	Name           string     `db:"name"`
	Timezone       string     `db:"timezone"`      // IANA name, e.g. "Europe/Berlin"
	ReminderTime   string     `db:"reminder_time"` // "HH:MM" in the profile timezone, empty = no reminder
	OnboardingStep string     `db:"onboarding_step"`
	OnboardedAt    *time.Time `db:"onboarded_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (p *Profile) IsOnboarded() bool {
	return p.OnboardedAt != nil
}

// Location resolves the profile timezone, falling back to UTC when unset
// or invalid. Streaks and check-in dates are computed in this location.
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
