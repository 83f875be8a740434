package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stridehq/stride/internal/model"
)

type ProfileRepository interface {
	Create(profile *model.Profile) error
	ByUserID(userID string) (*model.Profile, error)
	Update(profile *model.Profile) error
	UpdateName(userID, name string) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *model.Profile) error {
	if profile.OnboardingStep == "" {
		profile.OnboardingStep = model.OnboardingStepWelcome
	}

	query := `INSERT INTO profiles (id, user_id, name, timezone, reminder_time, onboarding_step, onboarded_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		profile.ID,
		profile.UserID,
		profile.Name,
		profile.Timezone,
		profile.ReminderTime,
		profile.OnboardingStep,
		profile.OnboardedAt,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	return err
}

func (r *profileRepository) ByUserID(userID string) (*model.Profile, error) {
	profile := &model.Profile{}
	query := `SELECT * FROM profiles WHERE user_id = $1`

	err := r.db.Get(profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}

	return profile, err
}

func (r *profileRepository) Update(profile *model.Profile) error {
	query := `UPDATE profiles
	          SET name = $1, timezone = $2, reminder_time = $3, onboarding_step = $4, onboarded_at = $5, updated_at = $6
	          WHERE user_id = $7`

	result, err := r.db.Exec(query,
		profile.Name,
		profile.Timezone,
		profile.ReminderTime,
		profile.OnboardingStep,
		profile.OnboardedAt,
		time.Now(),
		profile.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *profileRepository) UpdateName(userID, name string) error {
	query := `UPDATE profiles SET name = $1, updated_at = $2 WHERE user_id = $3`

	result, err := r.db.Exec(query, name, time.Now(), userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}
