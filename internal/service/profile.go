package service

import (
	"errors"

	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/validation"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Profile(userID string) (*model.Profile, error) {
	profile, err := s.profiles.ByUserID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

type ProfileUpdate struct {
	Name         *string
	Timezone     *string
	ReminderTime *string
}

// Update applies a partial profile update after validating each field.
func (s *ProfileService) Update(userID string, upd ProfileUpdate) (*model.Profile, error) {
	profile, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if err := validation.ValidateName(*upd.Name); err != nil {
			return nil, err
		}
		profile.Name = *upd.Name
	}
	if upd.Timezone != nil {
		if err := validation.ValidateTimezone(*upd.Timezone); err != nil {
			return nil, err
		}
		profile.Timezone = *upd.Timezone
	}
	if upd.ReminderTime != nil {
		if *upd.ReminderTime != "" {
			if err := validation.ValidateReminderTime(*upd.ReminderTime); err != nil {
				return nil, err
			}
		}
		profile.ReminderTime = *upd.ReminderTime
	}

	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
