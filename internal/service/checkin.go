package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrInvalidRating     = errors.New("rating must be between 1 and 10")
	ErrCheckInNotFound   = errors.New("check-in not found")
	ErrCheckInGoalLinked = errors.New("linked goal not found")
)

const reflectionMaxLen = 2000

type CheckInService struct {
	checkIns repository.CheckInRepository
	goals    repository.GoalRepository
	profiles repository.ProfileRepository
}

func NewCheckInService(
	checkIns repository.CheckInRepository,
	goals repository.GoalRepository,
	profiles repository.ProfileRepository,
) *CheckInService {
	return &CheckInService{checkIns: checkIns, goals: goals, profiles: profiles}
}

// Today returns the current date in the user's profile timezone.
// Users without a profile or timezone default to UTC, so "today" never
// depends on server locale.
func (s *CheckInService) Today(userID string) string {
	loc := time.UTC
	if profile, err := s.profiles.ByUserID(userID); err == nil {
		loc = profile.Location()
	}
	return time.Now().In(loc).Format(model.CheckInDateLayout)
}

// Create records today's check-in. One check-in per user per day; a
// second attempt returns ErrAlreadyCheckedIn.
func (s *CheckInService) Create(userID string, goalID *string, rating int, reflection string) (*model.CheckIn, error) {
	if rating < model.CheckInRatingMin || rating > model.CheckInRatingMax {
		return nil, ErrInvalidRating
	}

	reflection = strings.TrimSpace(reflection)
	if len(reflection) > reflectionMaxLen {
		reflection = reflection[:reflectionMaxLen]
	}

	if goalID != nil && *goalID != "" {
		if _, err := s.goals.ByID(userID, *goalID); err != nil {
			if errors.Is(err, repository.ErrGoalNotFound) {
				return nil, ErrCheckInGoalLinked
			}
			return nil, err
		}
	} else {
		goalID = nil
	}

	checkIn := &model.CheckIn{
		ID:         uuid.NewString(),
		UserID:     userID,
		GoalID:     goalID,
		Date:       s.Today(userID),
		Rating:     rating,
		Reflection: reflection,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.checkIns.Create(checkIn); err != nil {
		if errors.Is(err, repository.ErrDuplicateCheckIn) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("creating check-in: %w", err)
	}
	return checkIn, nil
}

// TodayCheckIn returns today's check-in or ErrCheckInNotFound.
func (s *CheckInService) TodayCheckIn(userID string) (*model.CheckIn, error) {
	checkIn, err := s.checkIns.ByDate(userID, s.Today(userID))
	if err != nil {
		if errors.Is(err, repository.ErrCheckInNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, err
	}
	return checkIn, nil
}

// History returns the most recent check-ins, newest first. limit <= 0
// returns everything.
func (s *CheckInService) History(userID string, limit int) ([]*model.CheckIn, error) {
	return s.checkIns.CheckIns(userID, limit)
}

func (s *CheckInService) Delete(userID, checkInID string) error {
	err := s.checkIns.Delete(userID, checkInID)
	if errors.Is(err, repository.ErrCheckInNotFound) {
		return ErrCheckInNotFound
	}
	return err
}
