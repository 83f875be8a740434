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
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGoalLimitReached = errors.New("goal limit reached for current plan")
	ErrGoalTitleEmpty   = errors.New("goal title is required")
	ErrInvalidProgress  = errors.New("progress must be between 0 and 100")
)

const goalTitleMaxLen = 200

type GoalService struct {
	goals repository.GoalRepository
	subs  *SubscriptionService
}

func NewGoalService(goals repository.GoalRepository, subs *SubscriptionService) *GoalService {
	return &GoalService{goals: goals, subs: subs}
}

// Create adds a goal after enforcing the plan's active-goal quota.
// The quota is checked here, not in the client, so a crafted request
// cannot exceed it.
func (s *GoalService) Create(userID, title, description string) (*model.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrGoalTitleEmpty
	}
	if len(title) > goalTitleMaxLen {
		title = title[:goalTitleMaxLen]
	}

	if err := s.checkQuota(userID, 1); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      model.GoalStatusActive,
		Progress:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.goals.Create(goal); err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}
	return goal, nil
}

// checkQuota errors when adding n active goals would exceed the plan
// limit. Premium's unlimited sentinel always passes.
func (s *GoalService) checkQuota(userID string, n int) error {
	sub, err := s.subs.Subscription(userID)
	if err != nil {
		return err
	}

	limit := sub.GoalLimit()
	if limit == model.GoalLimitUnlimited {
		return nil
	}

	active, err := s.goals.CountActive(userID)
	if err != nil {
		return err
	}
	if active+n > limit {
		return ErrGoalLimitReached
	}
	return nil
}

// RemainingQuota reports how many active goals the user can still
// create; GoalLimitUnlimited means no cap.
func (s *GoalService) RemainingQuota(userID string) (int, error) {
	sub, err := s.subs.Subscription(userID)
	if err != nil {
		return 0, err
	}

	limit := sub.GoalLimit()
	if limit == model.GoalLimitUnlimited {
		return model.GoalLimitUnlimited, nil
	}

	active, err := s.goals.CountActive(userID)
	if err != nil {
		return 0, err
	}
	remaining := limit - active
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *GoalService) Goal(userID, goalID string) (*model.Goal, error) {
	goal, err := s.goals.ByID(userID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

// Goals lists the user's goals. sortBy accepts "progress", "title" or
// "recent" (default).
func (s *GoalService) Goals(userID, sortBy string) ([]*model.Goal, error) {
	return s.goals.Goals(userID, sortBy)
}

type GoalUpdate struct {
	Title       *string
	Description *string
	Progress    *int
	Completed   *bool
}

// Update applies a partial update. Setting progress to 100 marks the
// goal completed; reopening a completed goal re-checks the quota.
func (s *GoalService) Update(userID, goalID string, upd GoalUpdate) (*model.Goal, error) {
	goal, err := s.Goal(userID, goalID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, ErrGoalTitleEmpty
		}
		if len(title) > goalTitleMaxLen {
			title = title[:goalTitleMaxLen]
		}
		goal.Title = title
	}
	if upd.Description != nil {
		goal.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Progress != nil {
		if *upd.Progress < 0 || *upd.Progress > 100 {
			return nil, ErrInvalidProgress
		}
		goal.Progress = *upd.Progress
		if goal.Progress == 100 {
			goal.Status = model.GoalStatusCompleted
		}
	}
	if upd.Completed != nil {
		if *upd.Completed {
			goal.Status = model.GoalStatusCompleted
			goal.Progress = 100
		} else if goal.Status == model.GoalStatusCompleted {
			if err := s.checkQuota(userID, 1); err != nil {
				return nil, err
			}
			goal.Status = model.GoalStatusActive
		}
	}

	goal.UpdatedAt = time.Now().UTC()
	if err := s.goals.Update(goal); err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("updating goal: %w", err)
	}
	return goal, nil
}

// Delete removes exactly the identified goal.
func (s *GoalService) Delete(userID, goalID string) error {
	err := s.goals.Delete(userID, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return ErrGoalNotFound
	}
	return err
}
