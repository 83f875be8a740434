package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
)

// activityLogCap bounds the in-memory admin activity feed.
const activityLogCap = 50

// ActivityEntry is one row in the admin activity feed.
type ActivityEntry struct {
	At       time.Time `json:"at"`
	Severity string    `json:"severity"` // "info" or "warn"
	Actor    string    `json:"actor,omitempty"`
	Message  string    `json:"message"`
}

// ActivityLog is a fixed-capacity, newest-first event feed. Entries
// beyond the cap are discarded; this is operational visibility, not an
// audit trail.
type ActivityLog struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Record(severity, actor, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := ActivityEntry{
		At:       time.Now().UTC(),
		Severity: severity,
		Actor:    actor,
		Message:  message,
	}
	l.entries = append([]ActivityEntry{entry}, l.entries...)
	if len(l.entries) > activityLogCap {
		l.entries = l.entries[:activityLogCap]
	}
}

// Entries returns a copy, newest first.
func (l *ActivityLog) Entries() []ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ActivityEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// AdminOverview aggregates platform-wide counts for the admin panel.
type AdminOverview struct {
	TotalUsers    int            `json:"total_users"`
	TotalGoals    int            `json:"total_goals"`
	TotalCheckIns int            `json:"total_check_ins"`
	PlanBreakdown map[string]int `json:"plan_breakdown"`
}

type AdminService struct {
	users    repository.UserRepository
	goals    repository.GoalRepository
	checkIns repository.CheckInRepository
	subs     repository.SubscriptionRepository
	files    *FileService
	activity *ActivityLog
}

func NewAdminService(
	users repository.UserRepository,
	goals repository.GoalRepository,
	checkIns repository.CheckInRepository,
	subs repository.SubscriptionRepository,
	files *FileService,
	activity *ActivityLog,
) *AdminService {
	return &AdminService{
		users:    users,
		goals:    goals,
		checkIns: checkIns,
		subs:     subs,
		files:    files,
		activity: activity,
	}
}

// Overview returns platform counts. Every user has a subscription row,
// so the plan breakdown sums to the user total; users created before
// their first subscription access are counted under free.
func (s *AdminService) Overview() (*AdminOverview, error) {
	totalUsers, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	totalGoals, err := s.goals.Count()
	if err != nil {
		return nil, err
	}
	totalCheckIns, err := s.checkIns.Count()
	if err != nil {
		return nil, err
	}
	breakdown, err := s.subs.CountByPlan()
	if err != nil {
		return nil, err
	}

	if breakdown == nil {
		breakdown = make(map[string]int)
	}
	counted := 0
	for _, n := range breakdown {
		counted += n
	}
	if counted < totalUsers {
		breakdown[model.SubscriptionPlanFree] += totalUsers - counted
	}

	return &AdminOverview{
		TotalUsers:    totalUsers,
		TotalGoals:    totalGoals,
		TotalCheckIns: totalCheckIns,
		PlanBreakdown: breakdown,
	}, nil
}

func (s *AdminService) Activity() []ActivityEntry {
	return s.activity.Entries()
}

// DeleteUser removes an account and everything it owns. Database rows
// cascade via foreign keys; stored files are deleted explicitly since
// object storage knows nothing about our schema.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	user, err := s.users.ByID(userID)
	if err != nil {
		return err
	}

	if err := s.files.DeleteAllUserFiles(ctx, userID); err != nil {
		// Orphaned objects are preferable to a half-deleted account.
		slog.Warn("admin delete: file cleanup failed", "user_id", userID, "error", err)
		s.activity.Record("warn", actorID, fmt.Sprintf("file cleanup failed for %s", user.Email))
	}

	if err := s.users.Delete(userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.activity.Record("info", actorID, fmt.Sprintf("deleted user %s", user.Email))
	slog.Info("admin deleted user", "user_id", userID, "actor", actorID)
	return nil
}
