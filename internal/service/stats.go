package service

import (
	"time"

	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
)

// Stats summarizes a user's check-in history for the dashboard.
type Stats struct {
	CurrentStreak    int     `json:"current_streak"`
	BestStreak       int     `json:"best_streak"`
	TotalCheckIns    int     `json:"total_check_ins"`
	AverageRating    float64 `json:"average_rating"`    // last 7 days, 0 when no check-ins
	WeeklyCompletion int     `json:"weekly_completion"` // days checked in out of the last 7
	CheckedInToday   bool    `json:"checked_in_today"`
}

type StatsService struct {
	checkIns repository.CheckInRepository
	profiles repository.ProfileRepository
}

func NewStatsService(checkIns repository.CheckInRepository, profiles repository.ProfileRepository) *StatsService {
	return &StatsService{checkIns: checkIns, profiles: profiles}
}

// Summary computes streaks and rolling aggregates. "Today" is
// anchored in the profile timezone so a streak does not break at
// server midnight.
func (s *StatsService) Summary(userID string) (*Stats, error) {
	loc := time.UTC
	if profile, err := s.profiles.ByUserID(userID); err == nil {
		loc = profile.Location()
	}
	today := time.Now().In(loc)

	checkIns, err := s.checkIns.CheckIns(userID, 0)
	if err != nil {
		return nil, err
	}

	return Summarize(checkIns, today), nil
}

// Summarize is the pure aggregation over a check-in history. today is
// the reference day; only its date part matters.
func Summarize(checkIns []*model.CheckIn, today time.Time) *Stats {
	todayStr := today.Format(model.CheckInDateLayout)

	days := make(map[string]bool, len(checkIns))
	for _, c := range checkIns {
		days[c.Date] = true
	}

	stats := &Stats{
		TotalCheckIns:  len(checkIns),
		CheckedInToday: days[todayStr],
		CurrentStreak:  currentStreak(days, today),
		BestStreak:     bestStreak(days),
	}

	var ratingSum, ratingCount int
	cutoff := today.AddDate(0, 0, -6).Format(model.CheckInDateLayout)
	for _, c := range checkIns {
		if c.Date >= cutoff && c.Date <= todayStr {
			ratingSum += c.Rating
			ratingCount++
		}
	}
	stats.WeeklyCompletion = ratingCount
	if ratingCount > 0 {
		stats.AverageRating = float64(ratingSum) / float64(ratingCount)
	}

	return stats
}

// currentStreak counts consecutive checked-in days ending today, or
// ending yesterday when today's check-in has not happened yet. Any
// older gap means the streak is 0.
func currentStreak(days map[string]bool, today time.Time) int {
	day := today
	if !days[day.Format(model.CheckInDateLayout)] {
		day = day.AddDate(0, 0, -1)
		if !days[day.Format(model.CheckInDateLayout)] {
			return 0
		}
	}

	streak := 0
	for days[day.Format(model.CheckInDateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// bestStreak finds the longest run of consecutive days anywhere in the
// history.
func bestStreak(days map[string]bool) int {
	best := 0
	for dateStr := range days {
		day, err := time.Parse(model.CheckInDateLayout, dateStr)
		if err != nil {
			continue
		}
		// Only count runs from their first day.
		if days[day.AddDate(0, 0, -1).Format(model.CheckInDateLayout)] {
			continue
		}
		length := 0
		for days[day.Format(model.CheckInDateLayout)] {
			length++
			day = day.AddDate(0, 0, 1)
		}
		if length > best {
			best = length
		}
	}
	return best
}
