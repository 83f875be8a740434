package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stridehq/stride/internal/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.CheckInDateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func checkInsOn(dates ...string) []*model.CheckIn {
	out := make([]*model.CheckIn, 0, len(dates))
	for i, d := range dates {
		out = append(out, &model.CheckIn{
			ID:     d,
			UserID: "u1",
			Date:   d,
			Rating: 5 + i%3,
		})
	}
	return out
}

func TestCurrentStreak(t *testing.T) {
	today := day(t, "2026-03-10")

	t.Run("no check-ins means zero", func(t *testing.T) {
		stats := Summarize(nil, today)
		assert.Equal(t, 0, stats.CurrentStreak)
	})

	t.Run("gap before yesterday means zero", func(t *testing.T) {
		stats := Summarize(checkInsOn("2026-03-07", "2026-03-06"), today)
		assert.Equal(t, 0, stats.CurrentStreak)
	})

	t.Run("consecutive days ending today", func(t *testing.T) {
		stats := Summarize(checkInsOn("2026-03-10", "2026-03-09", "2026-03-08"), today)
		assert.Equal(t, 3, stats.CurrentStreak)
	})

	t.Run("streak survives a pending day", func(t *testing.T) {
		// Checked in through yesterday; today's check-in not done yet.
		stats := Summarize(checkInsOn("2026-03-09", "2026-03-08"), today)
		assert.Equal(t, 2, stats.CurrentStreak)
		assert.False(t, stats.CheckedInToday)
	})

	t.Run("gap resets the run", func(t *testing.T) {
		stats := Summarize(checkInsOn("2026-03-10", "2026-03-08", "2026-03-07"), today)
		assert.Equal(t, 1, stats.CurrentStreak)
	})
}

func TestBestStreak(t *testing.T) {
	today := day(t, "2026-03-10")

	stats := Summarize(checkInsOn(
		// old five-day run
		"2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05",
		// current two-day run
		"2026-03-09", "2026-03-10",
	), today)

	assert.Equal(t, 5, stats.BestStreak)
	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestWeeklyAggregates(t *testing.T) {
	today := day(t, "2026-03-10")

	checkIns := []*model.CheckIn{
		{ID: "a", Date: "2026-03-10", Rating: 8},
		{ID: "b", Date: "2026-03-09", Rating: 6},
		{ID: "c", Date: "2026-03-04", Rating: 4}, // window edge: today-6
		{ID: "d", Date: "2026-03-03", Rating: 10}, // outside the window
	}

	stats := Summarize(checkIns, today)
	assert.Equal(t, 3, stats.WeeklyCompletion)
	assert.InDelta(t, 6.0, stats.AverageRating, 0.001)
	assert.Equal(t, 4, stats.TotalCheckIns)
}

func TestSummaryUsesProfileTimezone(t *testing.T) {
	profiles := newFakeProfileRepo()
	_ = profiles.Create(&model.Profile{ID: "p1", UserID: "u1", Timezone: "Pacific/Auckland"})
	checkIns := newFakeCheckInRepo()

	svc := NewStatsService(checkIns, profiles)
	stats, err := svc.Summary("u1")
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.CurrentStreak)
}
