package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/stride/internal/model"
)

func newTestCheckInService() (*CheckInService, *fakeGoalRepo) {
	goals := newFakeGoalRepo()
	profiles := newFakeProfileRepo()
	_ = profiles.Create(&model.Profile{ID: "p1", UserID: "u1", Timezone: "UTC"})
	return NewCheckInService(newFakeCheckInRepo(), goals, profiles), goals
}

func TestCheckInOncePerDay(t *testing.T) {
	svc, _ := newTestCheckInService()

	first, err := svc.Create("u1", nil, 7, "felt good")
	require.NoError(t, err)
	assert.Equal(t, svc.Today("u1"), first.Date)

	_, err = svc.Create("u1", nil, 9, "trying again")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	// Another user is unaffected.
	_, err = svc.Create("u2", nil, 5, "")
	assert.NoError(t, err)
}

func TestCheckInRatingBounds(t *testing.T) {
	svc, _ := newTestCheckInService()

	_, err := svc.Create("u1", nil, 0, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = svc.Create("u1", nil, 11, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Create("u1", nil, model.CheckInRatingMin, "")
	assert.NoError(t, err)
}

func TestCheckInGoalLink(t *testing.T) {
	svc, goals := newTestCheckInService()

	require.NoError(t, goals.Create(&model.Goal{
		ID: "g1", UserID: "u1", Title: "Run", Status: model.GoalStatusActive,
	}))

	goalID := "g1"
	checkIn, err := svc.Create("u1", &goalID, 8, "")
	require.NoError(t, err)
	require.NotNil(t, checkIn.GoalID)
	assert.Equal(t, "g1", *checkIn.GoalID)
}

func TestCheckInRejectsForeignGoal(t *testing.T) {
	svc, goals := newTestCheckInService()

	require.NoError(t, goals.Create(&model.Goal{
		ID: "g2", UserID: "someone-else", Title: "Theirs", Status: model.GoalStatusActive,
	}))

	goalID := "g2"
	_, err := svc.Create("u1", &goalID, 8, "")
	assert.ErrorIs(t, err, ErrCheckInGoalLinked)
}

func TestTodayCheckIn(t *testing.T) {
	svc, _ := newTestCheckInService()

	_, err := svc.TodayCheckIn("u1")
	assert.ErrorIs(t, err, ErrCheckInNotFound)

	created, err := svc.Create("u1", nil, 6, "")
	require.NoError(t, err)

	found, err := svc.TodayCheckIn("u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCheckInHistoryNewestFirst(t *testing.T) {
	svc, _ := newTestCheckInService()
	repo := svc.checkIns.(*fakeCheckInRepo)

	for _, d := range []string{"2026-01-01", "2026-01-03", "2026-01-02"} {
		require.NoError(t, repo.Create(&model.CheckIn{ID: d, UserID: "u1", Date: d, Rating: 5}))
	}

	history, err := svc.History("u1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-01-03", history[0].Date)
	assert.Equal(t, "2026-01-02", history[1].Date)
}
