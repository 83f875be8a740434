package model

import (
	"time"
)

const (
	CheckInRatingMin = 1
	CheckInRatingMax = 10
)

// CheckInDateLayout is the calendar-date key for check-ins. One check-in
// per user per date; the date is derived in the user's profile timezone.
const CheckInDateLayout = "2006-01-02"

type CheckIn struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	GoalID     *string   `db:"goal_id"` // Optional goal link
	Date       string    `db:"date"`    // CheckInDateLayout
	Rating     int       `db:"rating"`  // 1-10
	Reflection string    `db:"reflection"`
	CreatedAt  time.Time `db:"created_at"`
}

// Day parses the calendar date. Invalid stored dates return the zero time.
func (c *CheckIn) Day() time.Time {
	t, err := time.Parse(CheckInDateLayout, c.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
