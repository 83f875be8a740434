package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var reminderTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateName validates a profile display name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateTimezone checks that the value is a loadable IANA zone name.
// Empty is allowed; it means UTC.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}

	_, err := time.LoadLocation(tz)
	if err != nil {
		return errors.New("invalid timezone")
	}

	return nil
}

// ValidateReminderTime checks the "HH:MM" daily reminder format.
// Empty is allowed; it disables the reminder.
func ValidateReminderTime(t string) error {
	if t == "" {
		return nil
	}

	if !reminderTimeRe.MatchString(t) {
		return errors.New("reminder time must be HH:MM (24h)")
	}

	return nil
}
