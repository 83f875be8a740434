package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "correct-horse-battery", false},
		{"too short", "short1!", true},
		{"too long", string(bytes.Repeat([]byte("a"), 73)), true},
		{"contains common word", "mygreatpassword12", true},
		{"common word uppercased", "myQWERTYphrase99", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateReminderTime(t *testing.T) {
	assert.NoError(t, ValidateReminderTime(""))
	assert.NoError(t, ValidateReminderTime("07:30"))
	assert.NoError(t, ValidateReminderTime("23:59"))
	assert.Error(t, ValidateReminderTime("24:00"))
	assert.Error(t, ValidateReminderTime("7:30"))
	assert.Error(t, ValidateReminderTime("07:60"))
	assert.Error(t, ValidateReminderTime("noon"))
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone(""))
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("America/New_York"))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}

// pngBytes is a minimal buffer http.DetectContentType sniffs as image/png.
func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
}

func TestValidateFile(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		mime, err := ValidateFile("avatar.png", pngBytes(), ImageConstraints)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mime)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ValidateFile("avatar.png", nil, ImageConstraints)
		assert.Error(t, err)
	})

	t.Run("oversized file", func(t *testing.T) {
		data := make([]byte, ImageConstraints.MaxSize+1)
		_, err := ValidateFile("avatar.png", data, ImageConstraints)
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("content type sniffed, not trusted from name", func(t *testing.T) {
		_, err := ValidateFile("avatar.png", []byte("#!/bin/sh\nrm -rf /\n"), ImageConstraints)
		assert.ErrorContains(t, err, "invalid file type")
	})

	t.Run("extension must match allow list", func(t *testing.T) {
		_, err := ValidateFile("avatar.svg", pngBytes(), ImageConstraints)
		assert.ErrorContains(t, err, "invalid file extension")
	})
}
