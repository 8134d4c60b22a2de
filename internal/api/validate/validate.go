package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// UserID must be lowercase letters, digits, underscore, 1-20 chars
var userIDRx = regexp.MustCompile(`^[a-z0-9_]{1,20}$`)

// NonEmpty rejects blank (whitespace-only) values.
func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// MaxRunes bounds v by characters rather than bytes.
func MaxRunes(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIDRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIDRx.String())
	}
	return nil
}

// -------- Request specific helpers ----------

// DevToken validates the body of POST /api/auth/dev-token.
func DevToken(userID string) error {
	return UserID(userID)
}

// CreateDiary validates the body of POST /api/diaries. The date is parsed
// separately by the handler.
func CreateDiary(content, date string, maxContent int) error {
	if err := NonEmpty("content", content); err != nil {
		return err
	}
	if err := MaxRunes("content", content, maxContent); err != nil {
		return err
	}
	return NonEmpty("date", date)
}
