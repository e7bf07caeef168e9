package utils

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeClock accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM:SS".
func NormalizeClock(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time format %q, expected HH:MM", value)
}

// NormalizeDate validates a YYYY-MM-DD date.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid date format %q, expected YYYY-MM-DD", value)
	}
	return t.Format(DateLayout), nil
}
