package util

import (
	"fmt"
	"time"
)

// DateLayout is the layout of every date in the project records.
const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate turns "2025-04-15" into "April 15, 2025".
func FormatDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format("January 02, 2006"), nil
}

// DaysUntil counts whole days from now to the target date, truncating toward zero.
func DaysUntil(target string, now time.Time) (int, error) {
	t, err := time.ParseInLocation(DateLayout, target, now.Location())
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", target, err)
	}
	return int(t.Sub(now).Hours() / 24), nil
}

// IsPastDue reports whether the start of the target day is before now.
func IsPastDue(target string, now time.Time) (bool, error) {
	t, err := time.ParseInLocation(DateLayout, target, now.Location())
	if err != nil {
		return false, fmt.Errorf("invalid date %q: %w", target, err)
	}
	return t.Before(now), nil
}
