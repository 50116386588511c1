package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseHHMM parses "HH:MM" (24h) into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: expected HH:MM, got %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrInvalidTimeOfDay, s)
	}
	return h*60 + m, nil
}

// FormatMinutes returns HH:MM for minutes since midnight (00:00..23:59).
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	mins %= 24 * 60
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// CanonicalTime rewrites "8:5" style input as "08:05".
func CanonicalTime(s string) (string, error) {
	m, err := ParseHHMM(s)
	if err != nil {
		return "", err
	}
	return FormatMinutes(m), nil
}

// NormalizeTimes canonicalizes reminder times into a sorted set. The first
// invalid time aborts with ErrInvalidTimeOfDay.
func NormalizeTimes(times []string) ([]string, error) {
	seen := make(map[int]struct{}, len(times))
	mins := make([]int, 0, len(times))
	for _, t := range times {
		m, err := ParseHHMM(t)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		mins = append(mins, m)
	}
	sort.Ints(mins)
	out := make([]string, len(mins))
	for i, m := range mins {
		out[i] = FormatMinutes(m)
	}
	return out, nil
}

// ErrEmptyDescription is returned for blank free-text meal descriptions.
var ErrEmptyDescription = errors.New("empty description")

// ParseCalories reads a non-negative integer calorie value.
func ParseCalories(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, NewValidationError("calories", "must be a non-negative integer")
	}
	return n, nil
}
