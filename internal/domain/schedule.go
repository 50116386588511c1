package domain

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// NextOccurrence returns the next wall-clock instant at hh:mm in now's
// location that is strictly after now. A time equal to now rolls to
// tomorrow.
func NextOccurrence(now time.Time, hhmm string) (time.Time, error) {
	mins, err := ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", mins%60, mins/60))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimeOfDay, err)
	}
	return sched.Next(now), nil
}

// MealTypeAt maps a local time of day to the meal a reminder is about.
// Hours 4-11 are breakfast, 12-16 lunch, everything else dinner. Snacks
// is never chosen here.
func MealTypeAt(t time.Time) MealType {
	h := t.Hour()
	switch {
	case h >= 4 && h < 12:
		return MealBreakfast
	case h >= 12 && h < 17:
		return MealLunch
	default:
		return MealDinner
	}
}
