package domain

import (
	"strings"
	"time"
)

// DateLayout is the partition key layout of a daily log.
const DateLayout = "2006-01-02"

// EntryDraft is a food entry before the store assigns id and timestamp.
type EntryDraft struct {
	Name          string       `json:"name"`
	Calories      int          `json:"calories"`
	BaseCalories  int          `json:"baseCalories"`
	Quantity      Quantity     `json:"quantity"`
	QuantityUnit  QuantityUnit `json:"quantityUnit"`
	QuantityLabel string       `json:"quantity_label"`
	MealType      MealType     `json:"mealType"`
	IsCustom      bool         `json:"isCustom"`
	AssumedGrams  *float64     `json:"assumedGrams,omitempty"`
}

// FoodEntry is a persisted entry of a daily log partition.
type FoodEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EntryDraft
}

// Validate checks the fields every stored entry must carry.
func (d EntryDraft) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if d.Calories < 0 {
		errs = append(errs, FieldError{Field: "calories", Message: "must be >= 0"})
	}
	if d.BaseCalories < 0 {
		errs = append(errs, FieldError{Field: "baseCalories", Message: "must be >= 0"})
	}
	if !d.QuantityUnit.IsValid() {
		errs = append(errs, FieldError{Field: "quantityUnit", Message: "must be serving, pcs or g"})
	}
	if !d.MealType.IsValid() {
		errs = append(errs, FieldError{Field: "mealType", Message: "must be Breakfast, Lunch, Dinner or Snacks"})
	}
	if !d.Quantity.IsServing() && d.Quantity.Count <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "must be a serving size or > 0"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// DateKey returns the partition key of t in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a partition key in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(key), loc)
	if err != nil {
		return time.Time{}, NewValidationError("date", "expected YYYY-MM-DD")
	}
	return t, nil
}

// StampFor returns the creation instant of an entry written to the given
// partition at now: now itself when the partition is today, otherwise the
// same wall-clock time on that date so the entry stays in its partition.
func StampFor(date string, now time.Time) (time.Time, error) {
	if DateKey(now) == date {
		return now, nil
	}
	day, err := ParseDateKey(date, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location()), nil
}
