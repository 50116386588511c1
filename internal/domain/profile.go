package domain

import (
	"math"
	"strings"
)

// StandardMealItem is one item of a user's usual meal.
type StandardMealItem struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

// StandardMeals holds the usual breakfast, lunch and dinner of a user.
type StandardMeals struct {
	Breakfast []StandardMealItem `json:"breakfast"`
	Lunch     []StandardMealItem `json:"lunch"`
	Dinner    []StandardMealItem `json:"dinner"`
}

// For returns the items configured for a meal type. Snacks has none.
func (s StandardMeals) For(m MealType) []StandardMealItem {
	switch m {
	case MealBreakfast:
		return s.Breakfast
	case MealLunch:
		return s.Lunch
	case MealDinner:
		return s.Dinner
	}
	return nil
}

// Set replaces the items of a meal type. Snacks is ignored.
func (s *StandardMeals) Set(m MealType, items []StandardMealItem) bool {
	switch m {
	case MealBreakfast:
		s.Breakfast = items
	case MealLunch:
		s.Lunch = items
	case MealDinner:
		s.Dinner = items
	default:
		return false
	}
	return true
}

// Profile is the single active user profile of the device.
type Profile struct {
	Name                  string        `json:"name"`
	Age                   int           `json:"age"`
	Weight                float64       `json:"weight"`
	Height                float64       `json:"height"`
	IdealWeight           float64       `json:"idealWeight"`
	ActivityLevel         ActivityLevel `json:"activityLevel"`
	DailyCalorieGoal      int           `json:"dailyCalorieGoal"`
	FavoriteCategoryNames []string      `json:"favoriteCategoryNames"`
	StandardMeals         StandardMeals `json:"standardMeals"`
	NotificationsEnabled  bool          `json:"notificationsEnabled"`
	NotificationTimes     []string      `json:"notificationTimes"`
}

// Validate checks the metabolic fields DailyGoal relies on.
func (p Profile) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if p.Age <= 0 || p.Age > 130 {
		errs = append(errs, FieldError{Field: "age", Message: "must be between 1 and 130"})
	}
	if !positiveFinite(p.Weight) {
		errs = append(errs, FieldError{Field: "weight", Message: "must be a positive number"})
	}
	if !positiveFinite(p.Height) {
		errs = append(errs, FieldError{Field: "height", Message: "must be a positive number"})
	}
	if !positiveFinite(p.IdealWeight) {
		errs = append(errs, FieldError{Field: "idealWeight", Message: "must be a positive number"})
	}
	if !p.ActivityLevel.IsValid() {
		errs = append(errs, FieldError{Field: "activityLevel", Message: "must be sedentary, light, moderate or active"})
	}
	if _, err := NormalizeTimes(p.NotificationTimes); err != nil {
		errs = append(errs, FieldError{Field: "notificationTimes", Message: err.Error()})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Normalize recomputes the cached goal and canonicalizes the set-valued
// fields. The profile must be valid.
func (p Profile) Normalize() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.DailyCalorieGoal = DailyGoal(p)
	p.FavoriteCategoryNames = uniqueStrings(p.FavoriteCategoryNames)
	times, err := NormalizeTimes(p.NotificationTimes)
	if err == nil {
		p.NotificationTimes = times
	}
	return p
}

// FirstFavorite returns the first favorite category name, if any.
func (p Profile) FirstFavorite() (string, bool) {
	if len(p.FavoriteCategoryNames) == 0 {
		return "", false
	}
	return p.FavoriteCategoryNames[0], true
}

// RemindersActive reports whether the profile wants any reminder armed.
func (p Profile) RemindersActive() bool {
	return p.NotificationsEnabled && len(p.NotificationTimes) > 0
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
