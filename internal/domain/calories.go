package domain

import "math"

var activityFactors = map[ActivityLevel]float64{
	ActivitySedentary: 1.2,
	ActivityLight:     1.375,
	ActivityModerate:  1.55,
	ActivityActive:    1.725,
}

const (
	goalAdjustment = 500
	goalDeadbandKg = 1.0
)

// BMR is the Harris-Benedict basal metabolic rate in kcal/day.
func BMR(weightKg, heightCm float64, age int) float64 {
	return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*float64(age)
}

// MaintenanceCalories scales BMR by the activity factor, rounded.
func MaintenanceCalories(p Profile) int {
	return int(math.Round(BMR(p.Weight, p.Height, p.Age) * activityFactors[p.ActivityLevel]))
}

// DailyGoal returns the daily calorie target for a profile. Inputs must be
// validated by the caller (Profile.Validate).
func DailyGoal(p Profile) int {
	maintenance := MaintenanceCalories(p)
	diff := p.IdealWeight - p.Weight
	switch {
	case diff < -goalDeadbandKg:
		return maintenance - goalAdjustment
	case diff > goalDeadbandKg:
		return maintenance + goalAdjustment
	default:
		return maintenance
	}
}

// ScaledCalories is the effective calorie total of base calories taken in
// the given quantity.
func ScaledCalories(base int, q Quantity) int {
	if q.IsServing() {
		return int(math.Round(float64(base) * q.Size.Multiplier()))
	}
	return int(math.Round(float64(base) * q.Count))
}
