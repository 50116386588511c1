package domain

import (
	"fmt"
	"strings"
)

// MealType is the meal an entry is logged against.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnacks    MealType = "Snacks"
)

// MealTypes lists meal types in display order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnacks}

func (m MealType) String() string { return string(m) }

func (m MealType) IsValid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnacks:
		return true
	}
	return false
}

// ParseMealType accepts any letter case ("lunch", "LUNCH").
func ParseMealType(s string) (MealType, error) {
	s = strings.TrimSpace(s)
	for _, m := range MealTypes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMealType, s)
}

// ActivityLevel drives the maintenance multiplier of the daily goal.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

func (a ActivityLevel) String() string { return string(a) }

func (a ActivityLevel) IsValid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive:
		return true
	}
	return false
}

func ParseActivityLevel(s string) (ActivityLevel, error) {
	a := ActivityLevel(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidActivity, s)
	}
	return a, nil
}

// QuantityUnit is the unit quantity is expressed in.
type QuantityUnit string

const (
	UnitServing QuantityUnit = "serving"
	UnitPieces  QuantityUnit = "pcs"
	UnitGrams   QuantityUnit = "g"
)

func (u QuantityUnit) String() string { return string(u) }

func (u QuantityUnit) IsValid() bool {
	switch u {
	case UnitServing, UnitPieces, UnitGrams:
		return true
	}
	return false
}

func ParseQuantityUnit(s string) (QuantityUnit, error) {
	u := QuantityUnit(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
	return u, nil
}
