package domain

// MealGroup is the entries of one meal type within a day.
type MealGroup struct {
	MealType MealType    `json:"mealType"`
	Calories int         `json:"calories"`
	Entries  []FoodEntry `json:"entries"`
}

// DaySummary aggregates a daily log against the profile goal.
type DaySummary struct {
	Date      string      `json:"date"`
	Goal      int         `json:"goal"`
	Consumed  int         `json:"consumed"`
	Remaining int         `json:"remaining"`
	Progress  int         `json:"progress"`
	OverGoal  bool        `json:"overGoal"`
	Meals     []MealGroup `json:"meals"`
}

// Summarize builds the summary of a day. Meals are always listed in
// Breakfast, Lunch, Dinner, Snacks order, empty ones included.
func Summarize(date string, goal int, entries []FoodEntry) DaySummary {
	s := DaySummary{Date: date, Goal: goal}
	byMeal := make(map[MealType]*MealGroup, len(MealTypes))
	for _, m := range MealTypes {
		s.Meals = append(s.Meals, MealGroup{MealType: m, Entries: []FoodEntry{}})
	}
	for i := range s.Meals {
		byMeal[s.Meals[i].MealType] = &s.Meals[i]
	}
	for _, e := range entries {
		s.Consumed += e.Calories
		g, ok := byMeal[e.MealType]
		if !ok {
			g = byMeal[MealSnacks]
		}
		g.Calories += e.Calories
		g.Entries = append(g.Entries, e)
	}
	s.Remaining = goal - s.Consumed
	s.OverGoal = goal > 0 && s.Consumed > goal
	if goal > 0 {
		s.Progress = s.Consumed * 100 / goal
		if s.Progress > 100 {
			s.Progress = 100
		}
	}
	return s
}
