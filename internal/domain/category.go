package domain

// Category is a catalog food with calories for a Medium serving.
type Category struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Emoji    string `json:"emoji"`
}

// CategoryGroup groups categories by cuisine.
type CategoryGroup struct {
	Cuisine string     `json:"cuisine"`
	Items   []Category `json:"items"`
}

// Draft returns an entry draft for q servings of the category.
func (c Category) Draft(meal MealType, q Quantity, unit QuantityUnit) EntryDraft {
	return EntryDraft{
		Name:          c.Name,
		Calories:      ScaledCalories(c.Calories, q),
		BaseCalories:  c.Calories,
		Quantity:      q,
		QuantityUnit:  unit,
		QuantityLabel: q.Label(unit),
		MealType:      meal,
	}
}
