package domain

import "fmt"

// ActionID identifies a reminder action button.
type ActionID string

const (
	ActionTrackStandard ActionID = "track_standard"
	ActionTrackFavorite ActionID = "track_favorite"
	ActionAddCustom     ActionID = "add_custom"
)

func (a ActionID) IsValid() bool {
	switch a {
	case ActionTrackStandard, ActionTrackFavorite, ActionAddCustom:
		return true
	}
	return false
}

// Action is one button of a reminder.
type Action struct {
	ID    ActionID `json:"action"`
	Title string   `json:"title"`
}

// Reminder is the notification shown when a slot fires. The payload fields
// carry what the actions need so a click can be resolved without the profile.
type Reminder struct {
	Slot             string            `json:"slot"`
	Title            string            `json:"title"`
	Body             string            `json:"body"`
	MealType         MealType          `json:"mealType"`
	Actions          []Action          `json:"actions"`
	StandardMeal     *StandardMealItem `json:"standardMeal,omitempty"`
	FavoriteCategory string            `json:"favoriteCategoryName,omitempty"`
}

const reminderBody = "Ready to track your meal? It only takes a second."

// BuildReminder assembles the reminder for a meal type: the first standard
// item of that meal, the first favorite category and the custom entry action,
// in that order.
func BuildReminder(p Profile, slot string, meal MealType) Reminder {
	r := Reminder{
		Slot:     slot,
		Title:    fmt.Sprintf("JUNKFU: Time for %s?", meal),
		Body:     reminderBody,
		MealType: meal,
	}
	if items := p.StandardMeals.For(meal); len(items) > 0 {
		item := items[0]
		r.StandardMeal = &item
		r.Actions = append(r.Actions, Action{ID: ActionTrackStandard, Title: "Track: " + item.Name})
	}
	if fav, ok := p.FirstFavorite(); ok {
		r.FavoriteCategory = fav
		r.Actions = append(r.Actions, Action{ID: ActionTrackFavorite, Title: "Track: " + fav})
	}
	r.Actions = append(r.Actions, Action{ID: ActionAddCustom, Title: "Custom Entry..."})
	return r
}

// HasAction reports whether the reminder offers the given action.
func (r Reminder) HasAction(id ActionID) bool {
	for _, a := range r.Actions {
		if a.ID == id {
			return true
		}
	}
	return false
}
