package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/estimator"
	"github.com/Carveion/JUNKFU-V2/internal/store"
)

// CategoryLookup resolves user-typed category names.
type CategoryLookup interface {
	Lookup(name string) (domain.Category, error)
}

// Logbook implements the food entry workflows on top of the log store.
type Logbook struct {
	logs     store.LogStore
	profiles store.ProfileStore
	catalog  CategoryLookup
	est      estimator.Estimator
	clock    clockwork.Clock
	log      *zap.Logger
}

func NewLogbook(logs store.LogStore, profiles store.ProfileStore, catalog CategoryLookup, est estimator.Estimator, clock clockwork.Clock, log *zap.Logger) *Logbook {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if est == nil {
		est = estimator.Disabled{}
	}
	return &Logbook{logs: logs, profiles: profiles, catalog: catalog, est: est, clock: clock, log: log}
}

// Today returns today's partition key.
func (l *Logbook) Today() string {
	return domain.DateKey(l.clock.Now())
}

// AddRequest describes a manual entry. Empty Date means today; empty
// MealType is derived from the current time of day.
type AddRequest struct {
	Date         string
	Name         string
	BaseCalories int
	Quantity     domain.Quantity
	Unit         domain.QuantityUnit
	MealType     domain.MealType
}

// Add logs a manual entry, scaling base calories by quantity.
func (l *Logbook) Add(ctx context.Context, req AddRequest) (domain.FoodEntry, error) {
	date := l.dateOrToday(req.Date)
	if req.Unit == "" {
		req.Unit = domain.UnitServing
		if !req.Quantity.IsServing() {
			req.Unit = domain.UnitPieces
		}
	}
	draft := domain.EntryDraft{
		Name:          strings.TrimSpace(req.Name),
		Calories:      domain.ScaledCalories(req.BaseCalories, req.Quantity),
		BaseCalories:  req.BaseCalories,
		Quantity:      req.Quantity,
		QuantityUnit:  req.Unit,
		QuantityLabel: req.Quantity.Label(req.Unit),
		MealType:      l.mealOrNow(req.MealType),
	}
	return l.append(ctx, date, draft)
}

// AddCategory logs a catalog category in the given quantity.
func (l *Logbook) AddCategory(ctx context.Context, date, name string, q domain.Quantity, meal domain.MealType) (domain.FoodEntry, error) {
	cat, err := l.catalog.Lookup(name)
	if err != nil {
		return domain.FoodEntry{}, err
	}
	unit := domain.UnitServing
	if !q.IsServing() {
		unit = domain.UnitPieces
	}
	return l.append(ctx, l.dateOrToday(date), cat.Draft(l.mealOrNow(meal), q, unit))
}

// AddForToday appends a ready draft to today's log. Used for entries
// arriving from reminder actions.
func (l *Logbook) AddForToday(ctx context.Context, draft domain.EntryDraft) (domain.FoodEntry, error) {
	return l.append(ctx, l.Today(), draft)
}

// AddCustom estimates calories for a free-text description and logs the
// result as one custom serving counted in pieces. Estimator failures are returned as is and
// nothing is written.
func (l *Logbook) AddCustom(ctx context.Context, date, description string, meal domain.MealType) (domain.FoodEntry, error) {
	est, err := l.est.Estimate(ctx, description)
	if err != nil {
		return domain.FoodEntry{}, err
	}
	draft := domain.EntryDraft{
		Name:          est.FoodName,
		Calories:      est.Calories,
		BaseCalories:  est.Calories,
		Quantity:      domain.Count(1),
		QuantityUnit:  domain.UnitPieces,
		QuantityLabel: "1 serving",
		MealType:      l.mealOrNow(meal),
		IsCustom:      true,
		AssumedGrams:  est.AssumedGrams,
	}
	return l.append(ctx, l.dateOrToday(date), draft)
}

// AddStandard logs n of one item from the profile's usual meal, labelled
// "<n> x <item>". The item name is matched case-insensitively.
func (l *Logbook) AddStandard(ctx context.Context, date string, meal domain.MealType, itemName string, n float64) (domain.FoodEntry, error) {
	if n <= 0 {
		return domain.FoodEntry{}, domain.NewValidationError("quantity", "must be greater than 0")
	}
	p, err := l.profiles.LoadProfile(ctx)
	if err != nil {
		return domain.FoodEntry{}, err
	}
	if p == nil {
		return domain.FoodEntry{}, domain.ErrProfileMissing
	}
	meal = l.mealOrNow(meal)
	items := p.StandardMeals.For(meal)
	if items == nil && meal != domain.MealBreakfast && meal != domain.MealLunch && meal != domain.MealDinner {
		return domain.FoodEntry{}, fmt.Errorf("%w: %s has no standard meal", domain.ErrInvalidMealType, meal)
	}
	name := strings.TrimSpace(itemName)
	idx := slices.IndexFunc(items, func(it domain.StandardMealItem) bool { return strings.EqualFold(it.Name, name) })
	if idx < 0 {
		return domain.FoodEntry{}, fmt.Errorf("standard item %q for %s: %w", name, meal, domain.ErrNotFound)
	}
	item := items[idx]
	q := domain.Count(n)
	draft := domain.EntryDraft{
		Name:          item.Name,
		Calories:      domain.ScaledCalories(item.Calories, q),
		BaseCalories:  item.Calories,
		Quantity:      q,
		QuantityUnit:  domain.UnitPieces,
		QuantityLabel: fmt.Sprintf("%s x %s", q, item.Name),
		MealType:      meal,
	}
	return l.append(ctx, l.dateOrToday(date), draft)
}

// EditRequest carries the fields to change; nil fields are kept.
type EditRequest struct {
	Name         *string
	BaseCalories *int
	Quantity     *domain.Quantity
	Unit         *domain.QuantityUnit
	MealType     *domain.MealType
}

// Edit changes an entry and recomputes its calories and label.
func (l *Logbook) Edit(ctx context.Context, date, id string, req EditRequest) (domain.FoodEntry, error) {
	date = l.dateOrToday(date)
	entries, err := l.logs.LoadDay(ctx, date)
	if err != nil {
		return domain.FoodEntry{}, err
	}
	var entry *domain.FoodEntry
	for i := range entries {
		if entries[i].ID == id {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return domain.FoodEntry{}, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}

	oldName := entry.Name
	if req.Name != nil {
		entry.Name = strings.TrimSpace(*req.Name)
	}
	if req.BaseCalories != nil {
		entry.BaseCalories = *req.BaseCalories
	}
	if req.Quantity != nil {
		entry.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		entry.QuantityUnit = *req.Unit
	}
	if req.MealType != nil {
		entry.MealType = *req.MealType
	}
	if entry.Quantity.IsServing() {
		entry.QuantityUnit = domain.UnitServing
	}
	entry.Calories = domain.ScaledCalories(entry.BaseCalories, entry.Quantity)
	switch {
	case req.Quantity != nil || req.Unit != nil:
		entry.QuantityLabel = entry.Quantity.Label(entry.QuantityUnit)
	case req.Name != nil && entry.QuantityLabel == oldName:
		// quick-added standard meals use the item name as label
		entry.QuantityLabel = entry.Name
	}

	updated, err := l.logs.UpdateEntry(ctx, date, *entry)
	if err != nil {
		return domain.FoodEntry{}, err
	}
	l.log.Info("entry updated", zap.String("date", date), zap.String("id", id), zap.Int("calories", updated.Calories))
	return updated, nil
}

// Delete removes an entry. Missing entries are ignored.
func (l *Logbook) Delete(ctx context.Context, date, id string) error {
	date = l.dateOrToday(date)
	if err := l.logs.RemoveEntry(ctx, date, id); err != nil {
		return err
	}
	l.log.Info("entry removed", zap.String("date", date), zap.String("id", id))
	return nil
}

// Day summarizes one date against the stored goal. Without a profile the
// goal is zero.
func (l *Logbook) Day(ctx context.Context, date string) (domain.DaySummary, error) {
	date = l.dateOrToday(date)
	entries, err := l.logs.LoadDay(ctx, date)
	if err != nil {
		return domain.DaySummary{}, err
	}
	goal, err := l.goal(ctx)
	if err != nil {
		return domain.DaySummary{}, err
	}
	return domain.Summarize(date, goal, entries), nil
}

// History summarizes every stored date within [from, to].
func (l *Logbook) History(ctx context.Context, from, to string) ([]domain.DaySummary, error) {
	dates, err := l.logs.LogDates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	goal, err := l.goal(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DaySummary, 0, len(dates))
	for _, d := range dates {
		entries, err := l.logs.LoadDay(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Summarize(d, goal, entries))
	}
	return out, nil
}

func (l *Logbook) append(ctx context.Context, date string, draft domain.EntryDraft) (domain.FoodEntry, error) {
	entry, err := l.logs.AppendEntry(ctx, date, draft)
	if err != nil {
		return domain.FoodEntry{}, err
	}
	l.log.Info("entry added",
		zap.String("date", date),
		zap.String("id", entry.ID),
		zap.String("name", entry.Name),
		zap.Int("calories", entry.Calories),
		zap.Bool("custom", entry.IsCustom),
	)
	return entry, nil
}

func (l *Logbook) goal(ctx context.Context) (int, error) {
	p, err := l.profiles.LoadProfile(ctx)
	if err != nil || p == nil {
		return 0, err
	}
	return p.DailyCalorieGoal, nil
}

func (l *Logbook) dateOrToday(date string) string {
	if strings.TrimSpace(date) == "" {
		return l.Today()
	}
	return strings.TrimSpace(date)
}

func (l *Logbook) mealOrNow(m domain.MealType) domain.MealType {
	if m == "" {
		return domain.MealTypeAt(l.clock.Now())
	}
	return m
}
