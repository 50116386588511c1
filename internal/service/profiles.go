package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/estimator"
	"github.com/Carveion/JUNKFU-V2/internal/store"
)

// Reconfigurer receives profile changes. The notification scheduler
// implements it.
type Reconfigurer interface {
	Configure(p domain.Profile)
	CancelAll()
}

// Profiles implements the profile and session workflows. Saving a profile
// is the only place reminders get reconfigured from.
type Profiles struct {
	store   store.ProfileStore
	session store.SessionStore
	catalog CategoryLookup
	est     estimator.Estimator
	sched   Reconfigurer
	log     *zap.Logger
}

// NewProfiles wires the profile service. sched may be nil when no
// scheduler runs in this process.
func NewProfiles(ps store.ProfileStore, ss store.SessionStore, catalog CategoryLookup, est estimator.Estimator, sched Reconfigurer, log *zap.Logger) *Profiles {
	if log == nil {
		log = zap.NewNop()
	}
	if est == nil {
		est = estimator.Disabled{}
	}
	return &Profiles{store: ps, session: ss, catalog: catalog, est: est, sched: sched, log: log}
}

// Load returns the stored profile or nil.
func (s *Profiles) Load(ctx context.Context) (*domain.Profile, error) {
	return s.store.LoadProfile(ctx)
}

// Require returns the stored profile or domain.ErrProfileMissing.
func (s *Profiles) Require(ctx context.Context) (domain.Profile, error) {
	p, err := s.store.LoadProfile(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	if p == nil {
		return domain.Profile{}, domain.ErrProfileMissing
	}
	return *p, nil
}

// Save validates p, recomputes its goal, stores it and reconfigures
// reminders.
func (s *Profiles) Save(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if err := p.Validate(); err != nil {
		return domain.Profile{}, err
	}
	favorites := make([]string, 0, len(p.FavoriteCategoryNames))
	for _, name := range p.FavoriteCategoryNames {
		cat, err := s.catalog.Lookup(name)
		if err != nil {
			return domain.Profile{}, err
		}
		favorites = append(favorites, cat.Name)
	}
	p.FavoriteCategoryNames = favorites
	p = p.Normalize()

	if err := s.store.SaveProfile(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	s.log.Info("profile saved",
		zap.Int("goal", p.DailyCalorieGoal),
		zap.Bool("notifications", p.NotificationsEnabled),
		zap.Strings("times", p.NotificationTimes),
	)
	if s.sched != nil {
		s.sched.Configure(p)
	}
	return p, nil
}

// Update loads the profile, applies fn and saves the result.
func (s *Profiles) Update(ctx context.Context, fn func(p *domain.Profile) error) (domain.Profile, error) {
	p, err := s.Require(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := fn(&p); err != nil {
		return domain.Profile{}, err
	}
	return s.Save(ctx, p)
}

func (s *Profiles) SetNotifications(ctx context.Context, enabled bool) (domain.Profile, error) {
	return s.Update(ctx, func(p *domain.Profile) error {
		p.NotificationsEnabled = enabled
		return nil
	})
}

// AddReminderTime adds an "HH:MM" slot; the set stays unique and sorted.
func (s *Profiles) AddReminderTime(ctx context.Context, hhmm string) (domain.Profile, error) {
	t, err := domain.CanonicalTime(hhmm)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.Update(ctx, func(p *domain.Profile) error {
		p.NotificationTimes = append(p.NotificationTimes, t)
		return nil
	})
}

// RemoveReminderTime drops a slot. Removing an absent slot is a no-op.
func (s *Profiles) RemoveReminderTime(ctx context.Context, hhmm string) (domain.Profile, error) {
	t, err := domain.CanonicalTime(hhmm)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.Update(ctx, func(p *domain.Profile) error {
		p.NotificationTimes = slices.DeleteFunc(p.NotificationTimes, func(x string) bool {
			c, err := domain.CanonicalTime(x)
			return err == nil && c == t
		})
		return nil
	})
}

func (s *Profiles) AddFavorite(ctx context.Context, name string) (domain.Profile, error) {
	cat, err := s.catalog.Lookup(name)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.Update(ctx, func(p *domain.Profile) error {
		p.FavoriteCategoryNames = append(p.FavoriteCategoryNames, cat.Name)
		return nil
	})
}

// RemoveFavorite drops a favorite by its catalog name. Names that no longer
// resolve in the catalog are matched case-insensitively.
func (s *Profiles) RemoveFavorite(ctx context.Context, name string) (domain.Profile, error) {
	name = strings.TrimSpace(name)
	if cat, err := s.catalog.Lookup(name); err == nil {
		name = cat.Name
	}
	return s.Update(ctx, func(p *domain.Profile) error {
		p.FavoriteCategoryNames = slices.DeleteFunc(p.FavoriteCategoryNames, func(x string) bool {
			return strings.EqualFold(x, name)
		})
		return nil
	})
}

// SetStandardMeal replaces the usual items of breakfast, lunch or dinner.
func (s *Profiles) SetStandardMeal(ctx context.Context, meal domain.MealType, items []domain.StandardMealItem) (domain.Profile, error) {
	for _, it := range items {
		if it.Name == "" || it.Calories < 0 {
			return domain.Profile{}, domain.NewValidationError("standardMeals", "items need a name and calories >= 0")
		}
	}
	return s.Update(ctx, func(p *domain.Profile) error {
		if !p.StandardMeals.Set(meal, items) {
			return fmt.Errorf("%w: %s has no standard meal", domain.ErrInvalidMealType, meal)
		}
		return nil
	})
}

// ParseStandardMeal turns a free-text description into items through the
// estimator and stores them for meal.
func (s *Profiles) ParseStandardMeal(ctx context.Context, meal domain.MealType, description string) (domain.Profile, error) {
	if meal == domain.MealSnacks || !meal.IsValid() {
		return domain.Profile{}, fmt.Errorf("%w: %s has no standard meal", domain.ErrInvalidMealType, meal)
	}
	items, err := s.est.ParseMealDescription(ctx, description)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.SetStandardMeal(ctx, meal, items)
}

// Login sets the session flag. It reports whether a profile already
// exists; without one the caller should run onboarding.
func (s *Profiles) Login(ctx context.Context) (bool, error) {
	if err := s.session.SetLoggedIn(ctx, true); err != nil {
		return false, err
	}
	p, err := s.store.LoadProfile(ctx)
	if err != nil {
		return false, err
	}
	if p != nil && s.sched != nil {
		s.sched.Configure(*p)
	}
	return p != nil, nil
}

// Logout wipes the profile, every log, the session and pending reminders.
func (s *Profiles) Logout(ctx context.Context) error {
	if s.sched != nil {
		s.sched.CancelAll()
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	if err := s.session.ClearSession(ctx); err != nil {
		return err
	}
	s.log.Info("logged out, local data cleared")
	return nil
}

func (s *Profiles) LoggedIn(ctx context.Context) (bool, error) {
	return s.session.IsLoggedIn(ctx)
}

// EnsureLoggedIn returns domain.ErrNotLoggedIn when the session flag is
// unset.
func (s *Profiles) EnsureLoggedIn(ctx context.Context) error {
	ok, err := s.session.IsLoggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotLoggedIn
	}
	return nil
}
