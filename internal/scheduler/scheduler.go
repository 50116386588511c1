package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// Notifier shows a reminder on the device. A nil Notifier means the
// notification capability is unavailable.
type Notifier interface {
	Notify(ctx context.Context, r domain.Reminder) error
}

// PermissionRequester is implemented by notifiers that need the user's
// consent before showing reminders.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// State is the observable state of the scheduler.
type State int

const (
	Idle State = iota
	Scheduled
)

func (s State) String() string {
	if s == Scheduled {
		return "scheduled"
	}
	return "idle"
}

const notifyTimeout = 15 * time.Second

type slot struct {
	at    time.Time
	timer clockwork.Timer
}

// Scheduler arms one timer per reminder time of the active profile. Each
// timer re-arms itself for the next day after firing.
type Scheduler struct {
	clock    clockwork.Clock
	notifier Notifier
	log      *zap.Logger

	mu      sync.Mutex
	gen     uint64
	profile domain.Profile
	slots   map[string]*slot
}

// New creates a Scheduler. notifier may be nil.
func New(clock clockwork.Clock, notifier Notifier, log *zap.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		clock:    clock,
		notifier: notifier,
		log:      log,
		slots:    make(map[string]*slot),
	}
}

// Configure replaces the whole schedule with the reminders of p. Existing
// timers are cancelled before new ones are armed.
func (s *Scheduler) Configure(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	if s.notifier == nil {
		s.log.Debug("notifications unavailable, scheduler idle")
		return
	}
	if !p.RemindersActive() {
		return
	}

	s.profile = p
	now := s.clock.Now()
	for _, hhmm := range p.NotificationTimes {
		if _, ok := s.slots[hhmm]; ok {
			continue
		}
		next, err := domain.NextOccurrence(now, hhmm)
		if err != nil {
			s.log.Warn("skip reminder time", zap.String("time", hhmm), zap.Error(err))
			continue
		}
		s.armLocked(hhmm, now, next)
	}
	s.log.Info("reminders scheduled", zap.Int("slots", len(s.slots)))
}

// CancelAll stops every pending timer. Safe to call repeatedly.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Run blocks until ctx is done, then cancels all timers.
func (s *Scheduler) Run(ctx context.Context) {
	<-ctx.Done()
	s.log.Info("scheduler stopping")
	s.CancelAll()
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.slots) == 0 {
		return Idle
	}
	return Scheduled
}

// Pending returns the next fire instant of every armed slot.
func (s *Scheduler) Pending() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.slots))
	for hhmm, sl := range s.slots {
		out[hhmm] = sl.at
	}
	return out
}

// PendingSlots returns the armed slots ordered by time of day.
func (s *Scheduler) PendingSlots() []string {
	pending := s.Pending()
	out := make([]string, 0, len(pending))
	for hhmm := range pending {
		out = append(out, hhmm)
	}
	sort.Strings(out)
	return out
}

func (s *Scheduler) cancelLocked() {
	for _, sl := range s.slots {
		sl.timer.Stop()
	}
	s.slots = make(map[string]*slot)
	s.profile = domain.Profile{}
	// invalidates callbacks whose timers already fired but have not taken the lock yet
	s.gen++
}

func (s *Scheduler) armLocked(hhmm string, now, at time.Time) {
	gen := s.gen
	sl := &slot{at: at}
	sl.timer = s.clock.AfterFunc(at.Sub(now), func() { s.fire(gen, hhmm, sl) })
	s.slots[hhmm] = sl
	s.log.Debug("reminder armed", zap.String("slot", hhmm), zap.Time("at", at))
}

// CatchUp fires every slot whose wall-clock time has already passed. Timers
// run on the monotonic clock, which stands still while the host is
// suspended, so after a wakeup they would fire late. It returns the number
// of slots fired.
func (s *Scheduler) CatchUp() int {
	s.mu.Lock()
	now := s.clock.Now()
	gen := s.gen
	due := make(map[string]*slot)
	for hhmm, sl := range s.slots {
		if !sl.at.After(now) {
			sl.timer.Stop()
			due[hhmm] = sl
		}
	}
	s.mu.Unlock()

	for hhmm, sl := range due {
		s.log.Info("reminder overdue, firing now", zap.String("slot", hhmm), zap.Time("at", sl.at))
		s.fire(gen, hhmm, sl)
	}
	return len(due)
}

// fire delivers the reminder of armed. A callback whose slot was re-armed or
// cancelled in the meantime is dropped.
func (s *Scheduler) fire(gen uint64, hhmm string, armed *slot) {
	s.mu.Lock()
	sl, ok := s.slots[hhmm]
	if gen != s.gen || !ok || sl != armed {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	reminder := domain.BuildReminder(s.profile, hhmm, domain.MealTypeAt(now))

	base := now
	if sl.at.After(base) {
		base = sl.at
	}
	next, err := domain.NextOccurrence(base, hhmm)
	if err != nil {
		delete(s.slots, hhmm)
		s.log.Error("re-arm reminder", zap.String("slot", hhmm), zap.Error(err))
	} else {
		s.armLocked(hhmm, now, next)
	}
	notifier := s.notifier
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := notifier.Notify(ctx, reminder); err != nil {
		s.log.Error("notify failed", zap.String("slot", hhmm), zap.Error(err))
		return
	}
	s.log.Info("reminder sent",
		zap.String("slot", hhmm),
		zap.String("meal", reminder.MealType.String()),
		zap.Int("actions", len(reminder.Actions)),
	)
}

// RequestPermission asks the notifier for consent. A missing notifier is
// reported as not granted; notifiers without a consent step are granted.
func RequestPermission(ctx context.Context, n Notifier) bool {
	if n == nil {
		return false
	}
	pr, ok := n.(PermissionRequester)
	if !ok {
		return true
	}
	granted, err := pr.RequestPermission(ctx)
	return err == nil && granted
}
