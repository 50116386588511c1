package scheduler

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// ProfileSource is the part of the profile store the watcher reads.
type ProfileSource interface {
	LoadProfile(ctx context.Context) (*domain.Profile, error)
}

// Configurer is what the watcher drives; *Scheduler implements it.
type Configurer interface {
	Configure(p domain.Profile)
	CancelAll()
}

type catchUpper interface {
	CatchUp() int
}

// ProfileWatcher periodically reloads the stored profile and reconfigures
// the scheduler when it changed. The profile may be edited by another
// process (the CLI) while the daemon runs.
type ProfileWatcher struct {
	source   ProfileSource
	target   Configurer
	log      *zap.Logger
	cron     *cron.Cron
	interval time.Duration

	mu     sync.Mutex
	last   *domain.Profile
	primed bool
}

func NewProfileWatcher(source ProfileSource, target Configurer, interval time.Duration, log *zap.Logger) *ProfileWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileWatcher{
		source:   source,
		target:   target,
		log:      log,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start performs an initial sync and then polls on the configured interval.
func (w *ProfileWatcher) Start(ctx context.Context) error {
	w.Sync(ctx)

	cronExpr := fmt.Sprintf("@every %s", w.interval.String())
	if _, err := w.cron.AddFunc(cronExpr, func() { w.Tick(context.Background()) }); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	w.cron.Start()
	w.log.Info("profile watcher started", zap.Duration("interval", w.interval))
	return nil
}

// Stop waits for a running sync to finish.
func (w *ProfileWatcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.log.Info("profile watcher stopped")
}

// Tick is one poll: sync the profile, then fire any slot the host slept
// through.
func (w *ProfileWatcher) Tick(ctx context.Context) {
	w.Sync(ctx)
	if c, ok := w.target.(catchUpper); ok {
		if n := c.CatchUp(); n > 0 {
			w.log.Info("fired overdue reminders", zap.Int("count", n))
		}
	}
}

// Sync loads the profile once and applies it if it differs from the last
// applied one. It reports whether the scheduler was touched.
func (w *ProfileWatcher) Sync(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p, err := w.source.LoadProfile(ctx)
	if err != nil {
		w.log.Error("reload profile", zap.Error(err))
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.primed && reflect.DeepEqual(w.last, p) {
		return false
	}
	w.primed = true
	w.last = p

	if p == nil {
		w.target.CancelAll()
		w.log.Info("profile removed, reminders cancelled")
		return true
	}
	w.target.Configure(*p)
	w.log.Info("profile changed, reminders reconfigured", zap.Strings("times", p.NotificationTimes))
	return true
}
