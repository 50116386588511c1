package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

type recordingNotifier struct {
	ch chan domain.Reminder
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan domain.Reminder, 16)}
}

func (n *recordingNotifier) Notify(_ context.Context, r domain.Reminder) error {
	n.ch <- r
	return nil
}

func (n *recordingNotifier) next(t *testing.T) domain.Reminder {
	t.Helper()
	select {
	case r := <-n.ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no reminder delivered")
		return domain.Reminder{}
	}
}

func (n *recordingNotifier) none(t *testing.T) {
	t.Helper()
	select {
	case r := <-n.ch:
		t.Fatalf("unexpected reminder for slot %s", r.Slot)
	case <-time.After(100 * time.Millisecond):
	}
}

func profileWith(times ...string) domain.Profile {
	return domain.Profile{
		Name:                  "Asha",
		Age:                   30,
		Weight:                70,
		Height:                170,
		IdealWeight:           70,
		ActivityLevel:         domain.ActivityLight,
		FavoriteCategoryNames: []string{"Burger"},
		StandardMeals: domain.StandardMeals{
			Lunch: []domain.StandardMealItem{{Name: "Dal Rice", Calories: 520}},
		},
		NotificationsEnabled: true,
		NotificationTimes:    times,
	}
}

var start = time.Date(2025, time.May, 5, 9, 0, 0, 0, time.UTC)

func TestConfigure_ArmsNextOccurrences(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	s := New(clock, newRecordingNotifier(), zap.NewNop())

	s.Configure(profileWith("08:00", "13:00"))

	assert.Equal(t, Scheduled, s.State())
	pending := s.Pending()
	require.Len(t, pending, 2)
	assert.True(t, pending["08:00"].Equal(time.Date(2025, time.May, 6, 8, 0, 0, 0, time.UTC)))
	assert.True(t, pending["13:00"].Equal(time.Date(2025, time.May, 5, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"08:00", "13:00"}, s.PendingSlots())
}

func TestFire_RearmsOnlyFiredSlot(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	n := newRecordingNotifier()
	s := New(clock, n, zap.NewNop())
	s.Configure(profileWith("08:00", "13:00"))

	clock.Advance(4 * time.Hour)

	r := n.next(t)
	assert.Equal(t, "13:00", r.Slot)
	assert.Equal(t, domain.MealLunch, r.MealType)
	assert.Equal(t, "JUNKFU: Time for Lunch?", r.Title)
	require.Len(t, r.Actions, 3)
	assert.Equal(t, "Track: Dal Rice", r.Actions[0].Title)

	pending := s.Pending()
	assert.True(t, pending["13:00"].Equal(time.Date(2025, time.May, 6, 13, 0, 0, 0, time.UTC)))
	assert.True(t, pending["08:00"].Equal(time.Date(2025, time.May, 6, 8, 0, 0, 0, time.UTC)))
	n.none(t)
}

func TestFire_NextDay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	n := newRecordingNotifier()
	s := New(clock, n, zap.NewNop())
	s.Configure(profileWith("20:00"))

	clock.Advance(11 * time.Hour)
	r := n.next(t)
	assert.Equal(t, domain.MealDinner, r.MealType)
	require.Len(t, r.Actions, 2, "no standard dinner configured")

	clock.Advance(24 * time.Hour)
	r = n.next(t)
	assert.Equal(t, "20:00", r.Slot)
}

func TestConfigure_ReplacesPreviousSchedule(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	n := newRecordingNotifier()
	s := New(clock, n, zap.NewNop())

	s.Configure(profileWith("10:00"))
	s.Configure(profileWith("11:00"))

	clock.Advance(90 * time.Minute)
	n.none(t)

	clock.Advance(time.Hour)
	r := n.next(t)
	assert.Equal(t, "11:00", r.Slot)
}

func TestCancelAll_Idle(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	n := newRecordingNotifier()
	s := New(clock, n, zap.NewNop())
	s.Configure(profileWith("10:00"))

	s.CancelAll()
	s.CancelAll()
	assert.Equal(t, Idle, s.State())

	s.Configure(profileWith())
	assert.Equal(t, Idle, s.State())

	clock.Advance(2 * time.Hour)
	n.none(t)
}

func TestConfigure_DisabledStaysIdle(t *testing.T) {
	s := New(clockwork.NewFakeClockAt(start), newRecordingNotifier(), zap.NewNop())
	p := profileWith("10:00")
	p.NotificationsEnabled = false
	s.Configure(p)
	assert.Equal(t, Idle, s.State())
}

func TestConfigure_NoNotifierStaysIdle(t *testing.T) {
	s := New(clockwork.NewFakeClockAt(start), nil, zap.NewNop())
	s.Configure(profileWith("10:00"))
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, s.Pending())
}

type consentNotifier struct {
	recordingNotifier
	granted bool
}

func (c *consentNotifier) RequestPermission(context.Context) (bool, error) { return c.granted, nil }

func TestRequestPermission(t *testing.T) {
	ctx := context.Background()
	assert.False(t, RequestPermission(ctx, nil))
	assert.True(t, RequestPermission(ctx, newRecordingNotifier()))
	assert.False(t, RequestPermission(ctx, &consentNotifier{granted: false}))
	assert.True(t, RequestPermission(ctx, &consentNotifier{granted: true}))
}

type memProfiles struct {
	mu sync.Mutex
	p  *domain.Profile
}

func (m *memProfiles) LoadProfile(context.Context) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p == nil {
		return nil, nil
	}
	cp := *m.p
	return &cp, nil
}

func (m *memProfiles) set(p *domain.Profile) {
	m.mu.Lock()
	m.p = p
	m.mu.Unlock()
}

func TestProfileWatcher_Sync(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	s := New(clock, newRecordingNotifier(), zap.NewNop())
	src := &memProfiles{}
	w := NewProfileWatcher(src, s, time.Minute, zap.NewNop())

	assert.True(t, w.Sync(ctx), "first sync always applies")
	assert.Equal(t, Idle, s.State())

	p := profileWith("10:00")
	src.set(&p)
	assert.True(t, w.Sync(ctx))
	assert.Equal(t, []string{"10:00"}, s.PendingSlots())

	assert.False(t, w.Sync(ctx), "unchanged profile is not reapplied")

	p2 := profileWith("10:00", "18:30")
	src.set(&p2)
	assert.True(t, w.Sync(ctx))
	assert.Equal(t, []string{"10:00", "18:30"}, s.PendingSlots())

	src.set(nil)
	assert.True(t, w.Sync(ctx))
	assert.Equal(t, Idle, s.State())
}

// sleepyClock delays every timer by lag, like a host that was suspended
// while the timer was pending.
type sleepyClock struct {
	*clockwork.FakeClock
	lag time.Duration
}

func (c sleepyClock) AfterFunc(d time.Duration, f func()) clockwork.Timer {
	return c.FakeClock.AfterFunc(d+c.lag, f)
}

func TestCatchUp_FiresOverdueSlotOnce(t *testing.T) {
	fake := clockwork.NewFakeClockAt(start)
	clock := sleepyClock{FakeClock: fake, lag: time.Hour}
	n := newRecordingNotifier()
	s := New(clock, n, zap.NewNop())
	s.Configure(profileWith("10:00"))

	assert.Equal(t, 0, s.CatchUp(), "nothing is due yet")

	fake.Advance(90 * time.Minute)
	n.none(t)

	require.Equal(t, 1, s.CatchUp())
	r := n.next(t)
	assert.Equal(t, "10:00", r.Slot)
	assert.Equal(t, time.Date(2025, time.May, 6, 10, 0, 0, 0, time.UTC), s.Pending()["10:00"])

	// The late timer of the caught-up slot must not deliver a second time.
	fake.Advance(time.Hour)
	n.none(t)
	assert.Equal(t, 0, s.CatchUp())
}

func TestProfileWatcher_TickCatchesUp(t *testing.T) {
	fake := clockwork.NewFakeClockAt(start)
	n := newRecordingNotifier()
	s := New(sleepyClock{FakeClock: fake, lag: 2 * time.Hour}, n, zap.NewNop())
	p := profileWith("10:00")
	src := &memProfiles{p: &p}
	w := NewProfileWatcher(src, s, time.Minute, zap.NewNop())

	w.Tick(context.Background())
	n.none(t)

	fake.Advance(time.Hour + time.Minute)
	w.Tick(context.Background())
	assert.Equal(t, "10:00", n.next(t).Slot)
}
