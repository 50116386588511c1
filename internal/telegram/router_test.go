package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carveion/JUNKFU-V2/internal/bridge"
	"github.com/Carveion/JUNKFU-V2/internal/catalog"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/estimator"
	"github.com/Carveion/JUNKFU-V2/internal/service"
	"github.com/Carveion/JUNKFU-V2/internal/store"
)

const chat int64 = 4242

var lunchtime = time.Date(2025, time.May, 5, 13, 15, 0, 0, time.UTC)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) lastText(t *testing.T) string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.sent)
	msg, ok := b.sent[len(b.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg.Text
}

func (b *fakeBot) sentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

type fakeDispatcher struct {
	clicks chan bridge.Click
}

func (d *fakeDispatcher) Dispatch(_ context.Context, c bridge.Click) (bool, error) {
	d.clicks <- c
	return true, nil
}

type fakeEstimator struct {
	est *estimator.Estimate
	err error
}

func (f *fakeEstimator) Estimate(context.Context, string) (*estimator.Estimate, error) {
	return f.est, f.err
}

func (f *fakeEstimator) ParseMealDescription(context.Context, string) ([]domain.StandardMealItem, error) {
	return nil, f.err
}

type staticPending map[string]time.Time

func (p staticPending) Pending() map[string]time.Time { return p }

type fixture struct {
	bot    *fakeBot
	repo   *store.SQLiteRepo
	est    *fakeEstimator
	router *Router
}

func newFixture(t *testing.T, onlyChat int64) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(lunchtime)
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "junkfu.db"), store.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	cat, err := catalog.Load()
	require.NoError(t, err)

	est := &fakeEstimator{}
	bot := &fakeBot{}
	lb := service.NewLogbook(repo, repo, cat, est, clock, nil)
	pending := staticPending{
		"19:00": time.Date(2025, time.May, 5, 19, 0, 0, 0, time.UTC),
		"08:00": time.Date(2025, time.May, 6, 8, 0, 0, 0, time.UTC),
	}
	return &fixture{
		bot:    bot,
		repo:   repo,
		est:    est,
		router: NewRouter(bot, nil, repo, lb, pending, onlyChat),
	}
}

func message(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}

func click(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func reminder() domain.Reminder {
	p := domain.Profile{FavoriteCategoryNames: []string{"Pizza Slice"}}
	p.StandardMeals.Lunch = []domain.StandardMealItem{{Name: "Chicken Salad", Calories: 450}}
	return domain.BuildReminder(p, "13:00", domain.MealLunch)
}

func TestStart_BindsChat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)

	f.router.HandleUpdate(ctx, message(chat, "/start"))

	id, ok, err := f.repo.ChatID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, chat, id)
	assert.Equal(t, startText, f.bot.lastText(t))

	granted, err := f.router.RequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestStart_ForeignChatIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, chat)

	f.router.HandleUpdate(ctx, message(99, "/start"))

	_, ok, err := f.repo.ChatID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, f.bot.sentCount())
}

func TestNotify_WithoutChat(t *testing.T) {
	f := newFixture(t, 0)
	err := f.router.Notify(context.Background(), reminder())
	assert.ErrorIs(t, err, ErrNoChat)

	granted, err := f.router.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestNotify_RendersActions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.router.HandleUpdate(ctx, message(chat, "/start"))

	require.NoError(t, f.router.Notify(ctx, reminder()))

	f.bot.mu.Lock()
	msg := f.bot.sent[len(f.bot.sent)-1].(tgbotapi.MessageConfig)
	f.bot.mu.Unlock()
	assert.Equal(t, chat, msg.ChatID)
	assert.Equal(t, "JUNKFU: Time for Lunch?\nReady to track your meal? It only takes a second.", msg.Text)

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "Track: Chicken Salad", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "n:1:track_standard", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "n:1:track_favorite", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "Custom Entry...", kb.InlineKeyboard[2][0].Text)
}

func TestCallback_DispatchesClick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	d := &fakeDispatcher{clicks: make(chan bridge.Click, 1)}
	f.router.SetDispatcher(d)
	f.router.HandleUpdate(ctx, message(chat, "/start"))
	require.NoError(t, f.router.Notify(ctx, reminder()))

	f.router.HandleUpdate(ctx, click(chat, "n:1:track_favorite"))

	select {
	case c := <-d.clicks:
		assert.Equal(t, "1", c.ID)
		assert.Equal(t, domain.ActionTrackFavorite, c.Action)
		assert.Equal(t, "Pizza Slice", c.Reminder.FavoriteCategory)
	case <-time.After(2 * time.Second):
		t.Fatal("click was not dispatched")
	}

	f.bot.mu.Lock()
	defer f.bot.mu.Unlock()
	require.Len(t, f.bot.requests, 2)
	_, isEdit := f.bot.requests[1].(tgbotapi.EditMessageReplyMarkupConfig)
	assert.True(t, isEdit)
}

func TestCallback_ExpiredOrUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	d := &fakeDispatcher{clicks: make(chan bridge.Click, 1)}
	f.router.SetDispatcher(d)

	f.router.HandleUpdate(ctx, click(chat, "n:zz:add_custom"))
	f.router.HandleUpdate(ctx, click(chat, "garbage"))

	f.bot.mu.Lock()
	require.Len(t, f.bot.requests, 2)
	cb := f.bot.requests[0].(tgbotapi.CallbackConfig)
	f.bot.mu.Unlock()
	assert.Equal(t, "This reminder has expired.", cb.Text)
	assert.Empty(t, d.clicks)
}

func TestCustomPrompt_FreeFormLogsEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.router.HandleUpdate(ctx, message(chat, "/start"))
	grams := 220.0
	f.est.est = &estimator.Estimate{FoodName: "Pepperoni Pizza", Calories: 560, AssumedGrams: &grams}

	require.NoError(t, f.router.PromptCustomEntry(ctx, domain.MealDinner))
	assert.Contains(t, f.bot.lastText(t), "for dinner")

	f.router.HandleUpdate(ctx, message(chat, "two slices of pepperoni pizza"))
	assert.Equal(t, "Logged for Dinner: Pepperoni Pizza, 560 kcal (~220g)", f.bot.lastText(t))

	entries, err := f.repo.LoadDay(ctx, "2025-05-05")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsCustom)
	assert.Equal(t, domain.MealDinner, entries[0].MealType)

	// the flow is one-shot
	n := f.bot.sentCount()
	f.router.HandleUpdate(ctx, message(chat, "another"))
	assert.Equal(t, n, f.bot.sentCount())
}

func TestCustomCommand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.router.HandleUpdate(ctx, message(chat, "/start"))
	f.est.est = &estimator.Estimate{FoodName: "Ramen", Calories: 500}

	f.router.HandleUpdate(ctx, message(chat, "/custom bowl of ramen"))
	assert.Equal(t, "Logged for Lunch: Ramen, 500 kcal", f.bot.lastText(t))

	f.est.est = nil
	f.est.err = errors.Join(domain.ErrEstimatorFailure, errors.New("boom"))
	f.router.HandleUpdate(ctx, message(chat, "/custom"))
	f.router.HandleUpdate(ctx, message(chat, "mystery stew"))
	assert.Contains(t, f.bot.lastText(t), "couldn't estimate")

	entries, err := f.repo.LoadDay(ctx, "2025-05-05")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCancelClearsPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.router.HandleUpdate(ctx, message(chat, "/start"))
	f.router.HandleUpdate(ctx, message(chat, "/custom"))
	f.router.HandleUpdate(ctx, message(chat, "/cancel"))

	_, ok := f.router.getPending(chat)
	assert.False(t, ok)
}

func TestTodayAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.router.HandleUpdate(ctx, message(chat, "/start"))
	_, err := f.repo.AppendEntry(ctx, "2025-05-05", domain.EntryDraft{
		Name: "Burger", Calories: 354, BaseCalories: 354,
		Quantity: domain.Serving(domain.ServingMedium), QuantityUnit: domain.UnitServing,
		QuantityLabel: "Medium", MealType: domain.MealLunch,
	})
	require.NoError(t, err)

	f.router.HandleUpdate(ctx, message(chat, "/today"))
	text := f.bot.lastText(t)
	assert.Contains(t, text, "📅 2025-05-05")
	assert.Contains(t, text, "Eaten: 354 kcal")
	assert.Contains(t, text, "• Burger, Medium: 354 kcal")
	assert.NotContains(t, text, "Breakfast")

	f.router.HandleUpdate(ctx, message(chat, "/status"))
	assert.Equal(t, statusTitle+"\n• 19:00 → Mon 05 May 19:00\n• 08:00 → Tue 06 May 08:00", f.bot.lastText(t))
}

func TestParseActionData(t *testing.T) {
	token, id, ok := parseActionData("n:a1:add_custom")
	assert.True(t, ok)
	assert.Equal(t, "a1", token)
	assert.Equal(t, domain.ActionAddCustom, id)

	for _, bad := range []string{"", "n:a1", "x:a1:add_custom", "n::add_custom", "n:a1:eat"} {
		_, _, ok := parseActionData(bad)
		assert.False(t, ok, bad)
	}
}
