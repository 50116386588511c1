package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/bridge"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/scheduler"
	"github.com/Carveion/JUNKFU-V2/internal/service"
	"github.com/Carveion/JUNKFU-V2/internal/store"
)

// BotAPI is the subset of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dispatcher delivers reminder clicks; *bridge.Bridge implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, click bridge.Click) (bool, error)
}

// PendingLister reports armed reminder slots; *scheduler.Scheduler
// implements it.
type PendingLister interface {
	Pending() map[string]time.Time
}

// PendingFunc adapts a function to PendingLister.
type PendingFunc func() map[string]time.Time

func (f PendingFunc) Pending() map[string]time.Time { return f() }

var ErrNoChat = errors.New("no chat bound, send /start to the bot")

const maxShownReminders = 256

// Router is the Telegram surface of the daemon. It shows reminders with
// inline action buttons, hands button clicks to the bridge and hosts the
// custom entry conversation.
type Router struct {
	bot      BotAPI
	log      *zap.Logger
	session  store.SessionStore
	logbook  *service.Logbook
	pending  PendingLister
	onlyChat int64

	mu         sync.RWMutex
	dispatcher Dispatcher
	state      map[int64]domain.MealType // chatID -> meal awaiting a custom description
	shown      map[string]domain.Reminder
	shownOrder []string
	seq        uint64
}

var (
	_ scheduler.Notifier            = (*Router)(nil)
	_ scheduler.PermissionRequester = (*Router)(nil)
	_ service.CustomEntryPrompter   = (*Router)(nil)
)

// NewRouter creates a new Telegram router. When onlyChat is non-zero, only
// that chat may bind itself with /start.
func NewRouter(bot BotAPI, log *zap.Logger, session store.SessionStore, logbook *service.Logbook, pending PendingLister, onlyChat int64) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		bot:      bot,
		log:      log,
		session:  session,
		logbook:  logbook,
		pending:  pending,
		onlyChat: onlyChat,
		state:    make(map[int64]domain.MealType),
		shown:    make(map[string]domain.Reminder),
	}
}

// SetDispatcher connects the bridge. Clicks before that are dropped.
func (r *Router) SetDispatcher(d Dispatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatcher = d
}

func (r *Router) setPending(chatID int64, meal domain.MealType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = meal
}

func (r *Router) getPending(chatID int64) (domain.MealType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.state[chatID]
	return m, ok
}

func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// remember stores a shown reminder under a short token; callback data is
// limited to 64 bytes.
func (r *Router) remember(rem domain.Reminder) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	token := strconv.FormatUint(r.seq, 36)
	r.shown[token] = rem
	r.shownOrder = append(r.shownOrder, token)
	if len(r.shownOrder) > maxShownReminders {
		delete(r.shown, r.shownOrder[0])
		r.shownOrder = r.shownOrder[1:]
	}
	return token
}

func (r *Router) recall(token string) (domain.Reminder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rem, ok := r.shown[token]
	return rem, ok
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil && upd.Message.Chat != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID)
		case strings.HasPrefix(text, "/today"):
			r.handleToday(ctx, chatID)
		case strings.HasPrefix(text, "/status"):
			r.handleStatus(ctx, chatID)
		case strings.HasPrefix(text, "/custom"):
			r.handleCustomCommand(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/custom")))
		case strings.HasPrefix(text, "/cancel"):
			r.clearPending(chatID)
			r.sendText(chatID, "Cancelled.")
		default:
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil {
		r.handleCallback(ctx, upd.CallbackQuery)
	}
}

// Notify shows a reminder in the bound chat.
func (r *Router) Notify(ctx context.Context, rem domain.Reminder) error {
	chatID, ok, err := r.session.ChatID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoChat
	}
	token := r.remember(rem)
	msg := tgbotapi.NewMessage(chatID, reminderText(rem))
	msg.ReplyMarkup = reminderKeyboard(token, rem)
	_, err = r.bot.Send(msg)
	return err
}

// RequestPermission reports whether a chat is bound to receive reminders.
func (r *Router) RequestPermission(ctx context.Context) (bool, error) {
	_, ok, err := r.session.ChatID(ctx)
	return ok, err
}

// PromptCustomEntry asks the bound chat to describe a meal.
func (r *Router) PromptCustomEntry(ctx context.Context, meal domain.MealType) error {
	chatID, ok, err := r.session.ChatID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoChat
	}
	r.setPending(chatID, meal)
	_, err = r.bot.Send(tgbotapi.NewMessage(chatID, customPromptText(meal)))
	return err
}
