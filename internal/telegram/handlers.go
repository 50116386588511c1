package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/bridge"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

const dispatchTimeout = 30 * time.Second

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// boundChat reports whether chatID is the chat reminders go to.
func (r *Router) boundChat(ctx context.Context, chatID int64) bool {
	bound, ok, err := r.session.ChatID(ctx)
	if err != nil {
		r.log.Error("read bound chat", zap.Error(err))
		return false
	}
	return ok && bound == chatID
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	if r.onlyChat != 0 && chatID != r.onlyChat {
		r.log.Warn("start from foreign chat ignored", zap.Int64("chatID", chatID))
		return
	}
	if err := r.session.SetChatID(ctx, chatID); err != nil {
		r.log.Error("bind chat failed", zap.Error(err))
		r.sendText(chatID, "Could not connect this chat. Please try again later.")
		return
	}
	r.log.Info("chat bound", zap.Int64("chatID", chatID))
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleToday(ctx context.Context, chatID int64) {
	if !r.boundChat(ctx, chatID) {
		return
	}
	sum, err := r.logbook.Day(ctx, "")
	if err != nil {
		r.log.Error("day summary failed", zap.Error(err))
		r.sendText(chatID, "Error reading today's log.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, summaryText(sum))
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleStatus(ctx context.Context, chatID int64) {
	if !r.boundChat(ctx, chatID) {
		return
	}
	var pending map[string]time.Time
	if r.pending != nil {
		pending = r.pending.Pending()
	}
	r.sendText(chatID, statusText(pending))
}

func (r *Router) handleCustomCommand(ctx context.Context, chatID int64, description string) {
	if !r.boundChat(ctx, chatID) {
		return
	}
	// the logbook picks the meal from its clock
	if description == "" {
		r.setPending(chatID, "")
		r.sendText(chatID, customPromptText(""))
		return
	}
	r.logCustom(ctx, chatID, description, "")
}

// --- Reminder buttons ---

func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	token, action, ok := parseActionData(cb.Data)
	if !ok {
		// unknown callback, ignore
		_ = r.answerCallback(cb.ID, "")
		return
	}
	rem, ok := r.recall(token)
	if !ok || !rem.HasAction(action) {
		_ = r.answerCallback(cb.ID, "This reminder has expired.")
		return
	}

	r.mu.RLock()
	d := r.dispatcher
	r.mu.RUnlock()
	if d == nil {
		_ = r.answerCallback(cb.ID, "Not ready yet, try again in a moment.")
		return
	}

	ack := ""
	if action != domain.ActionAddCustom {
		ack = "Adding to today's log"
	}
	_ = r.answerCallback(cb.ID, ack)
	// close the reminder: its buttons are single use
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := r.bot.Request(edit); err != nil {
		r.log.Debug("remove reminder buttons", zap.Error(err))
	}

	click := bridge.Click{ID: token, Action: action, Reminder: rem}
	go func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		if _, err := d.Dispatch(dctx, click); err != nil {
			r.log.Error("dispatch click failed",
				zap.String("action", string(action)),
				zap.Error(err),
			)
		}
	}()
}

// --- Custom entry flow ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	meal, ok := r.getPending(chatID)
	if !ok || text == "" {
		// No pending flow: ignore free-form message
		return
	}
	r.clearPending(chatID)
	r.logCustom(ctx, chatID, text, meal)
}

func (r *Router) logCustom(ctx context.Context, chatID int64, description string, meal domain.MealType) {
	entry, err := r.logbook.AddCustom(ctx, "", description, meal)
	switch {
	case errors.Is(err, domain.ErrEstimatorFailure):
		r.log.Warn("custom entry estimate failed", zap.Error(err))
		r.sendText(chatID, "Sorry, I couldn't estimate the calories for that. Please try again.")
		return
	case err != nil:
		r.log.Error("custom entry failed", zap.Error(err))
		r.sendText(chatID, "Could not save the entry.")
		return
	}
	r.sendText(chatID, fmt.Sprintf("Logged for %s: %s, %d kcal%s", entry.MealType, entry.Name, entry.Calories, gramsSuffix(entry.AssumedGrams)))
}
