package telegram

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// UI texts in English
const (
	startText = "🍔 JUNKFU is connected.\n\n" +
		"Meal reminders will show up here. Tap a button to log your usual meal, " +
		"your favorite or a custom entry.\n\n" +
		"/today shows what you ate, /custom logs a meal from a description."
	statusTitle = "⏰ Upcoming reminders:"
	noReminders = "No reminders armed. Enable them with `junkfu remind on`."
)

const callbackPrefix = "n"

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/today"),
			tgbotapi.NewKeyboardButton("/custom"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
		),
	)
}

func reminderText(rem domain.Reminder) string {
	return rem.Title + "\n" + rem.Body
}

// reminderKeyboard puts each action on its own row. Button data is
// "n:<token>:<action>".
func reminderKeyboard(token string, rem domain.Reminder) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rem.Actions))
	for _, a := range rem.Actions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(a.Title, actionData(token, a.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func actionData(token string, id domain.ActionID) string {
	return callbackPrefix + ":" + token + ":" + string(id)
}

func parseActionData(data string) (string, domain.ActionID, bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != callbackPrefix || parts[1] == "" {
		return "", "", false
	}
	id := domain.ActionID(parts[2])
	if !id.IsValid() {
		return "", "", false
	}
	return parts[1], id, true
}

func customPromptText(meal domain.MealType) string {
	if meal == "" {
		return "✍️ Describe what you ate, e.g. \"two slices of pepperoni pizza\". /cancel to stop."
	}
	return fmt.Sprintf("✍️ What did you have for %s? Describe it, e.g. \"two slices of pepperoni pizza\". /cancel to stop.",
		strings.ToLower(string(meal)))
}

func summaryText(s domain.DaySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n", s.Date)
	fmt.Fprintf(&b, "Goal: %d kcal • Eaten: %d kcal • Left: %d kcal (%d%%)\n", s.Goal, s.Consumed, s.Remaining, s.Progress)
	if s.OverGoal {
		b.WriteString("⚠️ Over your daily goal.\n")
	}
	for _, g := range s.Meals {
		if len(g.Entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d kcal)\n", g.MealType, g.Calories)
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "• %s, %s: %d kcal\n", e.Name, e.QuantityLabel, e.Calories)
		}
	}
	if s.Consumed == 0 {
		b.WriteString("\nNothing logged yet.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func statusText(pending map[string]time.Time) string {
	if len(pending) == 0 {
		return noReminders
	}
	slots := make([]string, 0, len(pending))
	for slot := range pending {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return pending[slots[i]].Before(pending[slots[j]]) })

	var b strings.Builder
	b.WriteString(statusTitle)
	for _, slot := range slots {
		fmt.Fprintf(&b, "\n• %s → %s", slot, pending[slot].Format("Mon 02 Jan 15:04"))
	}
	return b.String()
}

func gramsSuffix(g *float64) string {
	if g == nil {
		return ""
	}
	return " (~" + strconv.FormatFloat(*g, 'f', -1, 64) + "g)"
}
