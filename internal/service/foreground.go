package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// CustomEntryPrompter starts the interactive custom entry flow for a meal.
type CustomEntryPrompter interface {
	PromptCustomEntry(ctx context.Context, meal domain.MealType) error
}

// ForegroundHandler applies bridged reminder actions: quick adds go to
// today's log, custom entry requests go to the prompter.
type ForegroundHandler struct {
	Logbook  *Logbook
	Prompter CustomEntryPrompter
	Log      *zap.Logger
}

func (h *ForegroundHandler) QuickAdd(ctx context.Context, draft domain.EntryDraft) error {
	_, err := h.Logbook.AddForToday(ctx, draft)
	return err
}

// OpenCustom forwards to the prompter. Without one the request is logged
// and dropped.
func (h *ForegroundHandler) OpenCustom(ctx context.Context, meal domain.MealType) error {
	if h.Prompter == nil {
		if h.Log != nil {
			h.Log.Info("custom entry requested, no interactive surface", zap.String("meal", meal.String()))
		}
		return nil
	}
	return h.Prompter.PromptCustomEntry(ctx, meal)
}
