package store

import (
	"context"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// LogStore persists daily food logs, one partition per local date
// ("2006-01-02"). A missing partition reads as an empty log.
type LogStore interface {
	LoadDay(ctx context.Context, date string) ([]domain.FoodEntry, error)
	AppendEntry(ctx context.Context, date string, draft domain.EntryDraft) (domain.FoodEntry, error)
	UpdateEntry(ctx context.Context, date string, entry domain.FoodEntry) (domain.FoodEntry, error)
	RemoveEntry(ctx context.Context, date, id string) error
	LogDates(ctx context.Context, from, to string) ([]string, error)
}

// ProfileStore persists the single device profile. LoadProfile returns
// (nil, nil) when no profile exists.
type ProfileStore interface {
	LoadProfile(ctx context.Context) (*domain.Profile, error)
	SaveProfile(ctx context.Context, p domain.Profile) error
	Clear(ctx context.Context) error
}

// SessionStore keeps the login flag and the bound notification chat.
type SessionStore interface {
	SetLoggedIn(ctx context.Context, loggedIn bool) error
	IsLoggedIn(ctx context.Context) (bool, error)
	SetChatID(ctx context.Context, chatID int64) error
	ChatID(ctx context.Context) (int64, bool, error)
	ClearSession(ctx context.Context) error
}

// Repo is the full local storage surface.
type Repo interface {
	LogStore
	ProfileStore
	SessionStore
	Close() error
}
