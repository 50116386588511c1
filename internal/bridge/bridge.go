package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// DefaultGrace is how long Dispatch waits after activating a client before
// posting, giving a freshly opened client time to start listening.
const DefaultGrace = 500 * time.Millisecond

const seenCapacity = 1024

// Client is a foreground context that can receive messages.
type Client interface {
	ID() string
	Visible() bool
	Focus(ctx context.Context) error
	Post(ctx context.Context, m Message) error
}

// Clients enumerates live clients and opens new ones.
type Clients interface {
	List() []Client
	Open(ctx context.Context) (Client, error)
}

// CategoryLookup resolves favorite category names.
type CategoryLookup interface {
	Find(name string) (domain.Category, bool)
}

// Click is a user action on a shown reminder.
type Click struct {
	ID       string
	Action   domain.ActionID
	Reminder domain.Reminder
}

// Bridge turns reminder clicks into messages for a foreground client.
type Bridge struct {
	clients Clients
	catalog CategoryLookup
	clock   clockwork.Clock
	grace   time.Duration
	log     *zap.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

type Option func(*Bridge)

func WithClock(c clockwork.Clock) Option { return func(b *Bridge) { b.clock = c } }

func WithGrace(d time.Duration) Option { return func(b *Bridge) { b.grace = d } }

func WithLogger(l *zap.Logger) Option { return func(b *Bridge) { b.log = l } }

func New(clients Clients, catalog CategoryLookup, opts ...Option) *Bridge {
	b := &Bridge{
		clients: clients,
		catalog: catalog,
		clock:   clockwork.NewRealClock(),
		grace:   DefaultGrace,
		log:     zap.NewNop(),
		seen:    make(map[string]struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// ErrNoClient is returned when no client exists and none could be opened.
var ErrNoClient = errors.New("no foreground client")

// Resolve maps a click to the message it produces. ok is false when the
// click carries nothing to do (unknown action, missing standard meal,
// favorite no longer in the catalog).
func (b *Bridge) Resolve(click Click) (Message, bool, error) {
	r := click.Reminder
	switch click.Action {
	case domain.ActionAddCustom:
		m, err := NewOpenCustom(r.MealType)
		return m, err == nil, err

	case domain.ActionTrackStandard:
		if r.StandardMeal == nil {
			return Message{}, false, nil
		}
		item := *r.StandardMeal
		m, err := NewQuickAdd(domain.EntryDraft{
			Name:          item.Name,
			Calories:      item.Calories,
			BaseCalories:  item.Calories,
			Quantity:      domain.Count(1),
			QuantityUnit:  domain.UnitPieces,
			QuantityLabel: item.Name,
			MealType:      r.MealType,
		})
		return m, err == nil, err

	case domain.ActionTrackFavorite:
		if r.FavoriteCategory == "" {
			return Message{}, false, nil
		}
		cat, ok := b.catalog.Find(r.FavoriteCategory)
		if !ok {
			return Message{}, false, nil
		}
		m, err := NewQuickAdd(cat.Draft(r.MealType, domain.Serving(domain.ServingMedium), domain.UnitServing))
		return m, err == nil, err
	}
	return Message{}, false, nil
}

// Dispatch delivers the message of a click at most once per click id. It
// reports whether a message was posted.
func (b *Bridge) Dispatch(ctx context.Context, click Click) (bool, error) {
	if !b.markSeen(click.ID) {
		b.log.Debug("duplicate click ignored", zap.String("click", click.ID))
		return false, nil
	}

	msg, ok, err := b.Resolve(click)
	if err != nil {
		return false, err
	}
	if !ok {
		b.log.Info("click resolved to nothing",
			zap.String("click", click.ID),
			zap.String("action", string(click.Action)),
		)
		return false, nil
	}

	client, err := b.activate(ctx)
	if err != nil {
		return false, err
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-b.clock.After(b.grace):
	}

	if err := client.Post(ctx, msg); err != nil {
		return false, fmt.Errorf("post to %s: %w", client.ID(), err)
	}
	b.log.Info("click delivered",
		zap.String("click", click.ID),
		zap.String("type", string(msg.Type)),
		zap.String("client", client.ID()),
	)
	return true, nil
}

// activate picks the visible client, else the first one, else opens a new
// client.
func (b *Bridge) activate(ctx context.Context) (Client, error) {
	list := b.clients.List()
	var target Client
	for _, c := range list {
		if c.Visible() {
			target = c
			break
		}
	}
	if target == nil && len(list) > 0 {
		target = list[0]
	}
	if target == nil {
		c, err := b.clients.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoClient, err)
		}
		if c == nil {
			return nil, ErrNoClient
		}
		return c, nil
	}
	if err := target.Focus(ctx); err != nil {
		return nil, fmt.Errorf("focus %s: %w", target.ID(), err)
	}
	return target, nil
}

func (b *Bridge) markSeen(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.seen[id]; ok {
		return false
	}
	b.seen[id] = struct{}{}
	b.order = append(b.order, id)
	if len(b.order) > seenCapacity {
		delete(b.seen, b.order[0])
		b.order = b.order[1:]
	}
	return true
}
