package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// Handler applies bridged messages in the foreground.
type Handler interface {
	QuickAdd(ctx context.Context, draft domain.EntryDraft) error
	OpenCustom(ctx context.Context, meal domain.MealType) error
}

var ErrClientClosed = errors.New("client closed")

// Foreground is an in-process client with a buffered inbox.
type Foreground struct {
	id      string
	visible atomic.Bool
	inbox   chan Message
	done    chan struct{}
	once    sync.Once
	log     *zap.Logger
}

func NewForeground(id string, buffer int, log *zap.Logger) *Foreground {
	if log == nil {
		log = zap.NewNop()
	}
	return &Foreground{
		id:    id,
		inbox: make(chan Message, buffer),
		done:  make(chan struct{}),
		log:   log.With(zap.String("client", id)),
	}
}

func (f *Foreground) ID() string { return f.id }

func (f *Foreground) Visible() bool { return f.visible.Load() }

func (f *Foreground) SetVisible(v bool) { f.visible.Store(v) }

// Focus brings the client to the front.
func (f *Foreground) Focus(context.Context) error {
	select {
	case <-f.done:
		return ErrClientClosed
	default:
	}
	f.visible.Store(true)
	return nil
}

func (f *Foreground) Post(ctx context.Context, m Message) error {
	select {
	case <-f.done:
		return ErrClientClosed
	default:
	}
	select {
	case <-f.done:
		return ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	case f.inbox <- m:
		return nil
	}
}

// Close stops Run and rejects further posts.
func (f *Foreground) Close() {
	f.once.Do(func() { close(f.done) })
}

// Run applies inbox messages to h until ctx is done or the client is
// closed. Handler errors are logged and do not stop the loop.
func (f *Foreground) Run(ctx context.Context, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case m := <-f.inbox:
			if err := f.apply(ctx, h, m); err != nil {
				f.log.Error("apply message", zap.String("type", string(m.Type)), zap.Error(err))
			}
		}
	}
}

func (f *Foreground) apply(ctx context.Context, h Handler, m Message) error {
	switch m.Type {
	case QuickAddFood:
		d, err := m.QuickAdd()
		if err != nil {
			return err
		}
		return h.QuickAdd(ctx, d)
	case OpenCustomModal:
		p, err := m.CustomModal()
		if err != nil {
			return err
		}
		return h.OpenCustom(ctx, p.MealType)
	}
	f.log.Warn("unknown message type", zap.String("type", string(m.Type)))
	return nil
}

// Hub keeps the live clients. New clients come from the open function.
type Hub struct {
	mu      sync.Mutex
	clients []Client
	open    func(ctx context.Context) (Client, error)
}

func NewHub(open func(ctx context.Context) (Client, error)) *Hub {
	return &Hub{open: open}
}

func (h *Hub) Add(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients = append(h.clients, c)
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.clients {
		if c.ID() == id {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			return
		}
	}
}

func (h *Hub) List() []Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Client(nil), h.clients...)
}

// Open creates a client and registers it.
func (h *Hub) Open(ctx context.Context) (Client, error) {
	if h.open == nil {
		return nil, ErrNoClient
	}
	c, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	h.Add(c)
	return c, nil
}
