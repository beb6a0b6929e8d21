package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/rideshare/internal/observability"
)

// Handler receives decoded push events. Handlers for one channel are
// invoked from a single goroutine in delivery order, so they may update
// view state without further synchronization.
type Handler func(Event)

// Subscription is a registered handler. Close removes exactly that
// handler; closing twice is harmless.
type Subscription interface {
	Close()
}

// Channel is the session-scoped push connection. It is opened once after
// authentication, shared by all views, and closed on logout.
type Channel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu       sync.Mutex
	nextID   uint64
	handlers map[string][]registration
	closed   bool
	done     chan struct{}
}

type registration struct {
	id uint64
	fn Handler
}

// Dial opens the websocket connection, authenticating with the bearer
// token, and starts the read loop.
func Dial(ctx context.Context, wsURL, token string, logger *slog.Logger) (*Channel, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, err
	}
	ch := newChannel(logger)
	ch.conn = conn
	go ch.readLoop()
	return ch, nil
}

func newChannel(logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		logger:   logger,
		handlers: make(map[string][]registration),
		done:     make(chan struct{}),
	}
}

// Subscribe registers a handler for one event name.
func (c *Channel) Subscribe(event string, fn Handler) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.handlers[event] = append(c.handlers[event], registration{id: id, fn: fn})
	return &subscription{channel: c, event: event, id: id}
}

type subscription struct {
	channel *Channel
	event   string
	id      uint64
	once    sync.Once
}

func (s *subscription) Close() {
	s.once.Do(func() {
		s.channel.unsubscribe(s.event, s.id)
	})
}

func (c *Channel) unsubscribe(event string, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	regs := c.handlers[event]
	for i, r := range regs {
		if r.id == id {
			c.handlers[event] = append(regs[:i], regs[i+1:]...)
			return
		}
	}
}

// HandlerCount reports active handlers for an event name.
func (c *Channel) HandlerCount(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[event])
}

// Close tears the connection down and stops the read loop.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	close(c.done)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Done is closed when the read loop exits, whether by Close or by a
// connection failure.
func (c *Channel) Done() <-chan struct{} { return c.done }

func (c *Channel) readLoop() {
	defer c.Close()
	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn("channel read failed", "error", err)
			}
			return
		}
		ev, err := decodeEvent(f)
		if err != nil {
			observability.EventsUnknownTotal.Inc()
			c.logger.Debug("dropping event", "event", f.Event, "error", err)
			continue
		}
		observability.EventsReceivedTotal.WithLabelValues(f.Event).Inc()
		c.dispatch(ev)
	}
}

func (c *Channel) dispatch(ev Event) {
	c.mu.Lock()
	regs := make([]registration, len(c.handlers[ev.EventName()]))
	copy(regs, c.handlers[ev.EventName()])
	c.mu.Unlock()
	for _, r := range regs {
		r.fn(ev)
	}
}
