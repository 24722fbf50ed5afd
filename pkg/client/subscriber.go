package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/plastmart/b2b/pkg/models"
)

const DefaultReconnectDelay = 2 * time.Second

// RefetchFunc reloads one list after it was announced as changed.
type RefetchFunc func(ctx context.Context)

// Subscriber listens for change events and refetches the matching lists.
// Events carry no data and may be missed while disconnected, so every
// registered list is refetched on each (re)connect as well.
type Subscriber struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger

	ReconnectDelay time.Duration

	mu       sync.Mutex
	handlers map[string][]RefetchFunc
}

func NewSubscriber(wsURL string, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &Subscriber{
		url:            wsURL,
		dialer:         websocket.DefaultDialer,
		logger:         logger,
		ReconnectDelay: DefaultReconnectDelay,
		handlers:       make(map[string][]RefetchFunc),
	}
}

// Subscriber returns a subscriber for the client's /ws endpoint.
func (c *Client) Subscriber() *Subscriber {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return NewSubscriber(u+"/ws", c.logger)
}

// On registers fn to run whenever event arrives.
func (s *Subscriber) On(event string, fn RefetchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], fn)
}

// Run connects and dispatches events until ctx ends, reconnecting after
// ReconnectDelay whenever the socket drops. It returns ctx.Err().
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("event socket disconnected", slog.String("url", s.url), slog.Any("error", err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.ReconnectDelay):
		}
	}
}

func (s *Subscriber) session(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	s.logger.Info("event socket connected", slog.String("url", s.url))
	s.refreshAll(ctx)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Event == "" {
			s.logger.Debug("ignoring malformed event frame")
			continue
		}
		s.dispatch(ctx, ev.Event)
	}
}

func (s *Subscriber) dispatch(ctx context.Context, event string) {
	s.mu.Lock()
	fns := append([]RefetchFunc(nil), s.handlers[event]...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}

func (s *Subscriber) refreshAll(ctx context.Context) {
	s.mu.Lock()
	var fns []RefetchFunc
	for _, list := range s.handlers {
		fns = append(fns, list...)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}
