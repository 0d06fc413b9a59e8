package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"

	"github.com/gorilla/websocket"
)

const maxMessageSize = 4 * 1024 * 1024

// -----------------------------------------------------------------------------

// Subscriber dials websocket subscriptions relative to a base ws:// URL.
type Subscriber struct {
	baseURL string
	dialer  *websocket.Dialer
	Logger  *logger.Logger
}

func NewSubscriber(baseURL string, log *logger.Logger) *Subscriber {
	return &Subscriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		dialer:  websocket.DefaultDialer,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Subscribe opens path. The connection is not retried.
func (s *Subscriber) Subscribe(ctx context.Context, path string) (interfaces.IStreamHandle, error) {
	url := s.baseURL + path
	conn, _, err := s.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &helpers.TransportError{Operation: "subscribe " + path, Reason: helpers.ReasonError, Cause: err}
	}
	s.Logger.Info("Subscribed to %s", url)

	conn.SetReadLimit(maxMessageSize)
	return &Handle{conn: conn, path: path}, nil
}

// -----------------------------------------------------------------------------

// Handle is one open websocket subscription. Next must be called from a
// single goroutine; Close may be called from any.
type Handle struct {
	conn *websocket.Conn
	path string

	mu     sync.Mutex
	closed bool
}

// -----------------------------------------------------------------------------

func (h *Handle) Next() ([]byte, error) {
	for {
		msgType, msg, err := h.conn.ReadMessage()
		if err != nil {
			return nil, h.classify(err)
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			return msg, nil
		}
	}
}

// -----------------------------------------------------------------------------

// Close sends a normal closure and tears the connection down. Safe to call
// more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	_ = h.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return h.conn.Close()
}

// -----------------------------------------------------------------------------

func (h *Handle) classify(err error) error {
	h.mu.Lock()
	closedLocally := h.closed
	h.mu.Unlock()

	op := "stream " + h.path
	if closedLocally {
		return &helpers.TransportError{Operation: op, Reason: helpers.ReasonClosed, Cause: err}
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return &helpers.TransportError{Operation: op, Reason: helpers.ReasonClosed, Cause: err}
	}
	return &helpers.TransportError{Operation: op, Reason: helpers.ReasonError, Cause: err}
}
