package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"trading-dashboard/src/logger"
	"trading-dashboard/src/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub fans one topic out to its websocket clients. New clients first receive
// the latest snapshot, then every broadcast.
// -----------------------------------------------------------------------------

type Hub struct {
	topic  string
	Logger *logger.Logger

	viewers    map[*viewer]struct{}
	broadcast  chan []byte
	register   chan *viewer
	unregister chan *viewer
	done       chan struct{}
	closeOnce  sync.Once
	count      atomic.Int64

	// snapshot is kept encoded; every new viewer gets the same frame.
	snapshot   []byte
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHub(topic string, log *logger.Logger) *Hub {
	return &Hub{
		topic:      topic,
		Logger:     log,
		viewers:    make(map[*viewer]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		done:       make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// run is the hub loop. It owns the viewer set.
func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for v := range h.viewers {
				h.drop(v)
			}
			h.setCount(0)
			return

		case v := <-h.register:
			h.viewers[v] = struct{}{}
			h.setCount(len(h.viewers))

			h.stateMutex.RLock()
			if h.snapshot != nil {
				v.frames <- h.snapshot
			}
			h.stateMutex.RUnlock()

		case v := <-h.unregister:
			if _, ok := h.viewers[v]; ok {
				h.drop(v)
				h.setCount(len(h.viewers))
			}

		case frame := <-h.broadcast:
			metrics.Broadcasts.WithLabelValues(h.topic).Inc()
			for v := range h.viewers {
				select {
				case v.frames <- frame:
				default:
					h.Logger.Warning("Dropping slow %s viewer %s", h.topic, v.remote)
					h.drop(v)
				}
			}
			h.setCount(len(h.viewers))
		}
	}
}

func (h *Hub) drop(v *viewer) {
	delete(h.viewers, v)
	close(v.frames)
}

// -----------------------------------------------------------------------------

// Publish encodes payload once and queues it for every viewer. It never
// blocks; when the queue is full the update is dropped.
func (h *Hub) Publish(payload interface{}) {
	frame, err := json.Marshal(payload)
	if err != nil {
		h.Logger.Error("Encoding %s update: %v", h.topic, err)
		return
	}
	select {
	case <-h.done:
	case h.broadcast <- frame:
	default:
		h.Logger.Warning("Broadcast queue for %s full, dropping update", h.topic)
	}
}

// -----------------------------------------------------------------------------

// SetSnapshot replaces what new viewers receive first.
func (h *Hub) SetSnapshot(payload interface{}) {
	frame, err := json.Marshal(payload)
	if err != nil {
		h.Logger.Error("Encoding %s snapshot: %v", h.topic, err)
		return
	}
	h.stateMutex.Lock()
	h.snapshot = frame
	h.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

func (h *Hub) setCount(n int) {
	h.count.Store(int64(n))
	metrics.HubClients.WithLabelValues(h.topic).Set(float64(n))
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// -----------------------------------------------------------------------------

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (h *Hub) serveWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	v := newViewer(h, conn)
	select {
	case h.register <- v:
	case <-h.done:
		conn.Close()
		return
	}

	go v.deliver()
	go v.watch()
}
