package server

import (
	"time"

	"github.com/gorilla/websocket"
)

// Liveness settings of a viewer connection.
const (
	frameWriteTimeout = 2 * time.Second
	idleTimeout       = 60 * time.Second
	heartbeatEvery    = idleTimeout * 9 / 10
	inboundLimit      = 512
)

// -----------------------------------------------------------------------------

// viewer is one websocket client of a hub. The hub owns frames and closes it
// when the viewer leaves or falls behind.
type viewer struct {
	hub    *Hub
	conn   *websocket.Conn
	frames chan []byte
	remote string
}

func newViewer(h *Hub, conn *websocket.Conn) *viewer {
	return &viewer{
		hub:    h,
		conn:   conn,
		frames: make(chan []byte, 256),
		remote: conn.RemoteAddr().String(),
	}
}

// -----------------------------------------------------------------------------

// watch keeps the read side alive for pongs and close frames. Dashboards are
// listeners; any data frame they send is ignored.
func (v *viewer) watch() {
	defer v.leave()

	v.conn.SetReadLimit(inboundLimit)
	_ = v.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := v.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				v.hub.Logger.Info("%s viewer %s: %v", v.hub.topic, v.remote, err)
			}
			return
		}
	}
}

func (v *viewer) leave() {
	select {
	case v.hub.unregister <- v:
	case <-v.hub.done:
	}
	v.conn.Close()
	v.hub.Logger.Debug("%s viewer %s left", v.hub.topic, v.remote)
}

// -----------------------------------------------------------------------------

// deliver writes queued frames and heartbeats until frames is closed.
func (v *viewer) deliver() {
	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()
	defer v.conn.Close()

	for {
		select {
		case frame, open := <-v.frames:
			_ = v.conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
			if !open {
				_ = v.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(frameWriteTimeout))
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				v.hub.Logger.Info("%s viewer %s: write failed: %v", v.hub.topic, v.remote, err)
				return
			}

		case <-heartbeat.C:
			if err := v.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(frameWriteTimeout)); err != nil {
				return
			}
		}
	}
}
