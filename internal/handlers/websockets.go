package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rover_control"
	"rover_control/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
	outboxSize       = 16
)

// Envelope types.
const (
	wsTypeTelemetry = "telemetry"
	wsTypeCommand   = "command"
	wsTypeError     = "error"
	wsTypeInput     = "input"
	wsTypeKey       = "key"
)

// Envelope used for outgoing WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsInbound is a client message: {"type":"input",...} or {"type":"key",...}.
type wsInbound struct {
	Type      string `json:"type"`
	Source    string `json:"source"`
	Kind      string `json:"kind"`
	Direction string `json:"direction"`
	Key       string `json:"key"`
	Pressed   bool   `json:"pressed"`
}

// Upgrader for HTTP -> WebSocket. The dashboard is served from another origin.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	connID := uuid.NewString()
	if h.log != nil {
		h.log.Infow("ws_connected", "conn_id", connID, "interval", interval)
	}

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Only this goroutine writes to conn; everything else goes through outbox.
	outbox := make(chan wsEnvelope, outboxSize)
	unsubscribe := h.services.Control.Subscribe(func(st models.CommandState) {
		h.enqueue(outbox, connID, h.commandEnvelope(st))
	})
	defer unsubscribe()

	// Reader goroutine applies client input and detects disconnects.
	done := make(chan struct{})
	go h.startReader(conn, connID, outbox, done)

	// Prepare periodic writers: telemetry updates and pings.
	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send current command state and telemetry immediately.
	if err := h.write(conn, h.commandEnvelope(h.services.Control.State())); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "conn_id", connID, "err", err)
		}
		return
	}
	if err := h.write(conn, h.telemetryEnvelope()); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "conn_id", connID, "err", err)
		}
		return
	}

	// Writer/select loop.
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "conn_id", connID, "err", err)
				}
				return
			}
		case env := <-outbox:
			if err := h.write(conn, env); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "conn_id", connID, "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.write(conn, h.telemetryEnvelope()); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "conn_id", connID, "err", err)
				}
				return
			}
		}
	}
}

// Helper: parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := h.interval
	if interval <= 0 {
		interval = defaultInterval
	}

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// Helper: startReader applies client input until the connection closes, then
// cancels every activation this connection still holds.
func (h *Handler) startReader(conn *websocket.Conn, connID string, outbox chan<- wsEnvelope, done chan<- struct{}) {
	held := make(map[models.InputSource]uint64)
	defer close(done)
	defer h.releaseHeld(connID, held)

	for {
		var msg wsInbound
		if err := conn.ReadJSON(&msg); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "conn_id", connID, "err", err)
			}
			return
		}
		if errMsg := h.applyInbound(msg, held); errMsg != "" {
			h.enqueue(outbox, connID, wsEnvelope{Type: wsTypeError, Error: errMsg})
		}
	}
}

// applyInbound feeds one client message to the controller and records the
// activation each accepted press started. It returns a non-empty message on rejection.
func (h *Handler) applyInbound(msg wsInbound, held map[models.InputSource]uint64) string {
	var ev models.InputEvent
	switch msg.Type {
	case wsTypeInput:
		var (
			errMsg string
			ok     bool
		)
		ev, errMsg, ok = toInputEvent(msg.Source, msg.Kind, msg.Direction)
		if !ok {
			return errMsg
		}
	case wsTypeKey:
		var ok bool
		ev, ok = models.KeyEvent(msg.Key, msg.Pressed)
		if !ok {
			return errUnmappedKey + msg.Key
		}
	default:
		return "unknown message type: " + msg.Type
	}

	st, changed, err := h.services.Control.Apply(ev)
	if err != nil {
		return errInvalidEvent
	}
	if changed {
		if ev.Kind == models.EventPress {
			held[ev.Source] = st.Activation
		} else {
			delete(held, ev.Source)
		}
	}
	return ""
}

// releaseHeld cancels only the activations this connection started; a source
// released and pressed again by another client is left alone.
func (h *Handler) releaseHeld(connID string, held map[models.InputSource]uint64) {
	for src, activation := range held {
		if h.services.Control.CancelActivation(src, activation) && h.log != nil {
			h.log.Infow("ws_released_on_close", "conn_id", connID, "source", src, "activation", activation)
		}
	}
}

// enqueue never blocks; it is called from controller listeners.
func (h *Handler) enqueue(outbox chan<- wsEnvelope, connID string, env wsEnvelope) {
	select {
	case outbox <- env:
	default:
		if h.log != nil {
			h.log.Warnw("ws_outbox_full", "conn_id", connID, "type", env.Type)
		}
	}
}

func (h *Handler) commandEnvelope(st models.CommandState) wsEnvelope {
	return wsEnvelope{Type: wsTypeCommand, Data: h.stateResponse(st)}
}

func (h *Handler) telemetryEnvelope() wsEnvelope {
	count, last := h.services.Telemetry.LogStats()
	return wsEnvelope{Type: wsTypeTelemetry, Data: rover_control.TelemetryResponse{
		TelemetrySnapshot: h.services.Telemetry.Snapshot(),
		LogCount:          count,
		LogLastSeq:        last,
	}}
}

// Helper: write sends one envelope with a write deadline.
func (h *Handler) write(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
