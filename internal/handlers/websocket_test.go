package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"rover_control"
	"rover_control/internal/models"
	"rover_control/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, 0)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestParseInterval_ConfiguredDefault(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, 3*time.Second)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws", nil)
	if got := h.parseInterval(c); got != 3*time.Second {
		t.Fatalf("got %v, want 3s", got)
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service, query string) *websocket.Conn {
	t.Helper()
	r := gin.New()
	h := NewHandler(s, nil, 0)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn, wantType string) envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read: %v", err)
		}
		if env.Type == wsTypeError && wantType != wsTypeError {
			t.Fatalf("unexpected error envelope: %s", env.Error)
		}
		if env.Type == wantType {
			return env
		}
	}
	t.Fatalf("no %q envelope before deadline", wantType)
	return envelope{}
}

func TestWebSocket_InitialStateAndTelemetryStream(t *testing.T) {
	tel := &mockTelemetry{snapshot: models.TelemetrySnapshot{TemperatureC: 48.1, LatencyMs: 22, BatteryPct: 70}}
	s := &service.Service{Control: newMockControl(), Telemetry: tel}
	conn := dialWS(t, s, "interval_ms=20")

	env := readEnvelope(t, conn, wsTypeCommand)
	var st rover_control.StateResponse
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Status != models.StatusIdle {
		t.Fatalf("unexpected initial state: %+v", st)
	}

	for i := 0; i < 2; i++ {
		env = readEnvelope(t, conn, wsTypeTelemetry)
		var snap rover_control.TelemetryResponse
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			t.Fatalf("unmarshal telemetry: %v", err)
		}
		if snap.TemperatureC != 48.1 || snap.LatencyMs != 22 {
			t.Fatalf("unexpected telemetry: %+v", snap)
		}
	}
}

func TestWebSocket_InputDrivesControllerAndPushesCommand(t *testing.T) {
	tr := &recordingTransport{}
	ctl := service.NewControlService(tr, nil)
	s := &service.Service{Control: ctl, Telemetry: &mockTelemetry{}}
	conn := dialWS(t, s, "interval=10s")
	readEnvelope(t, conn, wsTypeCommand)

	if err := conn.WriteJSON(wsInbound{Type: wsTypeKey, Key: "d", Pressed: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	env := readEnvelope(t, conn, wsTypeCommand)
	var st rover_control.StateResponse
	_ = json.Unmarshal(env.Data, &st)
	if st.Status != "Moving Right" {
		t.Fatalf("expected pushed Moving Right, got %+v", st)
	}

	if err := conn.WriteJSON(wsInbound{Type: wsTypeInput, Source: "touch", Kind: "touchstart", Direction: "left"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(wsInbound{Type: wsTypeInput, Source: "keyboard", Kind: "keyup", Direction: "right"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	env = readEnvelope(t, conn, wsTypeCommand)
	_ = json.Unmarshal(env.Data, &st)
	if st.Status != models.StatusIdle {
		t.Fatalf("expected idle after keyup, got %+v", st)
	}
}

func TestWebSocket_BadMessageGetsErrorEnvelope(t *testing.T) {
	s := &service.Service{Control: newMockControl(), Telemetry: &mockTelemetry{}}
	conn := dialWS(t, s, "interval=10s")
	readEnvelope(t, conn, wsTypeCommand)

	if err := conn.WriteJSON(wsInbound{Type: "teleport"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	env := readEnvelope(t, conn, wsTypeError)
	if env.Error == "" {
		t.Fatalf("expected error text")
	}
}

func TestWebSocket_CloseReleasesHeldDirection(t *testing.T) {
	ctl := service.NewControlService(&recordingTransport{}, nil)
	s := &service.Service{Control: ctl, Telemetry: &mockTelemetry{}}
	conn := dialWS(t, s, "interval=10s")
	readEnvelope(t, conn, wsTypeCommand)

	if err := conn.WriteJSON(wsInbound{Type: wsTypeInput, Source: "pointer", Kind: "pointerdown", Direction: "forward"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readEnvelope(t, conn, wsTypeCommand)
	if ctl.State().IsIdle() {
		t.Fatalf("expected active state while held")
	}

	_ = conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for !ctl.State().IsIdle() {
		if time.Now().After(deadline) {
			t.Fatalf("direction still held after disconnect: %+v", ctl.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// A press that closes after another client took the same source over must
// not cancel the newer command.
func TestWebSocket_CloseLeavesNewerActivationAlone(t *testing.T) {
	tr := &recordingTransport{}
	ctl := service.NewControlService(tr, nil)
	h := NewHandler(&service.Service{Control: ctl}, nil, 0)
	held := make(map[models.InputSource]uint64)

	if msg := h.applyInbound(wsInbound{Type: wsTypeInput, Source: "pointer", Kind: "mousedown", Direction: "forward"}, held); msg != "" {
		t.Fatalf("press rejected: %s", msg)
	}
	if held[models.SourcePointer] == 0 {
		t.Fatalf("activation not recorded: %v", held)
	}

	// another client releases the pointer and presses it again
	if changed, _ := ctl.HandleEvent(models.InputEvent{Source: models.SourcePointer, Kind: models.EventRelease}); !changed {
		t.Fatalf("external release ignored")
	}
	if changed, _ := ctl.HandleEvent(models.InputEvent{Source: models.SourcePointer, Kind: models.EventPress, Direction: models.DirectionLeft}); !changed {
		t.Fatalf("external press ignored")
	}

	h.releaseHeld("c1", held)

	st := ctl.State()
	if st.Status != "Moving Left" || st.Owner() != models.SourcePointer {
		t.Fatalf("newer command was cancelled: %+v", st)
	}
	if got := tr.calls(); len(got) != 3 || got[2] != "start:left" {
		t.Fatalf("unexpected transport calls: %v", got)
	}
}

func TestWebSocket_ReleaseForgetsActivation(t *testing.T) {
	ctl := service.NewControlService(&recordingTransport{}, nil)
	h := NewHandler(&service.Service{Control: ctl}, nil, 0)
	held := make(map[models.InputSource]uint64)

	h.applyInbound(wsInbound{Type: wsTypeKey, Key: "w", Pressed: true}, held)
	h.applyInbound(wsInbound{Type: wsTypeKey, Key: "w", Pressed: false}, held)
	if len(held) != 0 {
		t.Fatalf("released source still held: %v", held)
	}
	if msg := h.applyInbound(wsInbound{Type: wsTypeKey, Key: "q", Pressed: true}, held); msg != errUnmappedKey+"q" {
		t.Fatalf("unexpected rejection text %q", msg)
	}
}

type recordingTransport struct {
	mu  sync.Mutex
	log []string
}

func (r *recordingTransport) Start(d models.Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "start:"+string(d))
}

func (r *recordingTransport) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "stop")
}

func (r *recordingTransport) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}
