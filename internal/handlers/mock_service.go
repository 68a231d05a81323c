package handlers

import (
	"context"
	"net/http"
	"sync"

	"rover_control/internal/models"
	"rover_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockControl struct {
	mu        sync.Mutex
	state     models.CommandState
	changed   bool
	err       error
	events    []models.InputEvent
	cancels   []uint64
	listeners []service.StateListener
}

func newMockControl() *mockControl {
	return &mockControl{state: models.IdleState()}
}

func (m *mockControl) HandleEvent(ev models.InputEvent) (bool, error) {
	_, changed, err := m.Apply(ev)
	return changed, err
}

func (m *mockControl) Apply(ev models.InputEvent) (models.CommandState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.state, m.changed, m.err
}

func (m *mockControl) CancelActivation(src models.InputSource, activation uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels = append(m.cancels, activation)
	return false
}

func (m *mockControl) State() models.CommandState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockControl) Subscribe(fn service.StateListener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
	return func() {}
}

func (m *mockControl) recorded() []models.InputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.InputEvent, len(m.events))
	copy(out, m.events)
	return out
}

type mockTelemetry struct {
	snapshot  models.TelemetrySnapshot
	logs      []models.LogEntry
	lastSeq   uint64
	lastAfter uint64
	lastLimit int
}

func (m *mockTelemetry) Snapshot() models.TelemetrySnapshot { return m.snapshot }

func (m *mockTelemetry) Logs(after uint64, limit int) []models.LogEntry {
	m.lastAfter = after
	m.lastLimit = limit
	return m.logs
}

func (m *mockTelemetry) LogStats() (int, uint64) { return len(m.logs), m.lastSeq }

func (m *mockTelemetry) Run(ctx context.Context) { <-ctx.Done() }

type mockAnalyzer struct {
	result  models.AnalysisResult
	gotSize int
	calls   int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, image []byte) models.AnalysisResult {
	m.calls++
	m.gotSize = len(image)
	return m.result
}

type mockActions struct {
	result   models.ActionResult
	err      error
	cameraOn bool
	status   string
	lastName string
}

func (m *mockActions) Perform(name string) (models.ActionResult, error) {
	m.lastName = name
	return m.result, m.err
}

func (m *mockActions) CameraOn() bool { return m.cameraOn }

func (m *mockActions) ActionStatus() string { return m.status }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, 0)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}
