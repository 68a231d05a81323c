package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"rover_control"
	"rover_control/internal/models"
	"rover_control/internal/service"
)

func TestTelemetryHandlers_GetTelemetry(t *testing.T) {
	tel := &mockTelemetry{
		snapshot: models.TelemetrySnapshot{TemperatureC: 47.3, LatencyMs: 19, BatteryPct: 77, EstimatedHours: 2.4},
		logs:     make([]models.LogEntry, 3),
		lastSeq:  21,
	}
	r := newTestRouter(&service.Service{Telemetry: tel})

	w := doJSON(t, r, http.MethodGet, "/api/v1/telemetry", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp rover_control.TelemetryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TemperatureC != 47.3 || resp.LatencyMs != 19 || resp.BatteryPct != 77 {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
	if resp.LogCount != 3 || resp.LogLastSeq != 21 {
		t.Fatalf("unexpected log counters: %+v", resp)
	}
}

func TestTelemetryHandlers_GetLogs(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 3, 0, time.UTC)
	tel := &mockTelemetry{
		logs: []models.LogEntry{
			{Seq: 15, Timestamp: "10:00:03", Time: now, Level: models.LevelInfo, Message: "Telemetry packet sent (seq: 4821)"},
			{Seq: 16, Timestamp: "10:00:06", Time: now.Add(3 * time.Second), Level: models.LevelOK, Message: "Heartbeat acknowledged by base station"},
		},
		lastSeq: 16,
	}
	r := newTestRouter(&service.Service{Telemetry: tel})

	w := doJSON(t, r, http.MethodGet, "/api/v1/logs?after=14&limit=50", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if tel.lastAfter != 14 || tel.lastLimit != 50 {
		t.Fatalf("query not forwarded: after=%d limit=%d", tel.lastAfter, tel.lastLimit)
	}
	var resp rover_control.LogsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 || resp.LastSeq != 16 || resp.Entries[1].Level != models.LevelOK {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// limit is capped
	_ = doJSON(t, r, http.MethodGet, "/api/v1/logs?limit=5000", "")
	if tel.lastLimit != maxLogLimit {
		t.Fatalf("limit not capped: %d", tel.lastLimit)
	}
}

func TestTelemetryHandlers_GetLogsValidation(t *testing.T) {
	r := newTestRouter(&service.Service{Telemetry: &mockTelemetry{}})
	for _, q := range []string{"?after=-1", "?after=abc", "?limit=0", "?limit=-5", "?limit=x"} {
		w := doJSON(t, r, http.MethodGet, "/api/v1/logs"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}
}
