package models

import "time"

// TelemetrySnapshot is the latest simulated sensor reading set.
type TelemetrySnapshot struct {
	TemperatureC   float64   `json:"temperature_c"`   // °C, [45.0, 50.0] after the first tick
	LatencyMs      int       `json:"latency_ms"`      // [12, 28]
	BatteryPct     int       `json:"battery_pct"`     // non-increasing, >= 0
	EstimatedHours float64   `json:"estimated_hours"` // remaining runtime at the current battery level
	UpdatedAt      time.Time `json:"updated_at"`
}

// LogLevel is the severity of a diagnostics log entry.
type LogLevel string

const (
	LevelOK    LogLevel = "OK"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// LogEntry is a single diagnostics log line. Entries are never mutated after append.
type LogEntry struct {
	Seq       uint64    `json:"seq"`       // monotonic append counter, starts at 1
	Timestamp string    `json:"timestamp"` // HH:MM:SS
	Time      time.Time `json:"time"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}
