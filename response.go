package rover_control

import "rover_control/internal/models"

// StateResponse is the command state as served to the dashboard.
type StateResponse struct {
	ActiveDirection models.Direction    `json:"active_direction"`
	OwningSource    *models.InputSource `json:"owning_source"`           // null while idle
	Status          string              `json:"status"`                  // "Moving Forward" | "Idle"
	ActionStatus    string              `json:"action_status,omitempty"` // e.g. "Capturing Photo..." until the next transition
	CameraOn        bool                `json:"camera_on"`
}

// NewStateResponse flattens a command state, the transient action status and the camera flag.
func NewStateResponse(st models.CommandState, actionStatus string, cameraOn bool) StateResponse {
	return StateResponse{
		ActiveDirection: st.ActiveDirection,
		OwningSource:    st.OwningSource,
		Status:          st.Status,
		ActionStatus:    actionStatus,
		CameraOn:        cameraOn,
	}
}

// EventResponse reports the outcome of one input event.
type EventResponse struct {
	Changed bool          `json:"changed"` // false when the event was a no-op
	State   StateResponse `json:"state"`
}

// TelemetryResponse is the latest sensor snapshot plus log counters.
type TelemetryResponse struct {
	models.TelemetrySnapshot
	LogCount   int    `json:"log_count"`
	LogLastSeq uint64 `json:"log_last_seq"`
}

// LogsResponse is one page of diagnostics log entries.
type LogsResponse struct {
	Count   int               `json:"count"`
	LastSeq uint64            `json:"last_seq"` // pass as ?after= to fetch only newer entries
	Entries []models.LogEntry `json:"entries"`
}
