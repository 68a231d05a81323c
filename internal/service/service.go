package service

import (
	"context"

	"rover_control/internal/clock"
	"rover_control/internal/logger"
	"rover_control/internal/models"
)

// Control reconciles operator input into the single active motion command.
type Control interface {
	HandleEvent(ev models.InputEvent) (bool, error)
	Apply(ev models.InputEvent) (models.CommandState, bool, error)
	CancelActivation(src models.InputSource, activation uint64) bool
	State() models.CommandState
	Subscribe(fn StateListener) func()
}

// Telemetry exposes the simulated sensor stream and diagnostics log.
// Stop via context cancellation in main() for graceful shutdown.
type Telemetry interface {
	Snapshot() models.TelemetrySnapshot
	Logs(after uint64, limit int) []models.LogEntry
	LogStats() (retained int, lastSeq uint64)
	Run(ctx context.Context)
}

// Analyzer classifies a crop image. It always produces a result.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) models.AnalysisResult
}

// Actions dispatches auxiliary one-shot rover actions.
type Actions interface {
	Perform(name string) (models.ActionResult, error)
	CameraOn() bool
	ActionStatus() string
}

// Service aggregates all sub-services.
type Service struct {
	Control
	Telemetry
	Analyzer
	Actions
}

// Dependencies are the collaborators NewService wires into the sub-services.
type Dependencies struct {
	Transport Transport
	Sender    ActionSender
	Clock     clock.Clock
	Scheduler clock.Scheduler
	Rand      Rand
	Telemetry TelemetryConfig
	Analysis  AnalysisConfig
	Log       *logger.Logger
}

// NewService builds the concrete services.
// The next command transition clears any transient action status.
func NewService(d Dependencies) *Service {
	control := NewControlService(d.Transport, d.Log)
	actions := NewActionService(d.Sender, d.Log)
	control.Subscribe(func(models.CommandState) { actions.ClearStatus() })

	return &Service{
		Control:   control,
		Telemetry: NewTelemetryService(d.Telemetry, d.Clock, d.Scheduler, d.Rand, d.Log),
		Analyzer:  NewAnalysisService(d.Analysis, d.Log),
		Actions:   actions,
	}
}
