package service

import (
	"errors"
	"strings"
	"sync"

	"rover_control/internal/logger"
	"rover_control/internal/models"
)

// Auxiliary rover actions.
const (
	ActionDeploySensor = "deploy_sensor"
	ActionArmExtend    = "arm_extend"
	ActionArmRetract   = "arm_retract"
	ActionCapturePhoto = "capture_photo"
	ActionCameraOn     = "camera_on"
	ActionCameraOff    = "camera_off"
)

// StatusCapturingPhoto replaces the rover status label after a photo capture
// until the next command transition.
const StatusCapturingPhoto = "Capturing Photo..."

var actionStatuses = map[string]string{
	ActionCapturePhoto: StatusCapturingPhoto,
}

// ErrUnknownAction is returned for action names outside the supported set.
var ErrUnknownAction = errors.New("unknown action")

var actionMessages = map[string]string{
	ActionDeploySensor: "Command sent: Deploying soil sensor",
	ActionArmExtend:    "Arm Status: Extending...",
	ActionArmRetract:   "Arm Status: Retracting...",
	ActionCapturePhoto: "Camera: High-res photo captured",
	ActionCameraOn:     "Camera turned ON",
	ActionCameraOff:    "Camera turned OFF",
}

// ActionSender delivers auxiliary actions to the rover, fire-and-forget.
type ActionSender interface {
	SendAction(action string)
}

// ActionService dispatches one-shot actions and tracks the camera feed flag.
type ActionService struct {
	mu       sync.Mutex
	sender   ActionSender
	cameraOn bool
	status   string // transient status label, "" when none
	log      *logger.Logger
}

// NewActionService starts with the camera on.
func NewActionService(sender ActionSender, log *logger.Logger) *ActionService {
	return &ActionService{sender: sender, cameraOn: true, log: log}
}

// Perform sends the named action.
func (s *ActionService) Perform(name string) (models.ActionResult, error) {
	action := strings.ToLower(strings.TrimSpace(name))
	msg, ok := actionMessages[action]
	if !ok {
		return models.ActionResult{}, ErrUnknownAction
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch action {
	case ActionCameraOn:
		s.cameraOn = true
	case ActionCameraOff:
		s.cameraOn = false
	}
	if st, ok := actionStatuses[action]; ok {
		s.status = st
	}
	s.sender.SendAction(action)
	if s.log != nil {
		s.log.Infow("action_sent", "action", action)
	}
	return models.ActionResult{Action: action, Message: msg, CameraOn: s.cameraOn, Status: actionStatuses[action]}, nil
}

// CameraOn reports whether the camera feed is enabled.
func (s *ActionService) CameraOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraOn
}

// ActionStatus returns the transient status set by the last action, if any.
func (s *ActionService) ActionStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ClearStatus drops the transient status.
func (s *ActionService) ClearStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = ""
}
