package models

import "strings"

// Direction is a discrete motion command. DirectionNone means idle.
type Direction string

const (
	DirectionNone     Direction = "none"
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
	DirectionLeft     Direction = "left"
	DirectionRight    Direction = "right"
)

// ParseDirection accepts the four motion directions and "none" (or empty).
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionForward, DirectionBackward, DirectionLeft, DirectionRight, DirectionNone:
		return d, true
	case "":
		return DirectionNone, true
	default:
		return DirectionNone, false
	}
}

// IsMotion reports whether d is one of the four motion directions.
func (d Direction) IsMotion() bool {
	switch d {
	case DirectionForward, DirectionBackward, DirectionLeft, DirectionRight:
		return true
	}
	return false
}

// Title returns the capitalized form used in status labels ("Forward").
func (d Direction) Title() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// InputSource is the input modality an event came from.
type InputSource string

const (
	SourceKeyboard InputSource = "keyboard"
	SourcePointer  InputSource = "pointer"
	SourceTouch    InputSource = "touch"
)

// ParseSource accepts keyboard, pointer (or mouse) and touch.
func ParseSource(s string) (InputSource, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keyboard", "key":
		return SourceKeyboard, true
	case "pointer", "mouse":
		return SourcePointer, true
	case "touch":
		return SourceTouch, true
	default:
		return "", false
	}
}

// EventKind is what happened to a source's input.
type EventKind string

const (
	EventPress   EventKind = "press"
	EventRelease EventKind = "release"
	// EventCancel is the implicit release: pointer left the surface, touch cancelled, focus lost.
	EventCancel EventKind = "cancel"
)

// ParseEventKind accepts the abstract kinds and the DOM event names that map onto them.
func ParseEventKind(s string) (EventKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "press", "keydown", "mousedown", "pointerdown", "touchstart":
		return EventPress, true
	case "release", "keyup", "mouseup", "pointerup", "touchend":
		return EventRelease, true
	case "cancel", "mouseleave", "pointerleave", "pointercancel", "touchcancel", "blur":
		return EventCancel, true
	default:
		return "", false
	}
}

// InputEvent is one physical input event after parsing.
type InputEvent struct {
	Source    InputSource `json:"source"`
	Kind      EventKind   `json:"kind"`
	Direction Direction   `json:"direction,omitempty"`
}

// CommandState is the authoritative motion command.
// ActiveDirection == DirectionNone iff OwningSource == nil.
type CommandState struct {
	ActiveDirection Direction    `json:"active_direction"`
	OwningSource    *InputSource `json:"owning_source"`
	Status          string       `json:"status"`               // "Moving Forward" | "Idle"
	Activation      uint64       `json:"activation,omitempty"` // numbers each Idle->Active transition; 0 while idle
}

// StatusIdle is the status label while no direction is active.
const StatusIdle = "Idle"

// IdleState returns the initial command state.
func IdleState() CommandState {
	return CommandState{ActiveDirection: DirectionNone, Status: StatusIdle}
}

// IsIdle reports whether no direction is active.
func (s CommandState) IsIdle() bool { return s.ActiveDirection == DirectionNone }

// Owner returns the owning source, or "" when idle.
func (s CommandState) Owner() InputSource {
	if s.OwningSource == nil {
		return ""
	}
	return *s.OwningSource
}

var keyDirections = map[string]Direction{
	"w":          DirectionForward,
	"a":          DirectionLeft,
	"s":          DirectionBackward,
	"d":          DirectionRight,
	"arrowup":    DirectionForward,
	"arrowdown":  DirectionBackward,
	"arrowleft":  DirectionLeft,
	"arrowright": DirectionRight,
}

// KeyDirection maps a keyboard key (WASD or arrow keys) to a direction.
func KeyDirection(key string) (Direction, bool) {
	d, ok := keyDirections[strings.ToLower(strings.TrimSpace(key))]
	return d, ok
}

// KeyEvent builds the keyboard press or release for a mapped key.
func KeyEvent(key string, pressed bool) (InputEvent, bool) {
	dir, ok := KeyDirection(key)
	if !ok {
		return InputEvent{}, false
	}
	kind := EventRelease
	if pressed {
		kind = EventPress
	}
	return InputEvent{Source: SourceKeyboard, Kind: kind, Direction: dir}, true
}
