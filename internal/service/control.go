package service

import (
	"errors"
	"sync"

	"rover_control/internal/logger"
	"rover_control/internal/models"

	"go.opentelemetry.io/otel/metric"
)

// Transport carries motion commands to the rover. Calls are fire-and-forget
// and must not block.
type Transport interface {
	Start(direction models.Direction)
	Stop()
}

// StateListener observes every accepted command transition. Listeners run
// synchronously while the controller is locked and must not call back into it.
type StateListener func(models.CommandState)

// ErrInvalidEvent is returned for events with an unknown source, kind or direction.
// The command state is never changed by an invalid event.
var ErrInvalidEvent = errors.New("invalid input event")

// ControlService reconciles keyboard, pointer and touch input into a single
// motion command. The first source to press a direction owns the command
// until that same source releases or cancels it.
type ControlService struct {
	mu          sync.Mutex
	transport   Transport
	state       models.CommandState
	listeners   []listenerEntry
	nextID      int
	activations uint64 // Idle->Active transitions so far
	log         *logger.Logger

	commands metric.Int64Counter
	ignored  metric.Int64Counter
}

type listenerEntry struct {
	id int
	fn StateListener
}

// NewControlService returns an idle controller emitting through t.
func NewControlService(t Transport, log *logger.Logger) *ControlService {
	return &ControlService{
		transport: t,
		state:     models.IdleState(),
		log:       log,
		commands:  counter("rover.commands", "Motion commands emitted to the transport"),
		ignored:   counter("rover.events.ignored", "Input events that produced no transition"),
	}
}

// HandleEvent applies one input event. It reports whether the event caused a
// transition. Invalid events return ErrInvalidEvent and leave state unchanged.
func (s *ControlService) HandleEvent(ev models.InputEvent) (bool, error) {
	_, changed, err := s.Apply(ev)
	return changed, err
}

// Apply is HandleEvent that also returns the state right after the event,
// read under the same lock as the transition.
func (s *ControlService) Apply(ev models.InputEvent) (models.CommandState, bool, error) {
	if !validEvent(ev) {
		s.drop("invalid", ev)
		return s.State(), false, ErrInvalidEvent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case models.EventPress:
		if !s.state.IsIdle() {
			// key repeat from the owner, or another source racing it
			s.drop("busy", ev)
			return copyState(s.state), false, nil
		}
		s.activations++
		owner := ev.Source
		s.state = models.CommandState{
			ActiveDirection: ev.Direction,
			OwningSource:    &owner,
			Status:          "Moving " + ev.Direction.Title(),
			Activation:      s.activations,
		}
		s.transport.Start(ev.Direction)
		inc(s.commands, "command", "start")
		if s.log != nil {
			s.log.Infow("command_start", "direction", ev.Direction, "source", ev.Source, "activation", s.activations)
		}

	default: // release, cancel
		if s.state.IsIdle() || s.state.Owner() != ev.Source {
			s.drop("not_owner", ev)
			return copyState(s.state), false, nil
		}
		s.stop(ev.Source, ev.Kind)
	}

	s.notify()
	return copyState(s.state), true, nil
}

// HandleKey maps a keyboard key (WASD or arrows) to a keyboard press or release.
func (s *ControlService) HandleKey(key string, pressed bool) (bool, error) {
	ev, ok := models.KeyEvent(key, pressed)
	if !ok {
		s.drop("unknown_key", models.InputEvent{Source: models.SourceKeyboard})
		return false, ErrInvalidEvent
	}
	return s.HandleEvent(ev)
}

// CancelActivation cancels the command only if src still owns the given
// activation. A source that released and pressed again, possibly from another
// client, holds a newer activation and is left alone.
func (s *ControlService) CancelActivation(src models.InputSource, activation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsIdle() || s.state.Owner() != src || s.state.Activation != activation {
		s.drop("stale_activation", models.InputEvent{Source: src, Kind: models.EventCancel})
		return false
	}
	s.stop(src, models.EventCancel)
	s.notify()
	return true
}

// stop is called with s.mu held.
func (s *ControlService) stop(src models.InputSource, kind models.EventKind) {
	s.state = models.IdleState()
	s.transport.Stop()
	inc(s.commands, "command", "stop")
	if s.log != nil {
		s.log.Infow("command_stop", "source", src, "kind", kind)
	}
}

// State returns a copy of the current command state.
func (s *ControlService) State() models.CommandState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// Subscribe registers fn for transition notifications and returns a function
// that removes it.
func (s *ControlService) Subscribe(fn StateListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify is called with s.mu held.
func (s *ControlService) notify() {
	for _, l := range s.listeners {
		l.fn(copyState(s.state))
	}
}

func (s *ControlService) drop(reason string, ev models.InputEvent) {
	inc(s.ignored, "reason", reason)
	if s.log != nil {
		s.log.Debugw("input_event_ignored", "reason", reason, "source", ev.Source, "kind", ev.Kind, "direction", ev.Direction)
	}
}

func validEvent(ev models.InputEvent) bool {
	switch ev.Source {
	case models.SourceKeyboard, models.SourcePointer, models.SourceTouch:
	default:
		return false
	}
	switch ev.Kind {
	case models.EventPress:
		return ev.Direction.IsMotion()
	case models.EventRelease, models.EventCancel:
		// the direction is informational for releases
		_, ok := models.ParseDirection(string(ev.Direction))
		return ok
	default:
		return false
	}
}

func copyState(st models.CommandState) models.CommandState {
	if st.OwningSource != nil {
		owner := *st.OwningSource
		st.OwningSource = &owner
	}
	return st
}
