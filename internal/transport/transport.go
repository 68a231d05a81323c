// Package transport delivers rover commands over MQTT or, when no broker is
// configured, to the service log.
package transport

import (
	"rover_control/internal/logger"
	"rover_control/internal/models"
)

// Log is a transport that only records commands in the service log.
type Log struct {
	log *logger.Logger
}

// NewLog returns a log-only transport.
func NewLog(log *logger.Logger) *Log {
	if log == nil {
		log = logger.Nop()
	}
	return &Log{log: log}
}

// Start logs a start command.
func (t *Log) Start(direction models.Direction) {
	t.log.Infow("transport_start", "direction", direction)
}

// Stop logs a stop command.
func (t *Log) Stop() {
	t.log.Infow("transport_stop")
}

// SendAction logs an auxiliary action.
func (t *Log) SendAction(action string) {
	t.log.Infow("transport_action", "action", action)
}
