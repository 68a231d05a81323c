package handlers

import (
	"errors"
	"net/http"

	"rover_control"
	"rover_control/internal/models"
	"rover_control/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
	errInvalidSource   = "unknown input source"
	errInvalidKind     = "unknown event kind"
	errInvalidDir      = "unknown direction"
	errInvalidEvent    = "invalid input event"
	errUnmappedKey     = "unmapped key: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// stateResponse decorates a command state with the action flags.
func (h *Handler) stateResponse(st models.CommandState) rover_control.StateResponse {
	var (
		status string
		camera bool
	)
	if h.services.Actions != nil {
		status = h.services.Actions.ActionStatus()
		camera = h.services.Actions.CameraOn()
	}
	return rover_control.NewStateResponse(st, status, camera)
}

// eventRequest accepts abstract kinds or DOM event names ("mousedown", "touchcancel").
type eventRequest struct {
	Source    string `json:"source" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
	Direction string `json:"direction"`
}

// InputEventRequest is an exported model for Swagger docs of the event payload.
type InputEventRequest struct {
	// Input modality. Allowed: keyboard, pointer, touch
	Source string `json:"source" example:"pointer"`
	// press | release | cancel, or a DOM event name (mousedown, mouseup, mouseleave, touchstart, touchend, touchcancel, keydown, keyup, blur)
	Kind string `json:"kind" example:"mousedown"`
	// forward | backward | left | right (required for press)
	Direction string `json:"direction" example:"left"`
}

type keyRequest struct {
	Key     string `json:"key" binding:"required"`
	Pressed bool   `json:"pressed"`
}

// toInputEvent validates the textual fields of an event payload.
func toInputEvent(source, kind, direction string) (models.InputEvent, string, bool) {
	src, ok := models.ParseSource(source)
	if !ok {
		return models.InputEvent{}, errInvalidSource, false
	}
	k, ok := models.ParseEventKind(kind)
	if !ok {
		return models.InputEvent{}, errInvalidKind, false
	}
	dir, ok := models.ParseDirection(direction)
	if !ok {
		return models.InputEvent{}, errInvalidDir, false
	}
	return models.InputEvent{Source: src, Kind: k, Direction: dir}, "", true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Submit input event
// @Description  First source to press owns the command until it releases or cancels. Events that cause no transition return changed=false.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body   InputEventRequest  true  "Input event"
// @Success      200   {object}  rover_control.EventResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/control/events [post]
func (h *Handler) postEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ev, msg, ok := toInputEvent(req.Source, req.Kind, req.Direction)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	h.applyEvent(c, ev)
}

// @Summary      Submit key event
// @Description  WASD and arrow keys map to forward/left/backward/right on the keyboard source.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body   keyRequest  true  "Key event"
// @Success      200   {object}  rover_control.EventResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/control/keys [post]
func (h *Handler) postKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ev, ok := models.KeyEvent(req.Key, req.Pressed)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnmappedKey + req.Key})
		return
	}
	h.applyEvent(c, ev)
}

// applyEvent answers with the state the event produced, not a later read.
func (h *Handler) applyEvent(c *gin.Context, ev models.InputEvent) {
	st, changed, err := h.services.Control.Apply(ev)
	if err != nil {
		h.respondControlError(c, err)
		return
	}
	c.JSON(http.StatusOK, rover_control.EventResponse{Changed: changed, State: h.stateResponse(st)})
}

// @Summary      Get command state
// @Tags         control
// @Produce      json
// @Success      200  {object}  rover_control.StateResponse
// @Router       /api/v1/control/state [get]
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.stateResponse(h.services.Control.State()))
}

func (h *Handler) respondControlError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidEvent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEvent})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, "failed to apply input event", "control_event_failed", err)
}
