package handlers

import (
	"errors"
	"net/http"

	"rover_control/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Perform auxiliary action
// @Tags         actions
// @Produce      json
// @Param        name  path  string  true  "Action"  Enums(deploy_sensor,arm_extend,arm_retract,capture_photo,camera_on,camera_off)
// @Success      200   {object}  models.ActionResult
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/actions/{name} [post]
func (h *Handler) performAction(c *gin.Context) {
	name := c.Param("name")
	res, err := h.services.Actions.Perform(name)
	if err != nil {
		if errors.Is(err, service.ErrUnknownAction) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown action: " + name})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to perform action", "action_failed", err, "action", name)
		return
	}
	c.JSON(http.StatusOK, res)
}
