package handlers

import (
	"net/http"
	"strconv"

	"rover_control"

	"github.com/gin-gonic/gin"
)

const (
	errAfterInvalid = "invalid 'after'; use a non-negative sequence number"
	errLimitInvalid = "invalid 'limit'; use a positive integer"

	maxLogLimit = 1000
)

// @Summary      Get telemetry snapshot
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  rover_control.TelemetryResponse
// @Router       /api/v1/telemetry [get]
func (h *Handler) getTelemetry(c *gin.Context) {
	count, last := h.services.Telemetry.LogStats()
	c.JSON(http.StatusOK, rover_control.TelemetryResponse{
		TelemetrySnapshot: h.services.Telemetry.Snapshot(),
		LogCount:          count,
		LogLastSeq:        last,
	})
}

// @Summary      List diagnostics log
// @Description  Entries in append order. Pass the previous response's last_seq as 'after' to fetch only newer entries. log_count stops growing once the retention cap is reached, so track last_seq to detect new entries.
// @Tags         telemetry
// @Produce      json
// @Param        after  query   int  false  "Return entries with seq greater than this"  example(14)
// @Param        limit  query   int  false  "Return only the newest N entries (max 1000)"  example(50)
// @Success      200    {object}  rover_control.LogsResponse
// @Failure      400    {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	var (
		after uint64
		limit int
		err   error
	)
	if qs := c.Query("after"); qs != "" {
		after, err = strconv.ParseUint(qs, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errAfterInvalid})
			return
		}
	}
	if qs := c.Query("limit"); qs != "" {
		limit, err = strconv.Atoi(qs)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		if limit > maxLogLimit {
			limit = maxLogLimit
		}
	}

	entries := h.services.Telemetry.Logs(after, limit)
	_, last := h.services.Telemetry.LogStats()
	c.JSON(http.StatusOK, rover_control.LogsResponse{
		Count:   len(entries),
		LastSeq: last,
		Entries: entries,
	})
}
