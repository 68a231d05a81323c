package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	imageField    = "image"
	maxImageBytes = 10 << 20 // 10 MB

	errNoImage     = "No image provided"
	errImageTooBig = "image exceeds 10 MB"
	errImageUnread = "failed to read image"
)

// @Summary      Analyze crop image
// @Description  Classifies the uploaded image. Falls back to a default diagnosis when the model is unavailable.
// @Tags         analysis
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Crop photo"
// @Success      200    {object}  models.AnalysisResult
// @Failure      400    {object}  map[string]string
// @Router       /api/v1/analyze [post]
func (h *Handler) analyze(c *gin.Context) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoImage})
		return
	}
	if fh.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": errImageTooBig})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errImageUnread, "analyze_open_failed", err)
		return
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errImageUnread, "analyze_read_failed", err)
		return
	}

	c.JSON(http.StatusOK, h.services.Analyzer.Analyze(c.Request.Context(), image))
}
