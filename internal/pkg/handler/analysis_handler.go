package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/provider"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/service/analysis_service"
	"github.com/vcentea/crowd-analyze-with-ai/tools"
)

// HandleAnalyze accepts one frame as a multipart file named "image", runs
// the analysis pipeline with the current settings and returns the stored
// capture.
func (h *Handler) HandleAnalyze(c *gin.Context) {

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to get uploaded image"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded image"})
		return
	}

	if len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image cannot be empty"})
		return
	}

	cfg, err := h.service.Get()
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	capture, err := h.service.Analyze(c.Request.Context(), image, cfg)
	if err != nil {
		log.Println(err)
		c.JSON(analysisErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": capture})
}

// HandleGetCaptures returns the newest captures, at most "limit" of them.
func (h *Handler) HandleGetCaptures(c *gin.Context) {

	limitStr := c.DefaultQuery("limit", "0")

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	captures, err := h.service.GetCaptures(limit)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": captures})
}

// HandleGetCapture returns one stored capture by id.
func (h *Handler) HandleGetCapture(c *gin.Context) {

	captureId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	capture, err := h.service.GetCaptureById(captureId)
	if err != nil {
		log.Println(err)
		c.JSON(notFoundOrServerStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": capture})
}

// HandleDeleteCapture removes one stored capture by id.
func (h *Handler) HandleDeleteCapture(c *gin.Context) {

	captureId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err = h.service.DeleteCapture(captureId); err != nil {
		log.Println(err)
		c.JSON(notFoundOrServerStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": "capture was successfully deleted"})
}

// HandleExportCaptures returns the whole history as anonymized aggregate
// rows.
func (h *Handler) HandleExportCaptures(c *gin.Context) {

	rows, err := h.service.ExportCaptures()
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// HandleRecomputeCaptures re-derives the stored aggregates from the stored
// faces.
func (h *Handler) HandleRecomputeCaptures(c *gin.Context) {

	recomputed, err := h.service.RecomputeCaptures()
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"recomputed": recomputed}})
}

// analysisErrorStatus maps pipeline failures to response codes: quota
// rejections to 429, image problems to 400, vendor trouble to 502/503.
func analysisErrorStatus(err error) int {
	switch {
	case errors.Is(err, analysis_service.ErrQuotaExceeded), errors.Is(err, analysis_service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, provider.ErrBadImage):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrAuth), errors.Is(err, provider.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, provider.ErrTransient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func notFoundOrServerStatus(err error) int {
	if errors.Is(err, tools.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
