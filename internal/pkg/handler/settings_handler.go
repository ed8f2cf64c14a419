package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/settings_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/service/settings_service"
)

// HandleGetSettings returns the current settings, creating the defaults on
// first use.
func (h *Handler) HandleGetSettings(c *gin.Context) {

	cfg, err := h.service.Get()
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

// HandleUpdateSettings validates and persists new settings. The payload is
// bound by value: a JSON null body then decodes as a no-op and fails
// validation like any other incomplete payload instead of producing a nil
// settings pointer.
func (h *Handler) HandleUpdateSettings(c *gin.Context) {
	var cfg settings_model.Settings

	if err := c.BindJSON(&cfg); err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Update(&cfg); err != nil {
		log.Println(err)
		if errors.Is(err, settings_service.ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}
