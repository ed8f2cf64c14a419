package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleGetUsage returns every provider's usage record for the current
// monthly window.
func (h *Handler) HandleGetUsage(c *gin.Context) {

	records, err := h.service.CurrentUsage()
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
