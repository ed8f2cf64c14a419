package internal

import (
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/handler"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func setupRoutes(router *gin.Engine, h *handler.Handler) {
	apiGroup := router.Group("/api")

	{
		authMiddleware := middleware.NewAuthMiddleware()

		apiGroup.Use(authMiddleware.BasicAuthMiddleware())

		apiGroup.POST("/analyze", func(c *gin.Context) {
			h.HandleAnalyze(c)
		})
		apiGroup.GET("/captures", func(c *gin.Context) {
			h.HandleGetCaptures(c)
		})
		apiGroup.GET("/captures/:id", func(c *gin.Context) {
			h.HandleGetCapture(c)
		})
		apiGroup.DELETE("/captures/:id", func(c *gin.Context) {
			h.HandleDeleteCapture(c)
		})
		apiGroup.GET("/export", func(c *gin.Context) {
			h.HandleExportCaptures(c)
		})
		apiGroup.POST("/recompute", func(c *gin.Context) {
			h.HandleRecomputeCaptures(c)
		})
		apiGroup.GET("/usage", func(c *gin.Context) {
			h.HandleGetUsage(c)
		})
		apiGroup.GET("/settings", func(c *gin.Context) {
			h.HandleGetSettings(c)
		})
		apiGroup.PUT("/settings", func(c *gin.Context) {
			h.HandleUpdateSettings(c)
		})
	}
}
