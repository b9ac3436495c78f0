package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface: run creation plus read-back of
// persisted selections and combination tables.
func NewRouter(handler *RunHandler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/runs", handler.CreateRun)
		api.GET("/runs/:runId/selections", handler.GetSelections)
		api.GET("/runs/:runId/combinations", handler.GetCombinations)
	}

	return router
}
