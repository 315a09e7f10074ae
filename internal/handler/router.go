package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/examforge/internal/middleware"
	"github.com/xxxsen/examforge/internal/pkg/response"
)

type RouterDeps struct {
	Sessions  *SessionHandler
	Search    *SearchHandler
	Assemble  *AssembleHandler
	Render    *RenderHandler
	Files     *FileHandler
	RateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "ExamForge API is running"})
	})
	api.GET("/healthcheck", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api.POST("/upload", deps.Sessions.Upload)
	api.GET("/sessions/:id", deps.Sessions.Get)
	api.DELETE("/sessions/:id", deps.Sessions.Delete)
	api.GET("/thumbnail/:file_id/:page", deps.Render.Thumbnail)

	limited := api.Group("")
	limited.Use(middleware.RateLimit(deps.RateLimit))
	limited.POST("/search", deps.Search.Search)
	limited.POST("/generate-instant", deps.Search.GenerateInstant)

	api.POST("/generate-pdf", deps.Assemble.GeneratePDF)
	api.GET("/generated/:key", deps.Files.Generated)
	api.GET("/uploads/:key", deps.Files.Upload)
}
