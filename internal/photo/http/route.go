package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// Upload hangs off the item resource; downloads are public so photo URLs
	// can be embedded directly in listings.
	g.POST("/items/:id/photos", authMiddleware, h.Upload)

	photos := g.Group("/photos")
	{
		photos.GET("/:id", h.Download)
		photos.GET("/:id/thumbnail", h.DownloadThumbnail)
		photos.DELETE("/:id", authMiddleware, h.Delete)
	}
}
