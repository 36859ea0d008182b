package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	items := g.Group("/items")

	items.GET("/search", h.Search)

	items.Use(authMiddleware)
	{
		items.POST("", h.Create)
		items.GET("", h.ListOwn)
		items.GET("/:id", h.Get)
		items.PATCH("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
		items.POST("/:id/comments", h.CreateComment)
	}
}
