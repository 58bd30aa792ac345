package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"blogread/api/handlers"
	"blogread/db"
	"blogread/services"
)

func New(svc *services.PostService) *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Try ping MongoDB
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/posts", handlers.ListPostsHandler(svc))
		api.GET("/posts/ids", handlers.ListPostIDsHandler(svc))
		api.GET("/posts/slug/:slug", handlers.GetPostBySlugHandler(svc))
		api.GET("/posts/:id", handlers.GetPostHandler(svc))
		api.POST("/posts/:id/refresh", handlers.RefreshPostHandler(svc))
		api.DELETE("/posts/:id", handlers.DeletePostHandler(svc))
		api.GET("/categories/:id/posts", handlers.PostsByCategoryHandler(svc))
		api.GET("/tags/:id/posts", handlers.PostsByTagHandler(svc))
		api.GET("/search", handlers.SearchPostsHandler(svc))
	}

	return r
}
