package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterPingRoutes registers the liveness route
func RegisterPingRoutes(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
