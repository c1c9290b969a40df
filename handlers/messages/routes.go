package messages

import (
	"contests/middleware"
	"contests/services"

	"github.com/gin-gonic/gin"
)

// Handler serves the administrator inbox
type Handler struct {
	sink *services.MessageSink
}

func NewHandler(sink *services.MessageSink) *Handler {
	return &Handler{sink: sink}
}

// RegisterRoutes registers all routes related to messages
// r: the RouterGroup to which the routes are added
// auth: the middleware authenticating the caller
func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	messages := r.Group("/messages")
	messages.Use(auth, middleware.AdminMiddleware())
	{
		messages.GET("", h.GetInbox)
	}
}
