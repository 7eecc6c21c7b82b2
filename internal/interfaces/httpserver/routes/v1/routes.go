package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/lifelog-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.GET("/photos", r.handlers.Photos.List)
	group.GET("/chats", r.handlers.Chats.Search)
}

// RegisterLegacy keeps the unversioned paths served by the earlier deployment.
func (r *Routes) RegisterLegacy(router gin.IRouter) {
	router.GET("/photos", r.handlers.Photos.List)
	router.GET("/chats", r.handlers.Chats.Search)
}
