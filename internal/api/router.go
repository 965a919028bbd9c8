package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kusinaops/inventory-service/internal/auth"
)

type Registrar interface {
	Register(rg *gin.RouterGroup)
}

// NewRouter mounts every handler group under /api/v1 behind the tenant
// middleware. The health endpoint stays outside so probes need no headers.
func NewRouter(handlers ...Registrar) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(auth.RequireRestaurant())
	for _, h := range handlers {
		h.Register(v1)
	}

	return router
}
