package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const restaurantIDKey = "restaurant_id"

// GetRestaurantID returns the tenant id for the request. Upstream middleware
// (the platform gateway) normally sets it; the header is the fallback for
// direct calls.
func GetRestaurantID(c *gin.Context) string {
	if val, ok := c.Get(restaurantIDKey); ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return c.GetHeader("X-Restaurant-ID")
}

// RequireRestaurant rejects requests without a tenant id.
func RequireRestaurant() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetRestaurantID(c)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing restaurant id"})
			return
		}
		c.Set(restaurantIDKey, id)
		c.Next()
	}
}
