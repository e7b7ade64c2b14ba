package routes

import (
	"github.com/gin-gonic/gin"

	"rideboard-api/controllers"
)

func SetupRoutes(r *gin.Engine, tripController *controllers.TripController) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	v1 := r.Group("/api/v1")

	trips := v1.Group("/trips")
	{
		trips.POST("", tripController.PostTrip)
		trips.GET("/search", tripController.SearchTrips)
		trips.GET("/mine", tripController.MyTrips)
		trips.DELETE("/:id", tripController.DeleteTrip)
	}

	maintenance := v1.Group("/maintenance")
	{
		maintenance.POST("/cleanup", tripController.CleanupExpired)
	}
}

// SetupCORS allows browser clients on other origins to reach the API.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
