package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kurakani/kurakani/controllers"
	"github.com/kurakani/kurakani/middlewares"
)

// InitRouter wires the route table. jwtSecret feeds the auth middleware;
// allowedOrigins feeds CORS (empty list → local development defaults).
func InitRouter(news *controllers.NewsController, auth *controllers.AuthController, jwtSecret string, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	allowCreds := true
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		allowCreds = false
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	// Public health endpoint for liveness/readiness checks
	r.GET("/health", controllers.Health)

	r.GET("/news", news.GetNews)
	r.GET("/news/stored", news.GetStoredNews)
	r.POST("/news", news.CreateNews)
	r.PUT("/news/:id", news.UpdateNews)
	r.DELETE("/news/:id", news.DeleteNews)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)

		protected := authGroup.Group("")
		protected.Use(middlewares.AuthMiddleware(jwtSecret))
		{
			protected.GET("/users/me", auth.Me)
			protected.GET("/protected", auth.Protected)
		}
	}

	return r
}
