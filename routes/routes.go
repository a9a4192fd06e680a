package routes

import (
	"net/http"
	"time"

	"quotewizard/config"
	"quotewizard/handlers"
	"quotewizard/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterQuoteRoutes sets up the endpoints for the quote wizard.
func RegisterQuoteRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	quote := r.Group("/api/quote")
	{
		quote.GET("/address", hb.Address.Suggest)

		sessions := quote.Group("/sessions")
		sessions.POST("", hb.Wizard.StartSession)
		sessions.GET("/:id", hb.Wizard.GetSession)
		sessions.PATCH("/:id/fields", hb.Wizard.UpdateFields)
		sessions.POST("/:id/next", hb.Wizard.Next)
		sessions.POST("/:id/back", hb.Wizard.Back)
		sessions.DELETE("/:id", hb.Wizard.CancelSession)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the health monitor.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm the quote wizard"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	origins := config.AppConfig.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterQuoteRoutes(r, hb)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
