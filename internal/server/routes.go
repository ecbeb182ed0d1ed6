package server

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"clickdone/internal/auth"
	"clickdone/internal/server/routes"
)

func (s *Server) RegisterRoutes() http.Handler {
	// Initialize Goth providers
	auth.InitGothProviders()

	r := gin.Default()

	// Set up sessions
	store := cookie.NewStore([]byte(os.Getenv("SESSION_SECRET")))
	r.Use(sessions.Sessions("clickdone-session", store))

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/health", s.healthHandler)

	routes.NewAuthRoutes(s).RegisterRoutes(r)
	routes.NewUserRoutes(s).RegisterRoutes(r)
	routes.NewRequestRoutes(s).RegisterRoutes(r)
	routes.NewWizardRoutes(s).RegisterRoutes(r)
	routes.NewFeedbackRoutes(s).RegisterRoutes(r)
	routes.NewFileRoutes(s).RegisterRoutes(r)
	routes.NewPaymentRoutes(s).RegisterRoutes(r)
	routes.NewNotificationRoutes(s).RegisterRoutes(r)
	routes.NewAdminRoutes(s).RegisterRoutes(r)

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.db.Health())
}
