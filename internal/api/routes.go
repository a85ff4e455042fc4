package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"promptpilot-backend/internal/core"
	"promptpilot-backend/internal/identity"
	"promptpilot-backend/internal/middleware"
)

// SetupRoutes configures all application routes. Global middleware
// (logging, recovery, CORS) is applied to the router in main before this
// runs.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	verifier identity.Verifier,
	authService core.AuthService,
	profileService core.ProfileService,
	documentService core.DocumentService,
	usageService core.UsageService,
) {
	authMW := middleware.NewAuthMiddleware(verifier)

	authHandler := NewAuthHandler(authService, logger)
	dataHandler := NewDataHandler(profileService, documentService, usageService, logger)

	apiGroup := router.Group("/api")
	{
		// Credential proxy. Register/login/google are public by nature;
		// account deletion needs a verified session.
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/google", authHandler.GoogleLogin)
			authGroup.DELETE("/account", authMW.VerifyToken(), authHandler.DeleteAccount)
		}

		// Profile/document store proxy, bearer-token protected throughout.
		dataGroup := apiGroup.Group("/data", authMW.VerifyToken())
		{
			dataGroup.GET("/profile", dataHandler.GetProfile)
			dataGroup.PUT("/profile", dataHandler.SetProfile)
			dataGroup.DELETE("/profile", dataHandler.DeleteProfile)

			dataGroup.GET("/collections/:name", dataHandler.ListCollection)
			dataGroup.POST("/collections/:name", dataHandler.AddItem)
			dataGroup.PUT("/collections/:name/:id", dataHandler.UpdateItem)
			dataGroup.DELETE("/collections/:name/:id", dataHandler.DeleteItem)

			dataGroup.GET("/usage", dataHandler.GetUsage)
			dataGroup.POST("/usage/optimizations", dataHandler.RecordOptimization)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api and /health.")
}
