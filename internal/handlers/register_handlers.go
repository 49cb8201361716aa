package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/middleware"
	"github.com/monkesto/tally/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	registerValidators()

	registerHomeRoutes(r)

	// Public authentication routes
	registerAuthRoutes(r, services)

	// Everything under /api/v1 requires a valid access token.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	registerUserRoutes(v1, services.User)
	registerJournalRoutes(v1, services)
}
