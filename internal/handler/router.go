package handler

import (
	"context"
	"net/http"
	"strings"

	"mess_finder/internal/guard"
	"mess_finder/internal/middleware"
	"mess_finder/internal/model"
	"mess_finder/internal/repository"
	"mess_finder/internal/service"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything the HTTP layer is wired from
type RouterConfig struct {
	Auth       service.AuthService
	Mess       service.MessService
	Admin      service.AdminService
	Verifier   guard.Verifier
	Denylist   repository.TokenDenylist // optional
	UploadsDir string
	CORSOrigin string
	Ping       func(ctx context.Context) error
}

// NewRouter builds the gin engine with every API route under /api
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigin))

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(cfg.Verifier, cfg.Denylist)
	ownerRoleMW := middleware.OwnerMiddleware()
	staffRoleMW := middleware.RoleMiddleware(model.RoleOwner, model.RoleAdmin)
	adminRoleMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	apiGroup := router.Group("/api")
	NewAuthHandler(cfg.Auth, cfg.Verifier).RegisterAuthRoutes(apiGroup, jwtAuthMW)
	NewMessHandler(cfg.Mess).RegisterMessRoutes(apiGroup, jwtAuthMW, ownerRoleMW, staffRoleMW)
	NewAdminHandler(cfg.Admin, cfg.Mess).RegisterAdminRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	router.Static(strings.TrimSuffix(service.UploadsURLPrefix, "/"), cfg.UploadsDir)

	router.GET("/health", func(c *gin.Context) {
		if cfg.Ping != nil {
			if err := cfg.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	return router
}
