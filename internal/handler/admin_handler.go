package handler

import (
	"errors"
	"net/http"
	"strconv"

	"mess_finder/internal/middleware"
	"mess_finder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles moderation requests
type AdminHandler struct {
	service     service.AdminService
	messService service.MessService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(s service.AdminService, messService service.MessService) *AdminHandler {
	return &AdminHandler{service: s, messService: messService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("error listing users for admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), p.UserID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "admins cannot delete their own account"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Int("user_id", userID).Msg("error deleting user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *AdminHandler) DeleteMess(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseMessID(c)
	if !ok {
		return
	}

	if err := h.messService.DeleteMess(c.Request.Context(), id, p); err != nil {
		writeMessError(c, err, "delete mess")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mess deleted successfully"})
}

// RegisterAdminRoutes registers admin routes
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)  // Requires authentication
	adminRoutes.Use(adminMW) // Requires admin role
	{
		adminRoutes.GET("/users", h.ListUsers)
		adminRoutes.DELETE("/users/:id", h.DeleteUser)
		adminRoutes.DELETE("/mess/:id", h.DeleteMess)
	}
}
