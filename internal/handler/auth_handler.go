package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"mess_finder/internal/guard"
	"mess_finder/internal/middleware"
	"mess_finder/internal/model"
	"mess_finder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service  service.AuthService
	verifier guard.Verifier
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, verifier guard.Verifier) *AuthHandler {
	return &AuthHandler{service: s, verifier: verifier}
}

// bindJSON decodes the request body; missing required fields are reported
// with requiredMsg, anything else as a malformed request
func bindJSON(c *gin.Context, dst any, requiredMsg string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": requiredMsg})
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
	}
	return false
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req, service.ErrValidation.Error()) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation),
			errors.Is(err, service.ErrInvalidRole),
			errors.Is(err, service.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("error during registration")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req, service.ErrMissingCredentials.Error()) {
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			log.Error().Err(err).Msg("error during login")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		}
		return
	}

	log.Info().Int("user_id", user.ID).Msg("user logged in")
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Logout(c.Request.Context(), p); err != nil {
		log.Error().Err(err).Int("user_id", p.UserID).Msg("error during logout")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Me(c.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Int("user_id", p.UserID).Msg("error loading profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type navigateRequest struct {
	Token        string   `json:"token"`
	AllowedRoles []string `json:"allowed_roles"`
}

// Navigate answers the client router's route-change check. The token comes
// from the body or, failing that, the Authorization header.
func (h *AuthHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Token == "" {
		req.Token = middleware.BearerToken(c.GetHeader("Authorization"))
	}

	c.JSON(http.StatusOK, guard.Navigate(h.verifier, req.Token, time.Now(), req.AllowedRoles...))
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/navigate", h.Navigate)
		authGroup.POST("/logout", authMW, h.Logout)
		authGroup.GET("/me", authMW, h.Me)
	}
}
