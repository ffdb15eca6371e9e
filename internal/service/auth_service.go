package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mess_finder/internal/guard"
	"mess_finder/internal/model"
	"mess_finder/internal/repository"
	"mess_finder/internal/utils"

	"github.com/rs/zerolog/log"
)

var (
	ErrValidation         = errors.New("name, email, password, and role are required")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidRole        = errors.New("role must be one of: owner, admin")
	ErrUserAlreadyExists  = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", utils.MaxPasswordBytes)
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, p *guard.Principal) error
	Me(ctx context.Context, userID int) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	denylist repository.TokenDenylist
	now      func() time.Time
}

// NewAuthService creates a new AuthService; denylist may be nil, in which case
// logout is left to the client discarding its token
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, denylist repository.TokenDenylist) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		denylist: denylist,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" || email == "" || req.Password == "" || req.Role == "" {
		return nil, ErrValidation
	}
	if !model.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	if len(req.Password) > utils.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		CreatedAt:    s.now(),
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = &phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	log.Info().Int("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateTokenAt(user.ID, user.Role, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Logout revokes the presented token until its natural expiry
func (s *authService) Logout(ctx context.Context, p *guard.Principal) error {
	if s.denylist == nil || p == nil || p.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, p.TokenID, p.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Me returns the profile of the authenticated user
func (s *authService) Me(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
