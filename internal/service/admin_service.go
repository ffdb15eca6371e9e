package service

import (
	"context"
	"fmt"

	"mess_finder/internal/model"
	"mess_finder/internal/repository"

	"github.com/rs/zerolog/log"
)

// AdminService provides user moderation for admins
type AdminService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, actorID, userID int) error
}

type adminService struct {
	userRepo repository.UserRepository
	messRepo repository.MessRepository
	images   *ImageStore
}

// NewAdminService creates a new AdminService
func NewAdminService(userRepo repository.UserRepository, messRepo repository.MessRepository, images *ImageStore) AdminService {
	return &adminService{userRepo: userRepo, messRepo: messRepo, images: images}
}

func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users from repo: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user; their listings go with them through the
// foreign key cascade and their image files are removed afterwards
func (s *adminService) DeleteUser(ctx context.Context, actorID, userID int) error {
	if actorID == userID {
		return ErrForbidden
	}

	images, err := s.messRepo.FindImagesByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to collect listing images: %w", err)
	}

	deleted, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user in repo: %w", err)
	}
	if !deleted {
		return ErrUserNotFound
	}

	for _, image := range images {
		s.images.Remove(image)
	}
	log.Info().Int("user_id", userID).Int("admin_id", actorID).Int("images", len(images)).Msg("user deleted by admin")
	return nil
}
