package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"mess_finder/internal/events"
	"mess_finder/internal/guard"
	"mess_finder/internal/model"
	"mess_finder/internal/repository"

	"github.com/rs/zerolog/log"
)

var (
	ErrMessNotFound   = errors.New("mess not found")
	ErrForbidden      = errors.New("forbidden: user does not have permission for this action")
	ErrMessValidation = errors.New("name, area, and price are required")
	ErrNegativePrice  = errors.New("price must not be negative")
)

// MessService defines operations for mess listings
type MessService interface {
	ListMesses(ctx context.Context, filters model.MessFilters) ([]model.Mess, error)
	GetMess(ctx context.Context, id int) (*model.Mess, error)
	ListOwnerMesses(ctx context.Context, ownerID int) ([]model.Mess, error)
	CreateMess(ctx context.Context, ownerID int, in model.CreateMessInput, image *multipart.FileHeader) (*model.Mess, error)
	UpdateMess(ctx context.Context, id, ownerID int, in model.UpdateMessInput, image *multipart.FileHeader) (*model.Mess, error)
	DeleteMess(ctx context.Context, id int, p *guard.Principal) error
}

type messService struct {
	repo      repository.MessRepository
	images    *ImageStore
	publisher events.Publisher
}

// NewMessService creates a new MessService
func NewMessService(repo repository.MessRepository, images *ImageStore, publisher events.Publisher) MessService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &messService{repo: repo, images: images, publisher: publisher}
}

func (s *messService) ListMesses(ctx context.Context, filters model.MessFilters) ([]model.Mess, error) {
	messes, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list messes from repo: %w", err)
	}
	return messes, nil
}

func (s *messService) GetMess(ctx context.Context, id int) (*model.Mess, error) {
	mess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find mess by ID: %w", err)
	}
	if mess == nil {
		return nil, ErrMessNotFound
	}
	return mess, nil
}

func (s *messService) ListOwnerMesses(ctx context.Context, ownerID int) ([]model.Mess, error) {
	messes, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner messes from repo: %w", err)
	}
	return messes, nil
}

func (s *messService) CreateMess(ctx context.Context, ownerID int, in model.CreateMessInput, image *multipart.FileHeader) (*model.Mess, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Area = strings.TrimSpace(in.Area)
	if in.Name == "" || in.Area == "" {
		return nil, ErrMessValidation
	}
	if in.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	mess := &model.Mess{
		Name:     in.Name,
		Area:     in.Area,
		Price:    in.Price,
		Delivery: in.Delivery,
		Menu:     in.Menu,
		OwnerID:  ownerID,
	}

	if image != nil {
		imageURL, err := s.images.Save(image)
		if err != nil {
			return nil, err
		}
		mess.ImageURL = &imageURL
	}

	if err := s.repo.Create(ctx, mess); err != nil {
		if mess.ImageURL != nil {
			s.images.Remove(*mess.ImageURL)
		}
		return nil, fmt.Errorf("failed to create mess in repo: %w", err)
	}

	s.publish(ctx, events.MessCreated, mess, ownerID)
	return mess, nil
}

func (s *messService) UpdateMess(ctx context.Context, id, ownerID int, in model.UpdateMessInput, image *multipart.FileHeader) (*model.Mess, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrMessValidation
		}
		in.Name = &name
	}
	if in.Area != nil {
		area := strings.TrimSpace(*in.Area)
		if area == "" {
			return nil, ErrMessValidation
		}
		in.Area = &area
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	in.ImageURL = nil
	if image != nil {
		imageURL, err := s.images.Save(image)
		if err != nil {
			return nil, err
		}
		in.ImageURL = &imageURL
	}

	mess, prevImage, err := s.repo.Update(ctx, id, ownerID, in)
	if err != nil || mess == nil {
		if in.ImageURL != nil {
			s.images.Remove(*in.ImageURL)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update mess in repo: %w", err)
		}
		return nil, s.missingOrForbidden(ctx, id)
	}

	if in.ImageURL != nil && prevImage != nil && *prevImage != *in.ImageURL {
		s.images.Remove(*prevImage)
	}

	s.publish(ctx, events.MessUpdated, mess, ownerID)
	return mess, nil
}

// DeleteMess lets owners delete their own listings and admins delete any
func (s *messService) DeleteMess(ctx context.Context, id int, p *guard.Principal) error {
	scope := p.UserID
	if p.Role == model.RoleAdmin {
		scope = 0
	}

	mess, err := s.repo.Delete(ctx, id, scope)
	if err != nil {
		return fmt.Errorf("failed to delete mess in repo: %w", err)
	}
	if mess == nil {
		return s.missingOrForbidden(ctx, id)
	}

	if mess.ImageURL != nil {
		s.images.Remove(*mess.ImageURL)
	}
	if p.Role == model.RoleAdmin && mess.OwnerID != p.UserID {
		log.Info().Int("mess_id", id).Int("owner_id", mess.OwnerID).Int("admin_id", p.UserID).Msg("mess removed by admin")
	}

	s.publish(ctx, events.MessDeleted, mess, p.UserID)
	return nil
}

// missingOrForbidden explains why an owner-scoped write matched no row
func (s *messService) missingOrForbidden(ctx context.Context, id int) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find mess: %w", err)
	}
	if existing == nil {
		return ErrMessNotFound
	}
	return ErrForbidden
}

func (s *messService) publish(ctx context.Context, key string, mess *model.Mess, actorID int) {
	evt := events.MessEvent{
		Type:    key,
		MessID:  mess.ID,
		OwnerID: mess.OwnerID,
		ActorID: actorID,
		At:      time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, key, evt); err != nil {
		log.Error().Err(err).Str("event", key).Int("mess_id", mess.ID).Msg("failed to publish mess event")
	}
}
