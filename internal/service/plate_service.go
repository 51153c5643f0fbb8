package service

import (
	"context"
	"plate-rescue/internal/cache"
	"plate-rescue/internal/model"
	"plate-rescue/internal/repository"
	apperrors "plate-rescue/pkg/app_errors"
	"plate-rescue/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

type PlateService interface {
	Create(ctx context.Context, actor model.Actor, req model.CreatePlateRequest) (*model.Plate, error)
	GetByID(ctx context.Context, id int) (*model.Plate, error)
	// ListAvailable serves the marketplace from the cache, falling back to the database.
	ListAvailable(ctx context.Context) ([]model.PlateAvailability, error)
	ListMine(ctx context.Context, actor model.Actor) ([]*model.Plate, error)
	Deactivate(ctx context.Context, actor model.Actor, id int) error
	// Refresh reloads one plate into the availability cache.
	Refresh(ctx context.Context, plateID int) error
	// WarmUp loads every open plate into the availability cache.
	WarmUp(ctx context.Context) (int, error)
}

type PlateServiceImpl struct {
	repository repository.PlateRepository
	cache      cache.PlateAvailabilityCache
	now        func() time.Time
}

// NewPlateService builds the service; availability may be nil to always read the database.
func NewPlateService(plateRepository repository.PlateRepository, availability cache.PlateAvailabilityCache) PlateService {
	return &PlateServiceImpl{
		repository: plateRepository,
		cache:      availability,
		now:        time.Now,
	}
}

func (s *PlateServiceImpl) Create(ctx context.Context, actor model.Actor, req model.CreatePlateRequest) (*model.Plate, error) {
	if !actor.Is(model.RoleRestaurant) {
		return nil, apperrors.ErrRoleNotAllowed
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || req.Price.IsNegative() || !req.WindowStart.Before(req.WindowEnd) {
		return nil, apperrors.ErrInvalidInput
	}
	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	plate, err := s.repository.Create(ctx, &model.Plate{
		RestaurantID:     actor.UserID,
		Title:            title,
		Description:      req.Description,
		Price:            req.Price.Round(2),
		QuantityOriginal: req.Quantity,
		WindowStart:      req.WindowStart,
		WindowEnd:        req.WindowEnd,
	})
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, plate)
	return plate, nil
}

func (s *PlateServiceImpl) GetByID(ctx context.Context, id int) (*model.Plate, error) {
	plate, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plate.IsActive {
		return nil, apperrors.ErrPlateNotFound
	}
	return plate, nil
}

func (s *PlateServiceImpl) ListAvailable(ctx context.Context) ([]model.PlateAvailability, error) {
	now := s.now()

	if s.cache != nil {
		plates, err := s.cache.List(ctx, now)
		if err == nil {
			return plates, nil
		}
		logger.WithComponent("cache").Warn("availability cache unavailable, reading database", zap.Error(err))
	}

	plates, err := s.repository.ListAvailable(ctx, now)
	if err != nil {
		return nil, err
	}

	result := make([]model.PlateAvailability, 0, len(plates))
	for _, p := range plates {
		result = append(result, p.Availability())
	}
	return result, nil
}

func (s *PlateServiceImpl) ListMine(ctx context.Context, actor model.Actor) ([]*model.Plate, error) {
	if !actor.Is(model.RoleRestaurant) {
		return nil, apperrors.ErrRoleNotAllowed
	}
	return s.repository.ListByRestaurantID(ctx, actor.UserID)
}

func (s *PlateServiceImpl) Deactivate(ctx context.Context, actor model.Actor, id int) error {
	if !actor.Is(model.RoleRestaurant) {
		return apperrors.ErrRoleNotAllowed
	}

	if err := s.repository.Deactivate(ctx, id, actor.UserID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Remove(ctx, id); err != nil {
			logger.WithComponent("cache").Warn("failed to remove plate from cache", zap.Int("plate_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *PlateServiceImpl) Refresh(ctx context.Context, plateID int) error {
	if s.cache == nil {
		return nil
	}

	plate, err := s.repository.FindByID(ctx, plateID)
	if err != nil {
		return err
	}

	_, err = s.cache.Set(ctx, plate)
	return err
}

func (s *PlateServiceImpl) WarmUp(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}

	plates, err := s.repository.ListActive(ctx, s.now())
	if err != nil {
		return 0, err
	}

	for _, plate := range plates {
		if _, err := s.cache.Set(ctx, plate); err != nil {
			return 0, err
		}
	}
	return len(plates), nil
}

func (s *PlateServiceImpl) cacheSet(ctx context.Context, plate *model.Plate) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Set(ctx, plate); err != nil {
		logger.WithComponent("cache").Warn("failed to cache plate", zap.Int("plate_id", plate.ID), zap.Error(err))
	}
}
