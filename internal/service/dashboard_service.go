package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sohaibminhas1/lims-api/internal/models"
	appErrors "github.com/sohaibminhas1/lims-api/pkg/errors"
)

type dashboardRepository interface {
	AdminStats(ctx context.Context) (*models.AdminDashboard, error)
	UserStats(ctx context.Context, userID string) (*models.UserDashboard, error)
	TechnicianStats(ctx context.Context, userID string) (*models.TechnicianDashboard, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DashboardService serves the role-scoped dashboard statistics, cached
// per account with a short TTL.
type DashboardService struct {
	repo   dashboardRepository
	cache  dashboardCache
	logger *zap.Logger
	ttl    time.Duration
}

// NewDashboardService creates an instance of DashboardService.
func NewDashboardService(repo dashboardRepository, cache dashboardCache, logger *zap.Logger, ttl time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, ttl: ttl}
}

// ForRole returns the dashboard payload matching the caller's role.
func (s *DashboardService) ForRole(ctx context.Context, role models.UserRole, userID string) (interface{}, error) {
	switch role {
	case models.RoleAdmin:
		return s.admin(ctx)
	case models.RoleLabTechnician:
		return s.technician(ctx, userID)
	case models.RoleTeacher, models.RoleStudent:
		return s.user(ctx, userID)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
}

func (s *DashboardService) admin(ctx context.Context) (*models.AdminDashboard, error) {
	key := "dashboard:admin"
	if s.cache != nil {
		var cached models.AdminDashboard
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.repo.AdminStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load admin dashboard")
	}
	s.store(ctx, key, stats)
	return stats, nil
}

func (s *DashboardService) user(ctx context.Context, userID string) (*models.UserDashboard, error) {
	key := fmt.Sprintf("dashboard:user:%s", userID)
	if s.cache != nil {
		var cached models.UserDashboard
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.repo.UserStats(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load user dashboard")
	}
	s.store(ctx, key, stats)
	return stats, nil
}

func (s *DashboardService) technician(ctx context.Context, userID string) (*models.TechnicianDashboard, error) {
	key := fmt.Sprintf("dashboard:tech:%s", userID)
	if s.cache != nil {
		var cached models.TechnicianDashboard
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.repo.TechnicianStats(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load technician dashboard")
	}
	s.store(ctx, key, stats)
	return stats, nil
}

// Invalidate drops every cached dashboard payload. Called after writes
// that change the underlying statistics.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}
