package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

const (
	dashboardCacheKey     = "dashboard:summary"
	dashboardCachePattern = "dashboard:*"
)

type archiveCounter interface {
	Count(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

type recordCounter interface {
	Count(ctx context.Context) (int, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// DashboardService composes the landing page counters.
type DashboardService struct {
	archives archiveCounter
	users    recordCounter
	types    recordCounter
	cache    dashboardCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService. cache may be nil.
func NewDashboardService(archives archiveCounter, users, types recordCounter, cache dashboardCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{archives: archives, users: users, types: types, cache: cache, ttl: ttl, logger: logger}
}

// Stats returns headline counts and whether they came from cache.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, bool, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		if s.cache.Get(ctx, dashboardCacheKey, &cached) {
			return &cached, true, nil
		}
	}

	stats := &models.DashboardStats{ByCategory: []models.CategoryCount{}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.archives.Count(gctx)
		stats.TotalArchives = n
		return err
	})
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.types.Count(gctx)
		stats.TotalDocumentTypes = n
		return err
	})
	g.Go(func() error {
		rows, err := s.archives.CountByCategory(gctx)
		if rows != nil {
			stats.ByCategory = rows
		}
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard aggregation failed", zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}

	if s.cache != nil {
		s.cache.Set(ctx, dashboardCacheKey, stats, s.ttl)
	}
	return stats, false, nil
}
