package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

const (
	timetableCacheNamespace = "timetables:"
	generationKey           = timetableCacheNamespace + "generation"
	generationPattern       = timetableCacheNamespace + "[0-9]*"
)

// CacheRepository abstracts persistence for cached read models.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// CacheService is a best-effort read cache for timetable listings and teacher schedules.
// Keys are prefixed with a generation counter; any timetable write bumps the
// counter, which orphans every entry written under an older generation.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// ListKey identifies one page of a filtered timetable listing.
func ListKey(filter models.TimetableFilter) string {
	return fmt.Sprintf("list:%s:%d:%d:%s:%d:%d",
		strings.ToLower(strings.TrimSpace(filter.Department)),
		filter.CollegeYear,
		filter.Semester,
		strings.ToLower(strings.TrimSpace(filter.Division)),
		filter.Page,
		filter.PageSize,
	)
}

// TeacherKey identifies the cached schedule of one teacher.
func TeacherKey(teacherName string) string {
	return "teacher:" + scheduler.NormalizeName(teacherName)
}

// CacheView pins the generation current when a read started. Values read from
// the database after that point are stored under the pinned generation, so a
// write that invalidates in between makes them unreachable.
type CacheView struct {
	svc    *CacheService
	prefix string
}

// View pins the current generation. It returns nil, which caches nothing, when
// caching is off or the generation cannot be read.
func (s *CacheService) View(ctx context.Context) *CacheView {
	if !s.Enabled() {
		return nil
	}
	var generation int64
	if err := s.repo.Get(ctx, generationKey, &generation); err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache generation unavailable", zap.Error(err))
		return nil
	}
	return &CacheView{svc: s, prefix: fmt.Sprintf("%s%d:", timetableCacheNamespace, generation)}
}

// Get loads a cached value into dest and reports whether it was found.
// Backend failures count as misses.
func (v *CacheView) Get(ctx context.Context, key string, dest interface{}) bool {
	if v == nil {
		return false
	}
	start := time.Now()
	err := v.svc.repo.Get(ctx, v.prefix+key, dest)
	v.svc.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		v.svc.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores value; a non-positive ttl uses the default.
func (v *CacheView) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if v == nil {
		return
	}
	if ttl <= 0 {
		ttl = v.svc.defaultTTL
	}
	start := time.Now()
	err := v.svc.repo.Set(ctx, v.prefix+key, value, ttl)
	v.svc.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		v.svc.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Get reads key under the current generation.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	return s.View(ctx).Get(ctx, key, dest)
}

// Set writes key under the current generation.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	s.View(ctx).Set(ctx, key, value, ttl)
}

// InvalidateAll bumps the generation and then reclaims the orphaned entries.
func (s *CacheService) InvalidateAll(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	if _, err := s.repo.Incr(ctx, generationKey); err != nil {
		s.logger.Warn("cache generation bump failed", zap.Error(err))
	}
	if err := s.repo.DeleteByPattern(ctx, generationPattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", generationPattern), zap.Error(err))
	}
}
