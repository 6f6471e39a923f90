package services

import (
	"context"
	"strings"
	"time"

	"pollwise/internal/domain/settings"
	"pollwise/internal/redis"
	"pollwise/internal/repository"
	pollwise_errors "pollwise/pkg/errors"
)

type SettingsService struct {
	repo repository.SettingsRepository
	// cache may be nil when redis is not configured.
	cache *redis.ResultsCache
}

func NewSettingsService(repo repository.SettingsRepository, cache *redis.ResultsCache) *SettingsService {
	return &SettingsService{repo: repo, cache: cache}
}

func (s *SettingsService) Get(ctx context.Context) (settings.Settings, error) {
	return s.repo.Get(ctx)
}

func (s *SettingsService) Update(ctx context.Context, in settings.Settings) (settings.Settings, error) {
	if in.PopupDelaySeconds < 0 || in.ContestDefaultDays < 1 || in.RetentionDays < 0 || in.CacheTTLSeconds < 0 {
		return settings.Settings{}, pollwise_errors.ErrInvalidInput
	}
	if in.WeeklyRotationDay < 0 || in.WeeklyRotationDay > 6 {
		return settings.Settings{}, pollwise_errors.ErrInvalidInput
	}
	for _, f := range strings.Split(in.ExportFormats, ",") {
		switch strings.TrimSpace(f) {
		case "json", "csv", "xml", "":
		default:
			return settings.Settings{}, pollwise_errors.ErrInvalidInput
		}
	}

	old, err := s.repo.Get(ctx)
	if err != nil {
		return settings.Settings{}, err
	}

	in.ID = 1
	in.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, in); err != nil {
		return settings.Settings{}, err
	}

	// Cached results carry the old TTL; drop them when caching is
	// reconfigured.
	if s.cache != nil && (old.CacheEnabled != in.CacheEnabled || old.CacheTTLSeconds != in.CacheTTLSeconds) {
		_ = s.cache.InvalidateAllResults(ctx)
	}
	return s.repo.Get(ctx)
}
