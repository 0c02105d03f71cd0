package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/cache"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"golang.org/x/sync/singleflight"
)

const questionCachePrefix = "questions:"

// CachedQuestionSource keeps question lists in the cache for ttl and collapses
// concurrent misses for the same lesson into one upstream call. Cache failures
// are logged and fall through to the upstream source.
type CachedQuestionSource struct {
	next   QuestionSource
	cache  cache.CacheService
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func NewCachedQuestionSource(next QuestionSource, c cache.CacheService, ttl time.Duration, logger *slog.Logger) *CachedQuestionSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedQuestionSource{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func questionCacheKey(lessonID string) string {
	return questionCachePrefix + lessonID
}

func (s *CachedQuestionSource) ListQuestions(ctx context.Context, lessonID string) (*models.QuestionSet, error) {
	key := questionCacheKey(lessonID)

	var cached models.QuestionSet
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("question cache read failed", "lesson_id", lessonID, "error", err)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		set, err := s.next.ListQuestions(ctx, lessonID)
		if err != nil {
			return nil, err
		}
		// An empty list is not cached so newly generated questions show up.
		if len(set.Questions) > 0 {
			if err := s.cache.Set(ctx, key, set, s.ttl); err != nil {
				s.logger.Warn("question cache write failed", "lesson_id", lessonID, "error", err)
			}
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.QuestionSet), nil
}

// Invalidate drops the cached list of lessonID.
func (s *CachedQuestionSource) Invalidate(ctx context.Context, lessonID string) error {
	if err := s.cache.Delete(ctx, questionCacheKey(lessonID)); err != nil {
		return fmt.Errorf("invalidate questions of %s: %w", lessonID, err)
	}
	return nil
}

// InvalidateAll drops every cached question list.
func (s *CachedQuestionSource) InvalidateAll(ctx context.Context) error {
	return s.cache.DeletePattern(ctx, questionCachePrefix+"*")
}
