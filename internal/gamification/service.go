package gamification

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ecocampus/complaint-service/internal/persistence"
	"github.com/ecocampus/complaint-service/internal/repository"
)

const leaderboardCacheKey = "leaderboard:v1"

// Service serves the leaderboard, fronted by a short-lived Redis cache that
// degrades to recomputation whenever Redis is unreachable.
type Service struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	cache      *persistence.Redis
	ttl        time.Duration
	logger     *zap.Logger
}

// NewService constructs the leaderboard service. A zero TTL disables caching.
func NewService(users repository.UserRepository, complaints repository.ComplaintRepository, cache *persistence.Redis, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:      users,
		complaints: complaints,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// Leaderboard returns current standings.
func (s *Service) Leaderboard(ctx context.Context) ([]Entry, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	complaints, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, err
	}

	entries := ComputeLeaderboard(users, complaints)
	s.toCache(ctx, entries)
	return entries, nil
}

// Invalidate drops the cached standings after a mutation.
func (s *Service) Invalidate(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Client.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		s.logger.Debug("leaderboard cache invalidation failed", zap.Error(err))
	}
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.cache.Client != nil && s.ttl > 0
}

func (s *Service) fromCache(ctx context.Context) ([]Entry, bool) {
	if !s.cacheEnabled() {
		return nil, false
	}
	raw, err := s.cache.Client.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *Service) toCache(ctx context.Context, entries []Entry) {
	if !s.cacheEnabled() {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, leaderboardCacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Debug("leaderboard cache write failed", zap.Error(err))
	}
}
