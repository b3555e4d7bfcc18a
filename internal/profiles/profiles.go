// Package profiles resolves actor identities for stamping and read-time
// enrichment, with a short-lived Redis cache in front of the identity store.
package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shaygp/boxd/internal/cache"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/metrics"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 60 * time.Second

	cacheName = "profiles"
	keyPrefix = "profile:"
)

// Cache is the subset of cache.RedisClient the resolver uses
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Resolver looks up actor identities
type Resolver struct {
	repo  repository.ProfileRepository
	cache Cache
	ttl   time.Duration
}

// NewResolver creates a resolver. A nil cache reads straight from the store.
func NewResolver(repo repository.ProfileRepository, c Cache, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{repo: repo, cache: c, ttl: ttl}
}

// Resolve returns the current identity of userID, or NOT_FOUND
func (r *Resolver) Resolve(ctx context.Context, userID string) (models.ActorIdentity, error) {
	if identity, ok := r.cached(ctx, userID); ok {
		return identity, nil
	}

	user, err := r.repo.GetProfile(ctx, userID)
	if err != nil {
		return models.ActorIdentity{}, err
	}
	identity := user.Identity()
	r.store(ctx, identity)
	return identity, nil
}

// Patch is the read-time enrichment decorator. It returns current untouched
// unless the snapshot is missing its display name, in which case it returns
// a copy filled from the live profile. Nothing is written back, and lookup
// failures leave current as it was.
func (r *Resolver) Patch(ctx context.Context, actorID string, current models.ActorIdentity) models.ActorIdentity {
	if !current.Missing() {
		return current
	}

	live, err := r.Resolve(ctx, actorID)
	if err != nil {
		logger.Log.Debug("Identity patch lookup failed",
			logger.WithActorID(actorID),
			zap.Error(err),
		)
		return current
	}

	patched := current
	patched.ID = actorID
	patched.DisplayName = live.DisplayName
	if patched.AvatarURL == "" {
		patched.AvatarURL = live.AvatarURL
	}
	return patched
}

// Invalidate drops a cached identity, e.g. after a profile edit
func (r *Resolver) Invalidate(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, keyPrefix+userID); err != nil {
		metrics.Get().CacheErrorsTotal.WithLabelValues(cacheName, "del").Inc()
		logger.Log.Debug("Profile cache invalidate failed", logger.WithUserID(userID), zap.Error(err))
	}
}

func (r *Resolver) cached(ctx context.Context, userID string) (models.ActorIdentity, bool) {
	if r.cache == nil {
		return models.ActorIdentity{}, false
	}

	raw, err := r.cache.Get(ctx, keyPrefix+userID)
	switch {
	case errors.Is(err, cache.ErrMiss):
		metrics.Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
		return models.ActorIdentity{}, false
	case err != nil:
		metrics.Get().CacheErrorsTotal.WithLabelValues(cacheName, "get").Inc()
		logger.Log.Debug("Profile cache read failed", logger.WithUserID(userID), zap.Error(err))
		return models.ActorIdentity{}, false
	}

	var identity models.ActorIdentity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.ID == "" {
		metrics.Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
		return models.ActorIdentity{}, false
	}
	metrics.Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
	return identity, true
}

func (r *Resolver) store(ctx context.Context, identity models.ActorIdentity) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(identity)
	if err != nil {
		return
	}
	if err := r.cache.SetEx(ctx, keyPrefix+identity.ID, string(data), r.ttl); err != nil {
		metrics.Get().CacheErrorsTotal.WithLabelValues(cacheName, "set").Inc()
		logger.Log.Debug("Profile cache write failed", logger.WithUserID(identity.ID), zap.Error(err))
	}
}
