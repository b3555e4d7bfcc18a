// Package container wires the boxd services over one database and an
// optional profile cache, and owns their shutdown order.
package container

import (
	"context"
	"sync"

	"github.com/shaygp/boxd/internal/actions"
	"github.com/shaygp/boxd/internal/activity"
	"github.com/shaygp/boxd/internal/auth"
	"github.com/shaygp/boxd/internal/config"
	"github.com/shaygp/boxd/internal/counters"
	"github.com/shaygp/boxd/internal/graph"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/notifications"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/timeline"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds every service the API and the admin CLI use
type Container struct {
	db    *gorm.DB
	cache profiles.Cache

	repos         *repository.Repositories
	counters      *counters.Ledger
	profiles      *profiles.Resolver
	graph         *graph.Graph
	activities    *activity.Ledger
	timeline      *timeline.Service
	notifications *notifications.Dispatcher
	actions       *actions.Service
	auth          *auth.Service

	cleanupFuncs []func(context.Context) error
	mu           sync.Mutex
}

// New wires the services. cache may be nil, in which case profiles are
// read straight from the store.
func New(cfg *config.Config, db *gorm.DB, cache profiles.Cache) (*Container, error) {
	if err := validate(cfg, db); err != nil {
		return nil, err
	}

	c := &Container{db: db, cache: cache}
	c.repos = repository.New(db, cfg.Feed.MembershipLimit)
	c.counters = counters.NewLedger(c.repos.Counters)
	c.profiles = profiles.NewResolver(c.repos.Profiles, cache, cfg.ProfileCacheTTL)
	c.graph = graph.New(c.repos.Follows, c.repos.Profiles, c.counters)
	c.activities = activity.NewLedger(c.repos.Activities, c.profiles)
	c.timeline = timeline.NewService(c.activities, c.graph, timeline.Config{
		BatchSize:         cfg.Feed.MembershipLimit,
		PerBatchLimit:     cfg.Feed.PerBatchLimit,
		EnrichConcurrency: cfg.Feed.EnrichConcurrency,
	})
	c.notifications = notifications.NewDispatcher(c.repos.Notifications, c.profiles, cfg.Notifications.BulkChunk)
	c.actions = actions.New(actions.Deps{
		Graph:         c.graph,
		Counters:      c.counters,
		Activities:    c.activities,
		Notifications: c.notifications,
		Profiles:      c.profiles,
		Likes:         c.repos.Likes,
		Comments:      c.repos.Comments,
		Content:       c.repos.Content,
	})
	c.auth = auth.NewService([]byte(cfg.JWTSecret))
	return c, nil
}

func validate(cfg *config.Config, db *gorm.DB) error {
	var missing []string
	if cfg == nil {
		missing = append(missing, "config")
	}
	if db == nil {
		missing = append(missing, "database (DB)")
	}
	if len(missing) > 0 {
		return NewInitializationError("Missing required dependencies", missing)
	}
	return nil
}

func (c *Container) DB() *gorm.DB                             { return c.db }
func (c *Container) Repositories() *repository.Repositories   { return c.repos }
func (c *Container) Counters() *counters.Ledger               { return c.counters }
func (c *Container) Profiles() *profiles.Resolver             { return c.profiles }
func (c *Container) Graph() *graph.Graph                      { return c.graph }
func (c *Container) Activities() *activity.Ledger             { return c.activities }
func (c *Container) Timeline() *timeline.Service              { return c.timeline }
func (c *Container) Notifications() *notifications.Dispatcher { return c.notifications }
func (c *Container) Actions() *actions.Service                { return c.actions }
func (c *Container) Auth() *auth.Service                      { return c.auth }

// OnCleanup registers a function to run at shutdown. Cleanups run in
// reverse registration order.
func (c *Container) OnCleanup(fn func(context.Context) error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup runs every registered cleanup, logging failures and carrying on.
// The first failure is returned.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](ctx); err != nil {
			logger.Log.Error("Cleanup function failed", zap.Int("index", i), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	c.cleanupFuncs = nil
	return first
}
