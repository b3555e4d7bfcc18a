// Package timeline assembles the global and following feeds. The following
// feed is fanned out on read: nothing is written per follower when an activity
// is appended.
package timeline

import (
	"context"
	"time"

	"github.com/shaygp/boxd/internal/activity"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/metrics"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	feedGlobal    = "global"
	feedFollowing = "following"

	DefaultEnrichConcurrency = 8
)

// FollowingLister returns the ids a user follows
type FollowingLister interface {
	ListFollowing(ctx context.Context, userID string) ([]string, error)
}

// Config tunes the fan-out
type Config struct {
	BatchSize         int
	PerBatchLimit     int
	EnrichConcurrency int
}

// Service builds feeds
type Service struct {
	activities *activity.Ledger
	graph      FollowingLister
	cfg        Config
}

// NewService creates the feed service. BatchSize is capped at the activity
// store's membership limit.
func NewService(activities *activity.Ledger, graph FollowingLister, cfg Config) *Service {
	if limit := activities.MembershipLimit(); cfg.BatchSize < 1 || cfg.BatchSize > limit {
		cfg.BatchSize = limit
	}
	if cfg.EnrichConcurrency < 1 {
		cfg.EnrichConcurrency = DefaultEnrichConcurrency
	}
	return &Service{activities: activities, graph: graph, cfg: cfg}
}

// GlobalFeed returns the newest activities from everyone
func (s *Service) GlobalFeed(ctx context.Context, limit int) ([]models.Activity, error) {
	return s.GlobalFeedPage(ctx, repository.Page{Limit: limit})
}

func (s *Service) GlobalFeedPage(ctx context.Context, page repository.Page) ([]models.Activity, error) {
	ctx, span := telemetry.GetBusinessEvents().TraceGetFeed(ctx, feedGlobal, telemetry.FeedEventAttrs{Limit: int64(page.Limit)})
	defer span.End()

	start := time.Now()
	records, err := s.activities.QueryGlobalPage(ctx, page)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.observe(feedGlobal, start, len(records))
	return records, nil
}

// FollowingFeed merges the activity of everyone userID follows
func (s *Service) FollowingFeed(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	return s.FollowingFeedPage(ctx, userID, repository.Page{Limit: limit})
}

func (s *Service) FollowingFeedPage(ctx context.Context, userID string, page repository.Page) ([]models.Activity, error) {
	page.Limit = activity.ClampLimit(page.Limit)

	ctx, span := telemetry.GetBusinessEvents().TraceGetFeed(ctx, feedFollowing, telemetry.FeedEventAttrs{
		UserID: userID,
		Limit:  int64(page.Limit),
	})
	defer span.End()

	start := time.Now()
	followees, err := s.graph.ListFollowing(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(followees) == 0 {
		s.observe(feedFollowing, start, 0)
		return []models.Activity{}, nil
	}

	records, stats, err := Assemble(ctx, followees, Options{
		BatchSize: s.cfg.BatchSize,
		Limit:     page.Limit,
		PerBatch:  s.cfg.PerBatchLimit,
		Before:    page.Before,
	}, s.activities.QueryByActors)

	m := metrics.Get()
	m.FeedBatchesTotal.WithLabelValues(feedFollowing).Add(float64(stats.Batches))
	if err != nil {
		m.FeedBatchFailuresTotal.WithLabelValues(feedFollowing).Inc()
		telemetry.RecordError(span, err)
		logger.Log.Error("Following feed assembly failed",
			logger.WithUserID(userID),
			zap.Int("followees", len(followees)),
			zap.Int("batches", stats.Batches),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.enrich(ctx, records); err != nil {
		return nil, err
	}

	s.observe(feedFollowing, start, len(records))
	logger.Log.Debug("Following feed assembled",
		logger.WithUserID(userID),
		zap.Int("followees", len(followees)),
		zap.Int("batches", stats.Batches),
		zap.Int("fetched", stats.Fetched),
		zap.Int("returned", len(records)),
	)
	return records, nil
}

// enrich patches surviving records concurrently; individual lookups never fail
// the feed, only cancellation does
func (s *Service) enrich(ctx context.Context, records []models.Activity) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EnrichConcurrency)
	for i := range records {
		if !records[i].Actor.Missing() {
			continue
		}
		g.Go(func() error {
			s.activities.EnrichOne(gctx, &records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Service) observe(feed string, start time.Time, n int) {
	m := metrics.Get()
	m.FeedAssemblyDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	m.FeedItemsReturned.WithLabelValues(feed).Observe(float64(n))
}
