// Package graph maintains follow edges and the follower/following counters
// that mirror them.
package graph

import (
	"context"

	"github.com/shaygp/boxd/internal/counters"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/pipeline"
	"github.com/shaygp/boxd/internal/repository"
	"go.uber.org/zap"
)

const (
	ActionFollow   = "follow"
	ActionUnfollow = "unfollow"
)

// Graph is the follow graph service
type Graph struct {
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
	ledger   *counters.Ledger
}

func New(follows repository.FollowRepository, profiles repository.ProfileRepository, ledger *counters.Ledger) *Graph {
	return &Graph{follows: follows, profiles: profiles, ledger: ledger}
}

// Follow creates the edge followerID -> followingID and bumps both counters.
// If a counter update fails after the edge is written, the edge is returned
// together with a *pipeline.StepError.
func (g *Graph) Follow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	if followerID == "" {
		return nil, apperrors.Unauthenticated("")
	}
	if followerID == followingID {
		return nil, apperrors.SelfFollow()
	}
	if _, err := g.profiles.GetProfile(ctx, followingID); err != nil {
		return nil, err
	}

	exists, err := g.follows.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.AlreadyFollowing()
	}

	edge := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	// a concurrent double-follow loses on the unique index as ALREADY_FOLLOWING
	if err := g.follows.CreateFollow(ctx, edge); err != nil {
		return nil, err
	}

	if err := g.applyDeltas(ctx, followerID, followingID, 1); err != nil {
		return edge, pipeline.Degrade(ActionFollow, pipeline.RelationWritten, pipeline.StepCounters, err,
			logger.WithActorID(followerID), logger.WithTargetID(followingID))
	}

	logger.Log.Debug("Follow edge created",
		logger.WithActorID(followerID),
		logger.WithTargetID(followingID),
	)
	return edge, nil
}

// Unfollow removes the edge and reverses the counter deltas
func (g *Graph) Unfollow(ctx context.Context, followerID, followingID string) error {
	if followerID == "" {
		return apperrors.Unauthenticated("")
	}

	removed, err := g.follows.DeleteFollow(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NotFollowing()
	}

	if err := g.applyDeltas(ctx, followerID, followingID, -1); err != nil {
		return pipeline.Degrade(ActionUnfollow, pipeline.RelationWritten, pipeline.StepCounters, err,
			logger.WithActorID(followerID), logger.WithTargetID(followingID))
	}
	return nil
}

// applyDeltas moves followingCount(follower) and followersCount(followee).
// The second adjustment is skipped if the first fails.
func (g *Graph) applyDeltas(ctx context.Context, followerID, followingID string, delta int64) error {
	if err := g.ledger.Adjust(ctx, counters.User(followerID), counters.FollowingCount, delta); err != nil {
		return err
	}
	return g.ledger.Adjust(ctx, counters.User(followingID), counters.FollowersCount, delta)
}

func (g *Graph) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return g.follows.IsFollowing(ctx, followerID, followingID)
}

// ListFollowers returns the identities of userID's followers, newest first.
// Followers whose profile has disappeared are skipped.
func (g *Graph) ListFollowers(ctx context.Context, userID string) ([]models.ActorIdentity, error) {
	ids, err := g.follows.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := g.profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]models.ActorIdentity, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			logger.Log.Debug("Follower without profile", logger.WithUserID(userID), zap.String("follower_id", id))
			continue
		}
		out = append(out, u.Identity())
	}
	return out, nil
}

// ListFollowing returns the ids userID follows
func (g *Graph) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	return g.follows.FollowingIDs(ctx, userID)
}

// CountFollowers counts live edges, the ground truth Recount uses
func (g *Graph) CountFollowers(ctx context.Context, userID string) (int64, error) {
	return g.follows.CountFollowers(ctx, userID)
}

func (g *Graph) CountFollowing(ctx context.Context, userID string) (int64, error) {
	return g.follows.CountFollowing(ctx, userID)
}
