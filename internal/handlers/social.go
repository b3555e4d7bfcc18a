package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/util"
)

// FollowUser follows another user
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	res, err := h.actions.Follow(c.Request.Context(), userID, c.Param("id"))
	util.RespondAction(c, http.StatusCreated, res, err)
}

// UnfollowUser removes a follow
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	res, err := h.actions.Unfollow(c.Request.Context(), userID, c.Param("id"))
	util.RespondAction(c, http.StatusOK, res, err)
}

// GetFollowers lists the identities following a user
// GET /api/v1/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	followers, err := h.graph.ListFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if followers == nil {
		followers = []models.ActorIdentity{}
	}
	c.JSON(http.StatusOK, gin.H{"followers": followers, "count": len(followers)})
}

// GetFollowing lists the ids a user follows
// GET /api/v1/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	ids, err := h.graph.ListFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"following": ids, "count": len(ids)})
}

// GetFollowStatus reports whether the caller follows a user, and the reverse
// GET /api/v1/users/:id/follow-status
func (h *Handlers) GetFollowStatus(c *gin.Context) {
	viewer := util.OptionalUserID(c)
	target := c.Param("id")
	if viewer == "" || viewer == target {
		c.JSON(http.StatusOK, gin.H{"is_following": false, "follows_you": false})
		return
	}

	ctx := c.Request.Context()
	following, err := h.graph.IsFollowing(ctx, viewer, target)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	followsYou, err := h.graph.IsFollowing(ctx, target, viewer)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_following": following, "follows_you": followsYou})
}

// GetUserStats returns a user's follower and following counts
// GET /api/v1/users/:id/stats
func (h *Handlers) GetUserStats(c *gin.Context) {
	ctx := c.Request.Context()
	identity, err := h.profiles.Resolve(ctx, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	stats, err := h.counters.UserStats(ctx, identity.ID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": identity, "stats": stats})
}

// GetUserActivity pages through one user's activity
// GET /api/v1/users/:id/activity
func (h *Handlers) GetUserActivity(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	records, err := h.activities.QueryByActorPage(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	respondFeed(c, records, page)
}
