// Package handlers exposes the social core over HTTP for the boxd UI.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/actions"
	"github.com/shaygp/boxd/internal/activity"
	"github.com/shaygp/boxd/internal/container"
	"github.com/shaygp/boxd/internal/counters"
	"github.com/shaygp/boxd/internal/graph"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/notifications"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/timeline"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	actions       *actions.Service
	graph         *graph.Graph
	counters      *counters.Ledger
	activities    *activity.Ledger
	timeline      *timeline.Service
	notifications *notifications.Dispatcher
	profiles      *profiles.Resolver
}

// NewHandlers builds handlers over a wired container
func NewHandlers(c *container.Container) *Handlers {
	return &Handlers{
		actions:       c.Actions(),
		graph:         c.Graph(),
		counters:      c.Counters(),
		activities:    c.Activities(),
		timeline:      c.Timeline(),
		notifications: c.Notifications(),
		profiles:      c.Profiles(),
	}
}

// reactable maps URL collections to the targets likes and comments accept
var reactable = []struct {
	path        string
	kind        models.TargetKind
	commentable bool
}{
	{"logs", models.TargetRaceLog, true},
	{"lists", models.TargetList, true},
	{"comments", models.TargetComment, false},
}

// RegisterRoutes mounts the API on api. requireAuth rejects anonymous
// callers; optionalAuth identifies the caller when it can.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	users := api.Group("/users")
	{
		users.POST("/:id/follow", requireAuth, h.FollowUser)
		users.DELETE("/:id/follow", requireAuth, h.UnfollowUser)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)
		users.GET("/:id/follow-status", optionalAuth, h.GetFollowStatus)
		users.GET("/:id/stats", h.GetUserStats)
		users.GET("/:id/activity", h.GetUserActivity)
	}

	feed := api.Group("/feed")
	{
		feed.GET("/global", optionalAuth, h.GetGlobalFeed)
		feed.GET("/following", requireAuth, h.GetFollowingFeed)
	}

	api.POST("/logs", requireAuth, h.CreateRaceLog)
	api.POST("/lists", requireAuth, h.CreateList)
	api.DELETE("/comments/:id", requireAuth, h.DeleteComment)

	for _, r := range reactable {
		group := api.Group("/" + r.path)
		group.POST("/:id/like", requireAuth, h.LikeTarget(r.kind))
		group.DELETE("/:id/like", requireAuth, h.UnlikeTarget(r.kind))
		group.GET("/:id/likes", h.GetLikes(r.kind))
		if r.commentable {
			group.POST("/:id/comments", requireAuth, h.PostComment(r.kind))
			group.GET("/:id/comments", h.GetComments(r.kind))
		}
	}

	notifs := api.Group("/notifications", requireAuth)
	{
		notifs.GET("", h.GetNotifications)
		notifs.GET("/unread-count", h.GetUnreadCount)
		notifs.POST("/read-all", h.MarkAllNotificationsRead)
		notifs.POST("/:id/read", h.MarkNotificationRead)
	}
}
