package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/util"
)

// GetGlobalFeed returns everyone's newest activity
// GET /api/v1/feed/global
func (h *Handlers) GetGlobalFeed(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	records, err := h.timeline.GlobalFeedPage(c.Request.Context(), page)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	respondFeed(c, records, page)
}

// GetFollowingFeed returns the merged activity of everyone the caller follows
// GET /api/v1/feed/following
func (h *Handlers) GetFollowingFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	page, err := pageFromQuery(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	records, err := h.timeline.FollowingFeedPage(c.Request.Context(), userID, page)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	respondFeed(c, records, page)
}
