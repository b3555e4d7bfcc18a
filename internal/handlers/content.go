package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/actions"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/util"
)

// CreateRaceLog logs a watched race
// POST /api/v1/logs
func (h *Handlers) CreateRaceLog(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req actions.LogInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}
	res, err := h.actions.LogRace(c.Request.Context(), userID, req)
	util.RespondAction(c, http.StatusCreated, res, err)
}

// CreateList publishes a list
// POST /api/v1/lists
func (h *Handlers) CreateList(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req actions.ListInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}
	res, err := h.actions.CreateList(c.Request.Context(), userID, req)
	util.RespondAction(c, http.StatusCreated, res, err)
}

// LikeTarget likes a race log, list or comment
// POST /api/v1/{logs,lists,comments}/:id/like
func (h *Handlers) LikeTarget(kind models.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := util.GetUserIDFromContext(c)
		if !ok {
			return
		}
		res, err := h.actions.Like(c.Request.Context(), userID, actions.Target{ID: c.Param("id"), Kind: kind})
		util.RespondAction(c, http.StatusCreated, res, err)
	}
}

// UnlikeTarget removes the caller's like
// DELETE /api/v1/{logs,lists,comments}/:id/like
func (h *Handlers) UnlikeTarget(kind models.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := util.GetUserIDFromContext(c)
		if !ok {
			return
		}
		res, err := h.actions.Unlike(c.Request.Context(), userID, actions.Target{ID: c.Param("id"), Kind: kind})
		util.RespondAction(c, http.StatusOK, res, err)
	}
}

// GetLikes returns the liked-by set
// GET /api/v1/{logs,lists,comments}/:id/likes
func (h *Handlers) GetLikes(kind models.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := h.actions.LikedBy(c.Request.Context(), actions.Target{ID: c.Param("id"), Kind: kind})
		if err != nil {
			util.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked_by": ids, "count": len(ids)})
	}
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

// PostComment comments on a race log or list
// POST /api/v1/{logs,lists}/:id/comments
func (h *Handlers) PostComment(kind models.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := util.GetUserIDFromContext(c)
		if !ok {
			return
		}
		var req commentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBadRequest(c, "comment body is required")
			return
		}
		res, err := h.actions.Comment(c.Request.Context(), userID, actions.Target{ID: c.Param("id"), Kind: kind}, req.Body)
		util.RespondAction(c, http.StatusCreated, res, err)
	}
}

// GetComments lists comments oldest first
// GET /api/v1/{logs,lists}/:id/comments
func (h *Handlers) GetComments(kind models.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := util.QueryInt(c, "limit", actions.DefaultCommentLimit)
		comments, err := h.actions.Comments(c.Request.Context(), actions.Target{ID: c.Param("id"), Kind: kind}, limit)
		if err != nil {
			util.RespondWithError(c, err)
			return
		}
		if comments == nil {
			comments = []models.Comment{}
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
	}
}

// DeleteComment deletes one of the caller's comments
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	res, err := h.actions.DeleteComment(c.Request.Context(), userID, c.Param("id"))
	util.RespondAction(c, http.StatusOK, res, err)
}
