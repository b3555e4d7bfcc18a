package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaygp/boxd/internal/activity"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/util"
)

// pageFromQuery reads ?limit= and ?before= into a clamped page
func pageFromQuery(c *gin.Context) (repository.Page, error) {
	page := repository.Page{Limit: activity.ClampLimit(util.QueryInt(c, "limit", activity.DefaultLimit))}
	before, err := repository.DecodeCursor(c.Query("before"))
	if err != nil {
		return page, apperrors.ValidationError("before", "invalid cursor")
	}
	page.Before = before
	return page, nil
}

// nextCursor returns the token for the page after records, or "" when
// records did not fill the page
func nextCursor(records []models.Activity, page repository.Page) string {
	if len(records) == 0 || len(records) < page.Limit {
		return ""
	}
	last := records[len(records)-1]
	return repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
}

func respondFeed(c *gin.Context, records []models.Activity, page repository.Page) {
	if records == nil {
		records = []models.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{
		"activities":  records,
		"next_cursor": nextCursor(records, page),
	})
}
