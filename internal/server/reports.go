package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

// handleMetrics returns the flat counter map; ?view=full returns the structured summary instead.
func (s *Server) handleMetrics(c *gin.Context) {
	summary, err := s.metrics.Summarize(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if c.Query("view") == "full" {
		c.JSON(http.StatusOK, summary)
		return
	}
	c.JSON(http.StatusOK, summary.Flatten())
}

func (s *Server) handleListActivity(c *gin.Context) {
	var filter store.ActivityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithBadRequest(c, "query", err)
		return
	}
	if filter.Limit < 0 {
		abortWithBadRequest(c, "limit", errNegativeLimit)
		return
	}

	entries, err := s.store.ListActivity(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if entries == nil {
		entries = []model.ActivityLogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
