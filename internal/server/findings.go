package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/store"
	"github.com/anchore/riskboard/riskboard/ticket"
)

type bulkUpdateRequest struct {
	IDs   []string           `json:"ids"`
	Patch store.FindingPatch `json:"patch"`
}

type bulkUpdateResponse struct {
	Updated int `json:"updated"`
}

type importResponse struct {
	Rows    int `json:"rows"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func (s *Server) handleListFindings(c *gin.Context) {
	var filter store.FindingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithBadRequest(c, "query", err)
		return
	}

	page, err := s.store.ListFindings(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleGetFinding(c *gin.Context) {
	f, err := s.store.GetFinding(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleCreateFinding(c *gin.Context) {
	var nf model.NewFinding
	if err := c.ShouldBindJSON(&nf); err != nil {
		abortWithBadRequest(c, "body", err)
		return
	}

	f, err := s.store.CreateFinding(c.Request.Context(), nf)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) handleUpdateFinding(c *gin.Context) {
	var patch store.FindingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithBadRequest(c, "body", err)
		return
	}

	f, err := s.store.UpdateFinding(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleBulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, "body", err)
		return
	}

	count, err := s.store.BulkUpdateFindings(c.Request.Context(), req.IDs, req.Patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulkUpdateResponse{Updated: count})
}

// handleImport accepts either a CSV document or a JSON array of findings.
func (s *Server) handleImport(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		res importResponse
		err error
	)
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var nfs []model.NewFinding
		if err := c.ShouldBindJSON(&nfs); err != nil {
			abortWithBadRequest(c, "body", err)
			return
		}
		r, importErr := s.importer.ImportRecords(ctx, nfs)
		res, err = importResponse{Rows: r.Rows, Created: r.Created, Skipped: r.Skipped()}, importErr
	} else {
		r, importErr := s.importer.ImportCSV(ctx, c.Request.Body)
		res, err = importResponse{Rows: r.Rows, Created: r.Created, Skipped: r.Skipped()}, importErr
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDeleteFinding(c *gin.Context) {
	deleted, err := s.store.DeleteFinding(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !deleted {
		abortWithError(c, rberr.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleOpenTicket(c *gin.Context) {
	f, err := ticket.Open(c.Request.Context(), s.store, s.tickets, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
