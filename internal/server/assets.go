package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/rberr"
	"github.com/anchore/riskboard/riskboard/store"
)

func (s *Server) handleListAssets(c *gin.Context) {
	assets, err := s.store.ListAssets(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	c.JSON(http.StatusOK, assets)
}

func (s *Server) handleGetAsset(c *gin.Context) {
	a, err := s.store.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleCreateAsset(c *gin.Context) {
	var na model.NewAsset
	if err := c.ShouldBindJSON(&na); err != nil {
		abortWithBadRequest(c, "body", err)
		return
	}

	a, err := s.store.CreateAsset(c.Request.Context(), na)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleUpdateAsset(c *gin.Context) {
	var patch store.AssetPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithBadRequest(c, "body", err)
		return
	}

	a, err := s.store.UpdateAsset(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleDeleteAsset(c *gin.Context) {
	deleted, err := s.store.DeleteAsset(c.Request.Context(), c.Param("id"))
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
