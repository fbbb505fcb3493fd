package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bundledomain "github.com/itfy/evoting/internal/bundle/domain"
)

type createBundleDefinitionRequest struct {
	EventID      string `json:"event_id"`
	CategoryID   string `json:"category_id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	VoteQuantity int    `json:"vote_quantity"`
}

func (s *Server) CreateBundleDefinition(c *gin.Context) {
	var req createBundleDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	eventID, err := parseOptionalID(req.EventID)
	if err != nil || eventID == 0 {
		AbortWithError(c, newValidationError("event_id", "invalid_event_id", "invalid event_id"))
		return
	}
	categoryID, err := parseOptionalID(req.CategoryID)
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}

	resp, err := s.bundleSvc.CreateDefinition(c.Request.Context(), bundledomain.CreateDefinitionRequest{
		EventID:      eventID,
		CategoryID:   categoryID,
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price,
		VoteQuantity: req.VoteQuantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBundleDefinition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := s.bundleSvc.GetDefinition(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBundleDefinitions(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	categoryID, err := parseOptionalID(c.Query("category_id"))
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}

	resp, err := s.bundleSvc.ListDefinitions(c.Request.Context(), eventID, categoryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateBundleDefinition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := s.bundleSvc.Deactivate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBundleByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		AbortWithError(c, newValidationError("code", "invalid_code", "invalid code"))
		return
	}

	resp, err := s.bundleSvc.GetBundleByCode(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
