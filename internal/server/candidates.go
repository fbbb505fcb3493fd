package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	candidatedomain "github.com/itfy/evoting/internal/candidate/domain"
	"github.com/itfy/evoting/pkg/db/pagination"
)

type registerCandidateRequest struct {
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	ImageURL   string `json:"image_url"`
}

func (s *Server) RegisterCandidate(c *gin.Context) {
	var req registerCandidateRequest
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

	resp, err := s.candidateSvc.Register(c.Request.Context(), candidatedomain.RegisterCandidateRequest{
		EventID:    eventID,
		CategoryID: categoryID,
		Name:       strings.TrimSpace(req.Name),
		Bio:        strings.TrimSpace(req.Bio),
		ImageURL:   strings.TrimSpace(req.ImageURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCandidates(c *gin.Context) {
	var query struct {
		pagination.Pagination
		EventID    string `form:"event_id"`
		CategoryID string `form:"category_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	eventID, err := parseOptionalID(query.EventID)
	if err != nil {
		AbortWithError(c, newValidationError("event_id", "invalid_event_id", "invalid event_id"))
		return
	}
	categoryID, err := parseOptionalID(query.CategoryID)
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}

	resp, err := s.candidateSvc.List(c.Request.Context(), candidatedomain.ListCandidateRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		EventID:    eventID,
		CategoryID: categoryID,
		Status:     candidatedomain.Status(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCandidate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := s.candidateSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveCandidate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := s.candidateSvc.Approve(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(c.Request.Context(), 0, "candidate.approve", "candidate", resp.ID.String(), map[string]interface{}{
			"event_id": resp.EventID.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rejectCandidateRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectCandidate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req rejectCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.candidateSvc.Reject(c.Request.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(c.Request.Context(), 0, "candidate.reject", "candidate", resp.ID.String(), map[string]interface{}{
			"event_id": resp.EventID.String(),
			"reason":   strings.TrimSpace(req.Reason),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCandidateByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		AbortWithError(c, newValidationError("code", "invalid_code", "invalid code"))
		return
	}

	resp, err := s.candidateSvc.GetByVotingCode(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
