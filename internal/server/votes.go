package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	votedomain "github.com/itfy/evoting/internal/vote/domain"
)

type castVoteRequest struct {
	EventID     string `json:"event_id"`
	CandidateID string `json:"candidate_id"`
	UserID      string `json:"user_id"`
	VoterEmail  string `json:"voter_email"`
	BundleID    string `json:"bundle_id"`
}

func (s *Server) CastVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	eventID, err := parseOptionalID(req.EventID)
	if err != nil || eventID == 0 {
		AbortWithError(c, newValidationError("event_id", "invalid_event_id", "invalid event_id"))
		return
	}
	candidateID, err := parseOptionalID(req.CandidateID)
	if err != nil || candidateID == 0 {
		AbortWithError(c, newValidationError("candidate_id", "invalid_candidate_id", "invalid candidate_id"))
		return
	}
	userID, err := parseOptionalID(req.UserID)
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user_id"))
		return
	}
	bundleID, err := parseOptionalID(req.BundleID)
	if err != nil {
		AbortWithError(c, newValidationError("bundle_id", "invalid_bundle_id", "invalid bundle_id"))
		return
	}

	var bundleRef *snowflake.ID
	if bundleID != 0 {
		bundleRef = &bundleID
	}

	resp, err := s.voteSvc.Cast(c.Request.Context(), votedomain.CastVoteRequest{
		EventID:     eventID,
		CandidateID: candidateID,
		UserID:      userID,
		VoterEmail:  strings.TrimSpace(req.VoterEmail),
		BundleID:    bundleRef,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
