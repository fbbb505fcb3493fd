package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/itfy/evoting/internal/payment/domain"
)

type initializePaymentRequest struct {
	VoterEmail         string `json:"voter_email"`
	UserID             string `json:"user_id"`
	EventID            string `json:"event_id"`
	CategoryID         string `json:"category_id"`
	BundleDefinitionID string `json:"bundle_definition_id"`
	CouponCode         string `json:"coupon_code"`
}

func (s *Server) InitializePayment(c *gin.Context) {
	var req initializePaymentRequest
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
	definitionID, err := parseOptionalID(req.BundleDefinitionID)
	if err != nil || definitionID == 0 {
		AbortWithError(c, newValidationError("bundle_definition_id", "invalid_bundle_definition_id", "invalid bundle_definition_id"))
		return
	}
	userID, err := parseOptionalID(req.UserID)
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user_id"))
		return
	}

	resp, err := s.paymentSvc.Initialize(c.Request.Context(), paymentdomain.InitializePaymentRequest{
		VoterEmail:         strings.TrimSpace(req.VoterEmail),
		UserID:             userID,
		EventID:            eventID,
		CategoryID:         categoryID,
		BundleDefinitionID: definitionID,
		CouponCode:         strings.TrimSpace(req.CouponCode),
		IPAddress:          c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		AbortWithError(c, newValidationError("reference", "invalid_reference", "invalid reference"))
		return
	}

	resp, err := s.paymentSvc.Verify(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		AbortWithError(c, newValidationError("reference", "invalid_reference", "invalid reference"))
		return
	}

	resp, err := s.paymentSvc.GetByReference(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type refundPaymentRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RefundPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		AbortWithError(c, newValidationError("reference", "invalid_reference", "invalid reference"))
		return
	}

	var req refundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Refund(c.Request.Context(), reference, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEventPayments(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := s.paymentSvc.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
