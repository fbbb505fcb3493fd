package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	coupondomain "github.com/itfy/evoting/internal/coupon/domain"
)

type createCouponRequest struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	MaxDiscount   int64      `json:"max_discount"`
	EventID       string     `json:"event_id"`
	CategoryID    string     `json:"category_id"`
	UsageLimit    int64      `json:"usage_limit"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

func (s *Server) CreateCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	eventID, err := parseOptionalID(req.EventID)
	if err != nil {
		AbortWithError(c, newValidationError("event_id", "invalid_event_id", "invalid event_id"))
		return
	}
	categoryID, err := parseOptionalID(req.CategoryID)
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}

	var eventRef, categoryRef *snowflake.ID
	if eventID != 0 {
		eventRef = &eventID
	}
	if categoryID != 0 {
		categoryRef = &categoryID
	}

	resp, err := s.couponSvc.Create(c.Request.Context(), coupondomain.CreateCouponRequest{
		Code:          strings.TrimSpace(req.Code),
		DiscountType:  coupondomain.DiscountType(strings.TrimSpace(strings.ToLower(req.DiscountType))),
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		EventID:       eventRef,
		CategoryID:    categoryRef,
		UsageLimit:    req.UsageLimit,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCoupon(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		AbortWithError(c, newValidationError("code", "invalid_code", "invalid code"))
		return
	}

	resp, err := s.couponSvc.GetByCode(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
