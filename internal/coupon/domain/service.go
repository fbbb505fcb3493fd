package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateCouponRequest struct {
	Code          string
	DiscountType  DiscountType
	DiscountValue int64
	MaxDiscount   int64
	EventID       *snowflake.ID
	CategoryID    *snowflake.ID
	UsageLimit    int64
	ExpiresAt     *time.Time
}

type Service interface {
	Create(context.Context, CreateCouponRequest) (Coupon, error)
	GetByCode(ctx context.Context, code string) (Coupon, error)

	// Validate checks a coupon against its scope and expiry without
	// consuming a use. Returns the coupon for discount computation.
	Validate(ctx context.Context, code string, eventID, categoryID snowflake.ID, now time.Time) (Coupon, error)
	Deactivate(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound      = errors.New("coupon_not_found")
	ErrInvalidCoupon = errors.New("invalid_coupon")
	ErrDuplicateCode = errors.New("duplicate_coupon_code")
	ErrInactive      = errors.New("coupon_inactive")
	ErrExpired       = errors.New("coupon_expired")
	ErrScopeMismatch = errors.New("coupon_scope_mismatch")
	ErrUsageExceeded = errors.New("coupon_usage_exceeded")
)
