package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	Code          string        `json:"code" gorm:"type:text;not null"`
	DiscountType  DiscountType  `json:"discount_type" gorm:"type:text;not null"`
	DiscountValue int64         `json:"discount_value" gorm:"not null"`
	MaxDiscount   int64         `json:"max_discount" gorm:"not null"`
	EventID       *snowflake.ID `json:"event_id"`
	CategoryID    *snowflake.ID `json:"category_id"`
	Active        bool          `json:"active" gorm:"not null"`
	UsageLimit    int64         `json:"usage_limit" gorm:"not null"`
	UsageCount    int64         `json:"usage_count" gorm:"not null"`
	TotalDiscount int64         `json:"total_discount" gorm:"not null"`
	ExpiresAt     *time.Time    `json:"expires_at"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"not null"`
}

func (Coupon) TableName() string { return "coupons" }
