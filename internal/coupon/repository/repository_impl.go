package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, coupon *domain.Coupon) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO coupons (id, code, discount_type, discount_value, max_discount, event_id, category_id,
		 active, usage_limit, usage_count, total_discount, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		coupon.ID,
		coupon.Code,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MaxDiscount,
		coupon.EventID,
		coupon.CategoryID,
		coupon.Active,
		coupon.UsageLimit,
		coupon.UsageCount,
		coupon.TotalDiscount,
		coupon.ExpiresAt,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM coupons WHERE id = ?`, id,
	).Scan(&coupon).Error
	if err != nil {
		return nil, err
	}
	if coupon.ID == 0 {
		return nil, nil
	}
	return &coupon, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM coupons WHERE code = ?`, code,
	).Scan(&coupon).Error
	if err != nil {
		return nil, err
	}
	if coupon.ID == 0 {
		return nil, nil
	}
	return &coupon, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE coupons SET active = ?, updated_at = ? WHERE id = ?`,
		active, now, id,
	).Error
}

func (r *repo) RecordUse(ctx context.Context, db *gorm.DB, id snowflake.ID, discount int64, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE coupons SET usage_count = usage_count + 1, total_discount = total_discount + ?, updated_at = ?
		 WHERE id = ? AND (usage_limit = 0 OR usage_count < usage_limit)`,
		discount, now, id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
