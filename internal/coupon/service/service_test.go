package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/clock"
	coupondomain "github.com/itfy/evoting/internal/coupon/domain"
	couponrepo "github.com/itfy/evoting/internal/coupon/repository"
	couponservice "github.com/itfy/evoting/internal/coupon/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE coupons (
			id BIGINT PRIMARY KEY,
			code TEXT NOT NULL,
			discount_type TEXT NOT NULL,
			discount_value BIGINT NOT NULL,
			max_discount BIGINT NOT NULL DEFAULT 0,
			event_id BIGINT,
			category_id BIGINT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			usage_limit BIGINT NOT NULL DEFAULT 0,
			usage_count BIGINT NOT NULL DEFAULT 0,
			total_discount BIGINT NOT NULL DEFAULT 0,
			expires_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_coupons_code ON coupons(code)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

func newCouponService(t *testing.T, db *gorm.DB, clk *clock.FakeClock) (coupondomain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(7)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	svc := couponservice.New(couponservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  couponrepo.Provide(),
	})
	return svc, node
}

func TestCreateNormalizesAndGuardsInput(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	svc, _ := newCouponService(t, db, clk)

	coupon, err := svc.Create(ctx, coupondomain.CreateCouponRequest{
		Code:          "  launch10 ",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: 10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if coupon.Code != "LAUNCH10" {
		t.Fatalf("expected normalized code, got %q", coupon.Code)
	}
	if !coupon.Active {
		t.Fatalf("expected new coupon to be active")
	}

	if _, err := svc.Create(ctx, coupondomain.CreateCouponRequest{
		Code:          "BOGUS",
		DiscountType:  "store_credit",
		DiscountValue: 10,
	}); !errors.Is(err, coupondomain.ErrInvalidCoupon) {
		t.Fatalf("expected ErrInvalidCoupon for unknown type, got %v", err)
	}
	if _, err := svc.Create(ctx, coupondomain.CreateCouponRequest{
		Code:          "OVER",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: 150,
	}); !errors.Is(err, coupondomain.ErrInvalidCoupon) {
		t.Fatalf("expected ErrInvalidCoupon for >100%%, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	svc, node := newCouponService(t, db, clk)
	now := clk.Now()

	eventID := node.Generate()
	otherEventID := node.Generate()
	categoryID := node.Generate()

	seed := func(coupon coupondomain.Coupon) coupondomain.Coupon {
		coupon.ID = node.Generate()
		coupon.CreatedAt = now
		coupon.UpdatedAt = now
		if err := couponrepo.Provide().Insert(ctx, db, &coupon); err != nil {
			t.Fatalf("seed coupon: %v", err)
		}
		return coupon
	}

	seed(coupondomain.Coupon{
		Code: "GOOD", DiscountType: coupondomain.DiscountFixed, DiscountValue: 500, Active: true,
	})
	if _, err := svc.Validate(ctx, "good", eventID, categoryID, now); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// Rows written before the type gate existed must not settle silently.
	seed(coupondomain.Coupon{
		Code: "LEGACY", DiscountType: "store_credit", DiscountValue: 500, Active: true,
	})
	if _, err := svc.Validate(ctx, "LEGACY", eventID, categoryID, now); !errors.Is(err, coupondomain.ErrInvalidCoupon) {
		t.Fatalf("expected ErrInvalidCoupon, got %v", err)
	}

	seed(coupondomain.Coupon{
		Code: "OFF", DiscountType: coupondomain.DiscountFixed, DiscountValue: 500,
	})
	if _, err := svc.Validate(ctx, "OFF", eventID, categoryID, now); !errors.Is(err, coupondomain.ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}

	past := now.Add(-time.Minute)
	seed(coupondomain.Coupon{
		Code: "STALE", DiscountType: coupondomain.DiscountFixed, DiscountValue: 500, Active: true, ExpiresAt: &past,
	})
	if _, err := svc.Validate(ctx, "STALE", eventID, categoryID, now); !errors.Is(err, coupondomain.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	seed(coupondomain.Coupon{
		Code: "SCOPED", DiscountType: coupondomain.DiscountFixed, DiscountValue: 500, Active: true, EventID: &otherEventID,
	})
	if _, err := svc.Validate(ctx, "SCOPED", eventID, categoryID, now); !errors.Is(err, coupondomain.ErrScopeMismatch) {
		t.Fatalf("expected ErrScopeMismatch, got %v", err)
	}

	seed(coupondomain.Coupon{
		Code: "SPENT", DiscountType: coupondomain.DiscountFixed, DiscountValue: 500, Active: true,
		UsageLimit: 2, UsageCount: 2,
	})
	if _, err := svc.Validate(ctx, "SPENT", eventID, categoryID, now); !errors.Is(err, coupondomain.ErrUsageExceeded) {
		t.Fatalf("expected ErrUsageExceeded, got %v", err)
	}

	if _, err := svc.Validate(ctx, "MISSING", eventID, categoryID, now); !errors.Is(err, coupondomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
