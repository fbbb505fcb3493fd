package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/clock"
	"github.com/itfy/evoting/internal/coupon/domain"
	"github.com/itfy/evoting/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("coupon.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCouponRequest) (domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Coupon{}, domain.ErrInvalidCoupon
	}
	switch req.DiscountType {
	case domain.DiscountPercentage:
		if req.DiscountValue < 1 || req.DiscountValue > 100 {
			return domain.Coupon{}, domain.ErrInvalidCoupon
		}
	case domain.DiscountFixed:
		if req.DiscountValue < 1 {
			return domain.Coupon{}, domain.ErrInvalidCoupon
		}
	default:
		return domain.Coupon{}, domain.ErrInvalidCoupon
	}
	if req.MaxDiscount < 0 || req.UsageLimit < 0 {
		return domain.Coupon{}, domain.ErrInvalidCoupon
	}

	now := s.clock.Now().UTC()
	coupon := domain.Coupon{
		ID:            s.genID.Generate(),
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		EventID:       req.EventID,
		CategoryID:    req.CategoryID,
		Active:        true,
		UsageLimit:    req.UsageLimit,
		ExpiresAt:     req.ExpiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &coupon); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Coupon{}, domain.ErrDuplicateCode
		}
		return domain.Coupon{}, err
	}

	return coupon, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Coupon, error) {
	coupon, err := s.repo.FindByCode(ctx, s.db, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return domain.Coupon{}, err
	}
	if coupon == nil {
		return domain.Coupon{}, domain.ErrNotFound
	}
	return *coupon, nil
}

func (s *Service) Validate(ctx context.Context, code string, eventID, categoryID snowflake.ID, now time.Time) (domain.Coupon, error) {
	coupon, err := s.GetByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, err
	}
	if coupon.DiscountType != domain.DiscountPercentage && coupon.DiscountType != domain.DiscountFixed {
		return domain.Coupon{}, domain.ErrInvalidCoupon
	}
	if !coupon.Active {
		return domain.Coupon{}, domain.ErrInactive
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return domain.Coupon{}, domain.ErrExpired
	}
	if coupon.EventID != nil && *coupon.EventID != eventID {
		return domain.Coupon{}, domain.ErrScopeMismatch
	}
	if coupon.CategoryID != nil && *coupon.CategoryID != categoryID {
		return domain.Coupon{}, domain.ErrScopeMismatch
	}
	if coupon.UsageLimit > 0 && coupon.UsageCount >= coupon.UsageLimit {
		return domain.Coupon{}, domain.ErrUsageExceeded
	}
	return coupon, nil
}

func (s *Service) Deactivate(ctx context.Context, id snowflake.ID) error {
	coupon, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return domain.ErrNotFound
	}
	return s.repo.SetActive(ctx, s.db, id, false, s.clock.Now().UTC())
}
