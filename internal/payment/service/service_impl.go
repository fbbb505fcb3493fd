package service

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/itfy/evoting/internal/audit/domain"
	bundledomain "github.com/itfy/evoting/internal/bundle/domain"
	categorydomain "github.com/itfy/evoting/internal/category/domain"
	"github.com/itfy/evoting/internal/clock"
	"github.com/itfy/evoting/internal/config"
	coupondomain "github.com/itfy/evoting/internal/coupon/domain"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	"github.com/itfy/evoting/internal/fraud"
	"github.com/itfy/evoting/internal/notify"
	"github.com/itfy/evoting/internal/observability/metrics"
	"github.com/itfy/evoting/internal/payment/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	BundleRepo bundledomain.Repository
	CouponRepo coupondomain.Repository
	CouponSvc  coupondomain.Service
	EventRepo  eventdomain.Repository
	CatRepo    categorydomain.Repository
	Fraud      *fraud.Checker
	Gateway    domain.Gateway
	Notifier   *notify.Notifier
	Metrics    *metrics.Metrics
	Audit      auditdomain.Recorder
}

type Service struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	bundleRepo bundledomain.Repository
	couponRepo coupondomain.Repository
	couponSvc  coupondomain.Service
	eventRepo  eventdomain.Repository
	catRepo    categorydomain.Repository
	fraud      *fraud.Checker
	gateway    domain.Gateway
	notifier   *notify.Notifier
	metrics    *metrics.Metrics
	audit      auditdomain.Recorder

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func New(p Params) *Service {
	return &Service{
		cfg:        p.Config,
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		bundleRepo: p.BundleRepo,
		couponRepo: p.CouponRepo,
		couponSvc:  p.CouponSvc,
		eventRepo:  p.EventRepo,
		catRepo:    p.CatRepo,
		fraud:      p.Fraud,
		gateway:    p.Gateway,
		notifier:   p.Notifier,
		metrics:    p.Metrics,
		audit:      p.Audit,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

func ProvideService(s *Service) domain.Service { return s }

func (s *Service) newReference(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

func (s *Service) Initialize(ctx context.Context, req domain.InitializePaymentRequest) (domain.InitializePaymentResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.VoterEmail))
	if email == "" || !strings.Contains(email, "@") {
		return domain.InitializePaymentResponse{}, domain.ErrInvalidRequest
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, req.EventID)
	if err != nil {
		return domain.InitializePaymentResponse{}, err
	}
	if event == nil {
		return domain.InitializePaymentResponse{}, eventdomain.ErrNotFound
	}
	if event.Status != eventdomain.StatusPublished && event.Status != eventdomain.StatusActive {
		return domain.InitializePaymentResponse{}, domain.ErrEventNotPurchasable
	}

	category, err := s.catRepo.FindByID(ctx, s.db, req.CategoryID)
	if err != nil {
		return domain.InitializePaymentResponse{}, err
	}
	if category == nil || category.EventID != req.EventID {
		return domain.InitializePaymentResponse{}, domain.ErrInvalidRequest
	}

	def, err := s.bundleRepo.FindDefinitionByID(ctx, s.db, req.BundleDefinitionID)
	if err != nil {
		return domain.InitializePaymentResponse{}, err
	}
	if def == nil || !def.Active || def.EventID != req.EventID || def.CategoryID != req.CategoryID {
		return domain.InitializePaymentResponse{}, domain.ErrInvalidBundle
	}

	now := s.clock.Now().UTC()

	settled, err := s.repo.FindSettled(ctx, s.db, email, req.EventID, req.CategoryID)
	if err != nil {
		return domain.InitializePaymentResponse{}, err
	}
	if settled != nil {
		return domain.InitializePaymentResponse{}, domain.ErrAlreadyPurchased
	}

	if pending, err := s.repo.FindOpenPending(ctx, s.db, email, req.EventID, req.CategoryID, now); err != nil {
		return domain.InitializePaymentResponse{}, err
	} else if pending != nil {
		return domain.InitializePaymentResponse{
			Payment:          *pending,
			AuthorizationURL: pending.AuthorizationURL,
			AccessCode:       pending.AccessCode,
		}, nil
	}

	assessment := s.fraud.CheckPayment(ctx, req.IPAddress, email)
	if assessment.Reject {
		s.metrics.RecordFraudFlag(assessment.Flag)
		s.log.Warn("payment rejected by fraud check",
			zap.String("flag", assessment.Flag),
			zap.String("reason", assessment.Reason),
		)
		return domain.InitializePaymentResponse{}, domain.ErrFraudRejected
	}
	if assessment.Flag != fraud.FlagNone {
		s.metrics.RecordFraudFlag(assessment.Flag)
	}

	originalAmount := def.Price
	var discountAmount int64
	var couponID *snowflake.ID
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		coupon, err := s.couponSvc.Validate(ctx, code, req.EventID, req.CategoryID, now)
		if err != nil {
			return domain.InitializePaymentResponse{}, err
		}
		discountAmount = coupondomain.ComputeDiscount(coupon, originalAmount)
		couponID = &coupon.ID
	}
	finalAmount := originalAmount - discountAmount

	var userID *snowflake.ID
	if req.UserID != 0 {
		userID = &req.UserID
	}

	bundleExpiry := event.EndTime
	payment := domain.Payment{
		ID:                 s.genID.Generate(),
		Reference:          s.newReference(now),
		VoterEmail:         email,
		UserID:             userID,
		EventID:            req.EventID,
		CategoryID:         req.CategoryID,
		BundleDefinitionID: def.ID,
		OriginalAmount:     originalAmount,
		DiscountAmount:     discountAmount,
		FinalAmount:        finalAmount,
		CouponID:           couponID,
		Status:             domain.StatusPending,
		FraudFlag:          assessment.Flag,
		IPAddress:          req.IPAddress,
		ExpiresAt:          now.Add(s.cfg.Voting.PendingPaymentTTL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	bundle := bundledomain.VoteBundle{
		ID:           s.genID.Generate(),
		DefinitionID: def.ID,
		EventID:      def.EventID,
		CategoryID:   def.CategoryID,
		Code:         uuid.NewString(),
		Price:        finalAmount,
		VoteQuantity: def.VoteQuantity,
		PaymentID:    &payment.ID,
		ExpiresAt:    &bundleExpiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	payment.BundleID = bundle.ID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return err
		}
		return s.bundleRepo.InsertBundle(ctx, tx, &bundle)
	})
	if err != nil {
		return domain.InitializePaymentResponse{}, err
	}

	// The pending row is durable before the gateway sees the reference,
	// so a crash here leaves a record the webhook can still settle.
	init, err := s.gateway.Initialize(ctx, domain.GatewayInitRequest{
		Email:     email,
		Amount:    finalAmount,
		Reference: payment.Reference,
		Currency:  "NGN",
		Metadata: map[string]interface{}{
			"event_id":    req.EventID.String(),
			"category_id": req.CategoryID.String(),
			"bundle_id":   bundle.ID.String(),
		},
	})
	if err != nil {
		s.log.Warn("gateway initialize failed",
			zap.String("reference", payment.Reference),
			zap.Error(err),
		)
		return domain.InitializePaymentResponse{}, domain.ErrGatewayUnavailable
	}

	if err := s.repo.SetGatewayHandoff(ctx, s.db, payment.ID, init.AuthorizationURL, init.AccessCode, s.clock.Now().UTC()); err != nil {
		return domain.InitializePaymentResponse{}, err
	}
	payment.AuthorizationURL = init.AuthorizationURL
	payment.AccessCode = init.AccessCode

	s.audit.Record(ctx, req.UserID, "payment.initialized", "payment", payment.Reference, map[string]interface{}{
		"voter_email": email,
		"amount":      finalAmount,
		"event_id":    req.EventID.String(),
	})

	return domain.InitializePaymentResponse{
		Payment:          payment,
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
	}, nil
}

func (s *Service) Verify(ctx context.Context, reference string) (domain.Payment, error) {
	payment, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	if payment.Status != domain.StatusPending {
		return *payment, nil
	}

	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return domain.Payment{}, domain.ErrGatewayUnavailable
	}

	switch verification.Status {
	case domain.GatewayStatusSuccess:
		if _, err := s.ApplySuccess(ctx, reference, verification, false); err != nil {
			return domain.Payment{}, err
		}
	case domain.GatewayStatusFailed, domain.GatewayStatusAbandoned:
		if err := s.applyFailure(ctx, reference, verification.Message); err != nil {
			return domain.Payment{}, err
		}
	}

	payment, err = s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

// ApplySuccess settles a pending payment exactly once. Both Verify and
// the webhook path funnel through here; whichever lands second only
// updates the webhook_verified flag.
func (s *Service) ApplySuccess(ctx context.Context, reference string, v domain.GatewayVerification, viaWebhook bool) (bool, error) {
	now := s.clock.Now().UTC()
	paidAt := now
	if v.PaidAt != nil {
		paidAt = v.PaidAt.UTC()
	}

	var settled bool
	var payment *domain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.MarkSuccess(ctx, tx, reference, v.TransactionID, v.Channel, paidAt, viaWebhook, now)
		if err != nil {
			return err
		}
		if !ok {
			if viaWebhook {
				return s.repo.SetWebhookVerified(ctx, tx, reference, now)
			}
			return nil
		}
		settled = true

		payment, err = s.repo.FindByReference(ctx, tx, reference)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}

		if payment.CouponID != nil {
			used, err := s.couponRepo.RecordUse(ctx, tx, *payment.CouponID, payment.DiscountAmount, now)
			if err != nil {
				return err
			}
			if !used {
				s.log.Warn("coupon usage limit crossed at settlement",
					zap.String("reference", reference),
				)
			}
		}

		if _, err := s.bundleRepo.Credit(ctx, tx, payment.BundleID, now); err != nil {
			return err
		}
		return s.eventRepo.IncrementRevenue(ctx, tx, payment.EventID, payment.FinalAmount)
	})
	if err != nil {
		return false, err
	}
	if !settled {
		return false, nil
	}

	s.metrics.RecordPayment(string(domain.StatusSuccess))
	event, err := s.eventRepo.FindByID(ctx, s.db, payment.EventID)
	if err == nil && event != nil {
		votes := 0
		if bundle, berr := s.bundleRepo.FindBundleByID(ctx, s.db, payment.BundleID); berr == nil && bundle != nil {
			votes = bundle.VoteQuantity
		}
		s.notifier.PaymentReceipt(payment.VoterEmail, payment.Reference, event.Name,
			payment.FinalAmount, payment.DiscountAmount, votes)
	}
	s.audit.Record(ctx, 0, "payment.settled", "payment", reference, map[string]interface{}{
		"voter_email": payment.VoterEmail,
		"amount":      payment.FinalAmount,
		"via_webhook": viaWebhook,
	})
	s.log.Info("payment settled",
		zap.String("reference", reference),
		zap.Bool("via_webhook", viaWebhook),
	)
	return true, nil
}

func (s *Service) applyFailure(ctx context.Context, reference, reason string) error {
	now := s.clock.Now().UTC()
	ok, err := s.repo.MarkFailed(ctx, s.db, reference, reason, now)
	if err != nil {
		return err
	}
	if ok {
		s.metrics.RecordPayment(string(domain.StatusFailed))
		s.log.Info("payment failed",
			zap.String("reference", reference),
			zap.String("reason", reason),
		)
	}
	return nil
}

// ApplyFailure is the webhook-facing wrapper around the failure path.
func (s *Service) ApplyFailure(ctx context.Context, reference, reason string) error {
	return s.applyFailure(ctx, reference, reason)
}

func (s *Service) Refund(ctx context.Context, reference, reason string) (domain.Payment, error) {
	payment, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	if payment.Status != domain.StatusSuccess {
		return domain.Payment{}, domain.ErrNotRefundable
	}

	if err := s.gateway.Refund(ctx, payment.GatewayTxnID, payment.FinalAmount); err != nil {
		return domain.Payment{}, domain.ErrGatewayUnavailable
	}

	now := s.clock.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.MarkRefunded(ctx, tx, reference, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotRefundable
		}
		if err := s.bundleRepo.Revoke(ctx, tx, payment.BundleID, now); err != nil {
			return err
		}
		return s.eventRepo.IncrementRevenue(ctx, tx, payment.EventID, -payment.FinalAmount)
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.metrics.RecordPayment(string(domain.StatusRefunded))
	s.audit.Record(ctx, 0, "payment.refunded", "payment", reference, map[string]interface{}{
		"voter_email": payment.VoterEmail,
		"amount":      payment.FinalAmount,
		"reason":      reason,
	})

	refunded, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.Payment{}, err
	}
	return *refunded, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (domain.Payment, error) {
	payment, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID snowflake.ID) ([]domain.Payment, error) {
	items, err := s.repo.ListByEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}
	return payments, nil
}
