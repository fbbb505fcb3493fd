package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditservice "github.com/itfy/evoting/internal/audit/service"
	bundledomain "github.com/itfy/evoting/internal/bundle/domain"
	bundlerepo "github.com/itfy/evoting/internal/bundle/repository"
	categorydomain "github.com/itfy/evoting/internal/category/domain"
	categoryrepo "github.com/itfy/evoting/internal/category/repository"
	"github.com/itfy/evoting/internal/clock"
	"github.com/itfy/evoting/internal/config"
	coupondomain "github.com/itfy/evoting/internal/coupon/domain"
	couponrepo "github.com/itfy/evoting/internal/coupon/repository"
	couponservice "github.com/itfy/evoting/internal/coupon/service"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	eventrepo "github.com/itfy/evoting/internal/event/repository"
	"github.com/itfy/evoting/internal/fraud"
	"github.com/itfy/evoting/internal/notify"
	"github.com/itfy/evoting/internal/observability/metrics"
	paymentdomain "github.com/itfy/evoting/internal/payment/domain"
	paymentrepo "github.com/itfy/evoting/internal/payment/repository"
	paymentservice "github.com/itfy/evoting/internal/payment/service"
	paymentwebhook "github.com/itfy/evoting/internal/payment/webhook"
	"github.com/itfy/evoting/internal/providers/email"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeGateway struct {
	verification paymentdomain.GatewayVerification
	verifyErr    error
	initErr      error
	refundErr    error
	refunds      int
}

func (g *fakeGateway) Initialize(ctx context.Context, req paymentdomain.GatewayInitRequest) (paymentdomain.GatewayInitResponse, error) {
	if g.initErr != nil {
		return paymentdomain.GatewayInitResponse{}, g.initErr
	}
	return paymentdomain.GatewayInitResponse{
		AuthorizationURL: "https://checkout.test/" + req.Reference,
		AccessCode:       "access_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (paymentdomain.GatewayVerification, error) {
	return g.verification, g.verifyErr
}

func (g *fakeGateway) Refund(ctx context.Context, transactionID string, amount int64) error {
	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunds++
	return nil
}

func (g *fakeGateway) VerifySignature(payload []byte, signature string) error {
	if signature != "valid" {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE events (
			id BIGINT PRIMARY KEY,
			owner_id BIGINT NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			slug TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			allow_multiple_votes BOOLEAN NOT NULL DEFAULT FALSE,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			current_vote_count BIGINT NOT NULL DEFAULT 0,
			total_revenue BIGINT NOT NULL DEFAULT 0,
			published_at TIMESTAMP,
			activated_at TIMESTAMP,
			closed_at TIMESTAMP,
			archived_at TIMESTAMP,
			cancelled_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE categories (
			id BIGINT PRIMARY KEY,
			event_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE bundle_definitions (
			id BIGINT PRIMARY KEY,
			event_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			price BIGINT NOT NULL,
			vote_quantity INTEGER NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE vote_bundles (
			id BIGINT PRIMARY KEY,
			definition_id BIGINT NOT NULL,
			event_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			code TEXT NOT NULL,
			price BIGINT NOT NULL,
			vote_quantity INTEGER NOT NULL,
			votes_remaining INTEGER NOT NULL DEFAULT 0,
			payment_id BIGINT,
			expires_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
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
		`CREATE TABLE payments (
			id BIGINT PRIMARY KEY,
			reference TEXT NOT NULL,
			voter_email TEXT NOT NULL,
			user_id BIGINT,
			event_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			bundle_definition_id BIGINT NOT NULL,
			bundle_id BIGINT NOT NULL,
			original_amount BIGINT NOT NULL,
			discount_amount BIGINT NOT NULL DEFAULT 0,
			final_amount BIGINT NOT NULL,
			coupon_id BIGINT,
			status TEXT NOT NULL,
			gateway_txn_id TEXT NOT NULL DEFAULT '',
			channel TEXT NOT NULL DEFAULT '',
			paid_at TIMESTAMP,
			webhook_verified BOOLEAN NOT NULL DEFAULT FALSE,
			fraud_flag TEXT NOT NULL DEFAULT '',
			authorization_url TEXT NOT NULL DEFAULT '',
			access_code TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			failure_reason TEXT NOT NULL DEFAULT '',
			refund_reason TEXT NOT NULL DEFAULT '',
			refunded_at TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_payments_reference ON payments(reference)`,
		`CREATE TABLE payment_events (
			id BIGINT PRIMARY KEY,
			provider TEXT NOT NULL,
			provider_event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			reference TEXT NOT NULL,
			payload TEXT NOT NULL,
			received_at TIMESTAMP NOT NULL,
			processed_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX idx_payment_events_provider_event ON payment_events(provider, provider_event_id)`,
		`CREATE TABLE audit_logs (
			id BIGINT PRIMARY KEY,
			actor_id BIGINT NOT NULL DEFAULT 0,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			metadata TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

type fixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	clk        *clock.FakeClock
	gateway    *fakeGateway
	svc        *paymentservice.Service
	webhookSvc paymentdomain.WebhookService

	event      eventdomain.Event
	category   categorydomain.Category
	definition bundledomain.Definition
	coupon     coupondomain.Coupon
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(6)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))
	gateway := &fakeGateway{}

	cfg := config.Config{
		Voting: config.VotingConfig{PendingPaymentTTL: 30 * time.Minute},
	}

	couponSvc := couponservice.New(couponservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  couponrepo.Provide(),
	})

	notifier := notify.New(notify.Params{
		Email: &email.NoOpProvider{},
		Log:   zap.NewNop(),
	})
	m := metrics.New()

	svc := paymentservice.New(paymentservice.Params{
		Config:     cfg,
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       paymentrepo.Provide(),
		BundleRepo: bundlerepo.Provide(),
		CouponRepo: couponrepo.Provide(),
		CouponSvc:  couponSvc,
		EventRepo:  eventrepo.Provide(),
		CatRepo:    categoryrepo.Provide(),
		Fraud: fraud.New(fraud.Params{
			Config: cfg,
			Log:    zap.NewNop(),
		}),
		Gateway:  gateway,
		Notifier: notifier,
		Metrics:  m,
		Audit: auditservice.New(auditservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			GenID: node,
			Clock: clk,
		}),
	})

	webhookSvc := paymentwebhook.NewService(paymentwebhook.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       paymentrepo.Provide(),
		PaymentSvc: svc,
		Gateway:    gateway,
		Metrics:    m,
	})

	f := &fixture{
		db:         db,
		node:       node,
		clk:        clk,
		gateway:    gateway,
		svc:        svc,
		webhookSvc: webhookSvc,
	}
	f.seed(t)
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	now := f.clk.Now()

	f.event = eventdomain.Event{
		ID:        f.node.Generate(),
		Name:      "Grand Finale",
		Status:    eventdomain.StatusPublished,
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(72 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := eventrepo.Provide().Insert(ctx, f.db, &f.event); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	f.category = categorydomain.Category{
		ID:        f.node.Generate(),
		EventID:   f.event.ID,
		Name:      "Best Vocalist",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := categoryrepo.Provide().Insert(ctx, f.db, &f.category); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	f.definition = bundledomain.Definition{
		ID:           f.node.Generate(),
		EventID:      f.event.ID,
		CategoryID:   f.category.ID,
		Name:         "Mega Pack",
		Price:        20000,
		VoteQuantity: 50,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := bundlerepo.Provide().InsertDefinition(ctx, f.db, &f.definition); err != nil {
		t.Fatalf("seed definition: %v", err)
	}

	f.coupon = coupondomain.Coupon{
		ID:            f.node.Generate(),
		Code:          "LAUNCH10",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: 10,
		MaxDiscount:   1500,
		Active:        true,
		UsageLimit:    5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := couponrepo.Provide().Insert(ctx, f.db, &f.coupon); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
}

func (f *fixture) initialize(t *testing.T, couponCode string) paymentdomain.InitializePaymentResponse {
	t.Helper()

	resp, err := f.svc.Initialize(context.Background(), paymentdomain.InitializePaymentRequest{
		VoterEmail:         "voter@example.com",
		EventID:            f.event.ID,
		CategoryID:         f.category.ID,
		BundleDefinitionID: f.definition.ID,
		CouponCode:         couponCode,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return resp
}

func (f *fixture) revenue(t *testing.T) int64 {
	t.Helper()

	var revenue int64
	if err := f.db.Raw(`SELECT total_revenue FROM events WHERE id = ?`, f.event.ID).Scan(&revenue).Error; err != nil {
		t.Fatalf("scan revenue: %v", err)
	}
	return revenue
}

func (f *fixture) bundleRemaining(t *testing.T, bundleID snowflake.ID) int {
	t.Helper()

	var remaining int
	if err := f.db.Raw(`SELECT votes_remaining FROM vote_bundles WHERE id = ?`, bundleID).Scan(&remaining).Error; err != nil {
		t.Fatalf("scan bundle: %v", err)
	}
	return remaining
}

func TestInitializeCreatesPendingPaymentWithDiscount(t *testing.T) {
	f := newFixture(t)

	resp := f.initialize(t, "LAUNCH10")
	payment := resp.Payment

	if payment.Status != paymentdomain.StatusPending {
		t.Fatalf("expected pending status, got %s", payment.Status)
	}
	if payment.OriginalAmount != 20000 || payment.DiscountAmount != 1500 || payment.FinalAmount != 18500 {
		t.Fatalf("unexpected amounts: %d - %d = %d",
			payment.OriginalAmount, payment.DiscountAmount, payment.FinalAmount)
	}
	if resp.AuthorizationURL == "" || resp.AccessCode == "" {
		t.Fatalf("expected gateway handoff fields")
	}

	if remaining := f.bundleRemaining(t, payment.BundleID); remaining != 0 {
		t.Fatalf("expected unsettled bundle to hold 0 votes, got %d", remaining)
	}

	again := f.initialize(t, "LAUNCH10")
	if again.Payment.Reference != payment.Reference {
		t.Fatalf("expected open pending payment to be reused, got new reference %s", again.Payment.Reference)
	}
}

func TestVerifySettlesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.initialize(t, "LAUNCH10")
	f.gateway.verification = paymentdomain.GatewayVerification{
		Status:        paymentdomain.GatewayStatusSuccess,
		Amount:        resp.Payment.FinalAmount,
		TransactionID: "991001",
		Channel:       "card",
	}

	settled, err := f.svc.Verify(ctx, resp.Payment.Reference)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if settled.Status != paymentdomain.StatusSuccess {
		t.Fatalf("expected success, got %s", settled.Status)
	}
	if settled.GatewayTxnID != "991001" || settled.Channel != "card" {
		t.Fatalf("expected gateway fields persisted, got %+v", settled)
	}
	if settled.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}

	if remaining := f.bundleRemaining(t, settled.BundleID); remaining != 50 {
		t.Fatalf("expected 50 credited votes, got %d", remaining)
	}
	if revenue := f.revenue(t); revenue != 18500 {
		t.Fatalf("expected revenue 18500, got %d", revenue)
	}

	var usageCount int64
	if err := f.db.Raw(`SELECT usage_count FROM coupons WHERE id = ?`, f.coupon.ID).Scan(&usageCount).Error; err != nil {
		t.Fatalf("scan coupon: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("expected coupon used once, got %d", usageCount)
	}

	// Re-verifying a settled payment must not apply effects twice.
	if _, err := f.svc.Verify(ctx, resp.Payment.Reference); err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if revenue := f.revenue(t); revenue != 18500 {
		t.Fatalf("expected revenue unchanged, got %d", revenue)
	}
}

func webhookBody(event, reference string, id int64, amount int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":%q,"data":{"id":%d,"reference":%q,"amount":%d,"channel":"card"}}`,
		event, id, reference, amount,
	))
}

func TestWebhookSettlesPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.initialize(t, "")
	payload := webhookBody("charge.success", resp.Payment.Reference, 4401, resp.Payment.FinalAmount)

	if err := f.webhookSvc.Ingest(ctx, payload, "bogus"); err != paymentdomain.ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	if err := f.webhookSvc.Ingest(ctx, payload, "valid"); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	payment, err := f.svc.GetByReference(ctx, resp.Payment.Reference)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Status != paymentdomain.StatusSuccess {
		t.Fatalf("expected success, got %s", payment.Status)
	}
	if !payment.WebhookVerified {
		t.Fatalf("expected webhook_verified flag")
	}
	if remaining := f.bundleRemaining(t, payment.BundleID); remaining != 50 {
		t.Fatalf("expected credited bundle, got %d votes", remaining)
	}

	// A redelivered webhook is acknowledged without re-applying effects.
	if err := f.webhookSvc.Ingest(ctx, payload, "valid"); err != nil {
		t.Fatalf("redelivered ingest: %v", err)
	}
	if revenue := f.revenue(t); revenue != resp.Payment.FinalAmount {
		t.Fatalf("expected revenue %d, got %d", resp.Payment.FinalAmount, revenue)
	}

	var eventCount int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM payment_events`).Scan(&eventCount).Error; err != nil {
		t.Fatalf("scan payment_events: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected single dedup ledger row, got %d", eventCount)
	}
}

func TestWebhookMalformedPayloadAcknowledged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.initialize(t, "")

	for _, payload := range [][]byte{
		[]byte(`{"event":"charge.success","data":`),
		[]byte(`{"event":"","data":{"reference":""}}`),
	} {
		if err := f.webhookSvc.Ingest(ctx, payload, "valid"); err != nil {
			t.Fatalf("expected malformed delivery to be acknowledged, got %v", err)
		}
	}

	payment, err := f.svc.GetByReference(ctx, resp.Payment.Reference)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Status != paymentdomain.StatusPending {
		t.Fatalf("expected payment untouched, got %s", payment.Status)
	}
}

func TestWebhookAfterVerifyMarksVerifiedOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.initialize(t, "")
	f.gateway.verification = paymentdomain.GatewayVerification{
		Status:        paymentdomain.GatewayStatusSuccess,
		Amount:        resp.Payment.FinalAmount,
		TransactionID: "5501",
	}
	if _, err := f.svc.Verify(ctx, resp.Payment.Reference); err != nil {
		t.Fatalf("verify: %v", err)
	}

	payload := webhookBody("charge.success", resp.Payment.Reference, 5501, resp.Payment.FinalAmount)
	if err := f.webhookSvc.Ingest(ctx, payload, "valid"); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	payment, err := f.svc.GetByReference(ctx, resp.Payment.Reference)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if !payment.WebhookVerified {
		t.Fatalf("expected webhook_verified after losing webhook")
	}
	if revenue := f.revenue(t); revenue != resp.Payment.FinalAmount {
		t.Fatalf("expected revenue credited once, got %d", revenue)
	}
}

func TestWebhookFailureMarksPaymentFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.initialize(t, "")
	payload := webhookBody("charge.failed", resp.Payment.Reference, 6601, resp.Payment.FinalAmount)

	if err := f.webhookSvc.Ingest(ctx, payload, "valid"); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	payment, err := f.svc.GetByReference(ctx, resp.Payment.Reference)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Status != paymentdomain.StatusFailed {
		t.Fatalf("expected failed status, got %s", payment.Status)
	}
	if remaining := f.bundleRemaining(t, payment.BundleID); remaining != 0 {
		t.Fatalf("expected bundle left uncredited, got %d", remaining)
	}
}

func TestRefundRevokesBundleAndRevenue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.initialize(t, "")
	f.gateway.verification = paymentdomain.GatewayVerification{
		Status:        paymentdomain.GatewayStatusSuccess,
		Amount:        resp.Payment.FinalAmount,
		TransactionID: "7701",
	}
	if _, err := f.svc.Verify(ctx, resp.Payment.Reference); err != nil {
		t.Fatalf("verify: %v", err)
	}

	refunded, err := f.svc.Refund(ctx, resp.Payment.Reference, "organizer request")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != paymentdomain.StatusRefunded {
		t.Fatalf("expected refunded status, got %s", refunded.Status)
	}
	if f.gateway.refunds != 1 {
		t.Fatalf("expected one gateway refund call, got %d", f.gateway.refunds)
	}
	if remaining := f.bundleRemaining(t, refunded.BundleID); remaining != 0 {
		t.Fatalf("expected revoked bundle, got %d votes", remaining)
	}
	if revenue := f.revenue(t); revenue != 0 {
		t.Fatalf("expected revenue reversed to 0, got %d", revenue)
	}

	if _, err := f.svc.Refund(ctx, resp.Payment.Reference, "again"); err != paymentdomain.ErrNotRefundable {
		t.Fatalf("expected ErrNotRefundable, got %v", err)
	}
}

func TestInitializeRejectsSecondPurchase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.initialize(t, "")
	f.gateway.verification = paymentdomain.GatewayVerification{
		Status:        paymentdomain.GatewayStatusSuccess,
		Amount:        resp.Payment.FinalAmount,
		TransactionID: "8801",
	}
	if _, err := f.svc.Verify(ctx, resp.Payment.Reference); err != nil {
		t.Fatalf("verify: %v", err)
	}

	_, err := f.svc.Initialize(ctx, paymentdomain.InitializePaymentRequest{
		VoterEmail:         "voter@example.com",
		EventID:            f.event.ID,
		CategoryID:         f.category.ID,
		BundleDefinitionID: f.definition.ID,
	})
	if err != paymentdomain.ErrAlreadyPurchased {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}
}

func TestInitializeRejectsClosedEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.db.Exec(`UPDATE events SET status = ? WHERE id = ?`, eventdomain.StatusClosed, f.event.ID).Error; err != nil {
		t.Fatalf("close event: %v", err)
	}

	_, err := f.svc.Initialize(ctx, paymentdomain.InitializePaymentRequest{
		VoterEmail:         "voter@example.com",
		EventID:            f.event.ID,
		CategoryID:         f.category.ID,
		BundleDefinitionID: f.definition.ID,
	})
	if err != paymentdomain.ErrEventNotPurchasable {
		t.Fatalf("expected ErrEventNotPurchasable, got %v", err)
	}
}
