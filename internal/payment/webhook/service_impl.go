package webhook

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/clock"
	"github.com/itfy/evoting/internal/observability/metrics"
	"github.com/itfy/evoting/internal/payment/domain"
	paymentservice "github.com/itfy/evoting/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const providerName = "paystack"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	PaymentSvc *paymentservice.Service
	Gateway    domain.Gateway
	Metrics    *metrics.Metrics
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	paymentSvc *paymentservice.Service
	gateway    domain.Gateway
	metrics    *metrics.Metrics
}

func NewService(p Params) domain.WebhookService {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.webhook"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		paymentSvc: p.PaymentSvc,
		gateway:    p.Gateway,
		metrics:    p.Metrics,
	}
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID        int64      `json:"id"`
		Reference string     `json:"reference"`
		Amount    int64      `json:"amount"`
		Channel   string     `json:"channel"`
		PaidAt    *time.Time `json:"paid_at"`
		Gateway   string     `json:"gateway_response"`
	} `json:"data"`
}

// Ingest authenticates, dedups and settles one webhook delivery.
// Redelivered events are acknowledged without re-applying effects.
func (s *Service) Ingest(ctx context.Context, payload []byte, signature string) error {
	if err := s.gateway.VerifySignature(payload, signature); err != nil {
		s.metrics.RecordWebhookEvent("invalid_signature")
		return domain.ErrInvalidSignature
	}
	// Authenticated but malformed deliveries are acknowledged, not
	// retried; only signature failures surface an error.
	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		s.metrics.RecordWebhookEvent("invalid_payload")
		s.log.Warn("webhook payload unparseable", zap.Error(err))
		return nil
	}
	if body.Event == "" || body.Data.Reference == "" {
		s.metrics.RecordWebhookEvent("invalid_payload")
		s.log.Warn("webhook payload missing fields", zap.String("event", body.Event))
		return nil
	}

	switch body.Event {
	case "charge.success", "charge.failed":
	default:
		s.metrics.RecordWebhookEvent("ignored")
		s.log.Debug("webhook event ignored", zap.String("event", body.Event))
		return nil
	}

	now := s.clock.Now().UTC()
	record := domain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        providerName,
		ProviderEventID: providerEventID(body),
		EventType:       body.Event,
		Reference:       body.Data.Reference,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &record)
	if err != nil {
		return err
	}
	if !inserted {
		existing, err := s.repo.FindEvent(ctx, s.db, record.Provider, record.ProviderEventID)
		if err != nil {
			return err
		}
		if existing == nil || existing.ProcessedAt != nil {
			s.metrics.RecordWebhookEvent("duplicate")
			return nil
		}
		// Redelivery of an event whose first processing never finished.
		record = *existing
	}

	switch body.Event {
	case "charge.success":
		verification := domain.GatewayVerification{
			Status:        domain.GatewayStatusSuccess,
			Amount:        body.Data.Amount,
			TransactionID: transactionID(body),
			Channel:       body.Data.Channel,
			PaidAt:        body.Data.PaidAt,
		}
		if _, err := s.paymentSvc.ApplySuccess(ctx, body.Data.Reference, verification, true); err != nil {
			return err
		}
	case "charge.failed":
		reason := body.Data.Gateway
		if reason == "" {
			reason = "declined"
		}
		if err := s.paymentSvc.ApplyFailure(ctx, body.Data.Reference, reason); err != nil {
			return err
		}
	}

	if err := s.repo.MarkEventProcessed(ctx, s.db, record.ID, s.clock.Now().UTC()); err != nil {
		return err
	}

	s.metrics.RecordWebhookEvent("processed")
	return nil
}

func providerEventID(body webhookPayload) string {
	// Paystack deliveries carry no event id; the charge id plus event
	// type identifies a delivery for dedup purposes.
	return body.Event + ":" + transactionID(body)
}

func transactionID(body webhookPayload) string {
	if body.Data.ID != 0 {
		return strconv.FormatInt(body.Data.ID, 10)
	}
	return body.Data.Reference
}
