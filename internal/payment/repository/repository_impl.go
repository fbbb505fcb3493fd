package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, reference, voter_email, user_id, event_id, category_id,
		 bundle_definition_id, bundle_id, original_amount, discount_amount, final_amount,
		 coupon_id, status, gateway_txn_id, channel, paid_at, webhook_verified, fraud_flag,
		 authorization_url, access_code, ip_address, failure_reason, refund_reason,
		 refunded_at, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.Reference,
		payment.VoterEmail,
		payment.UserID,
		payment.EventID,
		payment.CategoryID,
		payment.BundleDefinitionID,
		payment.BundleID,
		payment.OriginalAmount,
		payment.DiscountAmount,
		payment.FinalAmount,
		payment.CouponID,
		payment.Status,
		payment.GatewayTxnID,
		payment.Channel,
		payment.PaidAt,
		payment.WebhookVerified,
		payment.FraudFlag,
		payment.AuthorizationURL,
		payment.AccessCode,
		payment.IPAddress,
		payment.FailureReason,
		payment.RefundReason,
		payment.RefundedAt,
		payment.ExpiresAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE id = ?`, id,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE reference = ?`, reference,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE event_id = ? ORDER BY created_at desc, id desc`,
		eventID,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) FindSettled(ctx context.Context, db *gorm.DB, voterEmail string, eventID, categoryID snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments
		 WHERE voter_email = ? AND event_id = ? AND category_id = ? AND status = ?
		 LIMIT 1`,
		voterEmail, eventID, categoryID, domain.StatusSuccess,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) FindOpenPending(ctx context.Context, db *gorm.DB, voterEmail string, eventID, categoryID snowflake.ID, now time.Time) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments
		 WHERE voter_email = ? AND event_id = ? AND category_id = ? AND status = ? AND expires_at > ?
		 ORDER BY created_at desc
		 LIMIT 1`,
		voterEmail, eventID, categoryID, domain.StatusPending, now,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) SetGatewayHandoff(ctx context.Context, db *gorm.DB, id snowflake.ID, authorizationURL, accessCode string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments SET authorization_url = ?, access_code = ?, updated_at = ? WHERE id = ?`,
		authorizationURL, accessCode, now, id,
	).Error
}

func (r *repo) MarkSuccess(ctx context.Context, db *gorm.DB, reference, gatewayTxnID, channel string, paidAt time.Time, viaWebhook bool, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments SET status = ?, gateway_txn_id = ?, channel = ?, paid_at = ?,
		 webhook_verified = ?, updated_at = ?
		 WHERE reference = ? AND status = ?`,
		domain.StatusSuccess, gatewayTxnID, channel, paidAt, viaWebhook, now,
		reference, domain.StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, reference, reason string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments SET status = ?, failure_reason = ?, updated_at = ?
		 WHERE reference = ? AND status = ?`,
		domain.StatusFailed, reason, now,
		reference, domain.StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) MarkRefunded(ctx context.Context, db *gorm.DB, reference, reason string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments SET status = ?, refund_reason = ?, refunded_at = ?, updated_at = ?
		 WHERE reference = ? AND status = ?`,
		domain.StatusRefunded, reason, now, now,
		reference, domain.StatusSuccess,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) SetWebhookVerified(ctx context.Context, db *gorm.DB, reference string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments SET webhook_verified = TRUE, updated_at = ? WHERE reference = ?`,
		now, reference,
	).Error
}

func (r *repo) FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*domain.EventRecord, error) {
	var item domain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payment_events WHERE provider = ? AND provider_event_id = ? LIMIT 1`,
		provider, providerEventID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.EventRecord) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payment_events (id, provider, provider_event_id, event_type, reference,
		 payload, received_at, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (provider, provider_event_id) DO NOTHING`,
		event.ID,
		event.Provider,
		event.ProviderEventID,
		event.EventType,
		event.Reference,
		event.Payload,
		event.ReceivedAt,
		event.ProcessedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) MarkEventProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_events SET processed_at = ? WHERE id = ?`,
		processedAt, id,
	).Error
}
