package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Payment, error)
	ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*Payment, error)

	// FindSettled returns a prior success for the purchase tuple; used
	// as the already-purchased guard.
	FindSettled(ctx context.Context, db *gorm.DB, voterEmail string, eventID, categoryID snowflake.ID) (*Payment, error)

	// FindOpenPending returns a pending payment for the tuple that has
	// not passed its expiry.
	FindOpenPending(ctx context.Context, db *gorm.DB, voterEmail string, eventID, categoryID snowflake.ID, now time.Time) (*Payment, error)

	SetGatewayHandoff(ctx context.Context, db *gorm.DB, id snowflake.ID, authorizationURL, accessCode string, now time.Time) error

	// MarkSuccess flips pending to success. The status guard in the
	// WHERE clause is what makes settlement idempotent.
	MarkSuccess(ctx context.Context, db *gorm.DB, reference, gatewayTxnID, channel string, paidAt time.Time, viaWebhook bool, now time.Time) (bool, error)
	MarkFailed(ctx context.Context, db *gorm.DB, reference, reason string, now time.Time) (bool, error)
	MarkRefunded(ctx context.Context, db *gorm.DB, reference, reason string, now time.Time) (bool, error)
	SetWebhookVerified(ctx context.Context, db *gorm.DB, reference string, now time.Time) error

	FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*EventRecord, error)
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
	MarkEventProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
}
