package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertDefinition(ctx context.Context, db *gorm.DB, def *Definition) error
	FindDefinitionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Definition, error)
	ListDefinitions(ctx context.Context, db *gorm.DB, eventID, categoryID snowflake.ID) ([]*Definition, error)
	SetDefinitionActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, now time.Time) (bool, error)

	InsertBundle(ctx context.Context, db *gorm.DB, bundle *VoteBundle) error
	FindBundleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*VoteBundle, error)
	FindBundleByCode(ctx context.Context, db *gorm.DB, code string) (*VoteBundle, error)
	FindBundleByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (*VoteBundle, error)

	// Credit makes an issued bundle spendable after its payment settles.
	// The guard on votes_remaining keeps replayed settlements from
	// topping a bundle back up.
	Credit(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error)

	// Reserve consumes exactly one vote from the bundle. The single
	// conditional UPDATE is what guarantees one winner under concurrency.
	Reserve(ctx context.Context, db *gorm.DB, id, eventID, categoryID snowflake.ID, now time.Time) (bool, error)

	// Release compensates a reservation whose vote transaction rolled back.
	Release(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error

	// Revoke zeroes unspent votes when the linked payment is refunded.
	Revoke(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
}
