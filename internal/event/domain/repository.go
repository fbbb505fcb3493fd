package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Event, error)
	List(ctx context.Context, db *gorm.DB, filter ListEventFilter, page pagination.Pagination) ([]*Event, error)
	Update(ctx context.Context, db *gorm.DB, event *Event) error

	// UpdateStatus persists the transition only when the row still holds
	// from. Returns false when another writer got there first.
	UpdateStatus(ctx context.Context, db *gorm.DB, event *Event, from Status) (bool, error)

	IncrementVoteCount(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int64) error
	IncrementRevenue(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) error
	RecountVotes(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
