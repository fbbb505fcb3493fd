package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, vote *Vote) error
	Exists(ctx context.Context, db *gorm.DB, eventID snowflake.ID, dedupKey string) (bool, error)
	CountByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error)
	CountByCandidate(ctx context.Context, db *gorm.DB, candidateID snowflake.ID) (int64, error)
}
