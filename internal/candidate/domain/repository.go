package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, candidate *Candidate) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Candidate, error)
	FindByVotingCode(ctx context.Context, db *gorm.DB, code string) (*Candidate, error)
	List(ctx context.Context, db *gorm.DB, filter ListCandidateFilter, page pagination.Pagination) ([]*Candidate, error)

	// UpdateStatus persists moderation only while the row is still pending.
	UpdateStatus(ctx context.Context, db *gorm.DB, candidate *Candidate) (bool, error)

	CountByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID, status Status) (int64, error)
	IncrementVoteCount(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int64) error

	// Tally helpers, run inside the closing transaction.
	RecountVotes(ctx context.Context, db *gorm.DB, eventID snowflake.ID) error
	ListForTally(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*Candidate, error)
	SetRank(ctx context.Context, db *gorm.DB, id snowflake.ID, rank int) error
}
