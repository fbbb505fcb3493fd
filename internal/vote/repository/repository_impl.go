package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/vote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, vote *domain.Vote) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO votes (id, event_id, category_id, candidate_id, voter_key, dedup_key,
		 voter_email, bundle_id, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vote.ID,
		vote.EventID,
		vote.CategoryID,
		vote.CandidateID,
		vote.VoterKey,
		vote.DedupKey,
		vote.VoterEmail,
		vote.BundleID,
		vote.IPAddress,
		vote.UserAgent,
		vote.CreatedAt,
	).Error
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, eventID snowflake.ID, dedupKey string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM votes WHERE event_id = ? AND dedup_key = ?`,
		eventID, dedupKey,
	).Scan(&count).Error
	return count > 0, err
}

func (r *repo) CountByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM votes WHERE event_id = ?`, eventID,
	).Scan(&count).Error
	return count, err
}

func (r *repo) CountByCandidate(ctx context.Context, db *gorm.DB, candidateID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM votes WHERE candidate_id = ?`, candidateID,
	).Scan(&count).Error
	return count, err
}
