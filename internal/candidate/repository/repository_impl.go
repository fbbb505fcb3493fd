package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/candidate/domain"
	"github.com/itfy/evoting/pkg/db/option"
	"github.com/itfy/evoting/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, candidate *domain.Candidate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO candidates (id, event_id, category_id, name, bio, image_url, voting_code,
		 status, vote_count, rank, registered_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		candidate.ID,
		candidate.EventID,
		candidate.CategoryID,
		candidate.Name,
		candidate.Bio,
		candidate.ImageURL,
		candidate.VotingCode,
		candidate.Status,
		candidate.VoteCount,
		candidate.Rank,
		candidate.RegisteredAt,
		candidate.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM candidates WHERE id = ?`, id,
	).Scan(&candidate).Error
	if err != nil {
		return nil, err
	}
	if candidate.ID == 0 {
		return nil, nil
	}
	return &candidate, nil
}

func (r *repo) FindByVotingCode(ctx context.Context, db *gorm.DB, code string) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM candidates WHERE voting_code = ?`, code,
	).Scan(&candidate).Error
	if err != nil {
		return nil, err
	}
	if candidate.ID == 0 {
		return nil, nil
	}
	return &candidate, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCandidateFilter, page pagination.Pagination) ([]*domain.Candidate, error) {
	var candidates []*domain.Candidate
	stmt := db.WithContext(ctx).Model(&domain.Candidate{})
	if filter.EventID != 0 {
		stmt = stmt.Where("event_id = ?", filter.EventID)
	}
	if filter.CategoryID != 0 {
		stmt = stmt.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("registered_at desc, id desc").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, candidate *domain.Candidate) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE candidates SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		candidate.Status,
		candidate.UpdatedAt,
		candidate.ID,
		domain.StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) CountByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID, status domain.Status) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM candidates WHERE event_id = ? AND status = ?`,
		eventID, status,
	).Scan(&count).Error
	return count, err
}

func (r *repo) IncrementVoteCount(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE candidates SET vote_count = vote_count + ? WHERE id = ?`,
		delta, id,
	).Error
}

func (r *repo) RecountVotes(ctx context.Context, db *gorm.DB, eventID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE candidates SET vote_count = (SELECT COUNT(*) FROM votes WHERE votes.candidate_id = candidates.id)
		 WHERE event_id = ?`,
		eventID,
	).Error
}

func (r *repo) ListForTally(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.Candidate, error) {
	var candidates []*domain.Candidate
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM candidates WHERE event_id = ? AND status = ?
		 ORDER BY vote_count desc, registered_at asc, id asc`,
		eventID, domain.StatusApproved,
	).Scan(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repo) SetRank(ctx context.Context, db *gorm.DB, id snowflake.ID, rank int) error {
	return db.WithContext(ctx).Exec(
		`UPDATE candidates SET rank = ? WHERE id = ?`,
		rank, id,
	).Error
}
