package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/event/domain"
	"github.com/itfy/evoting/pkg/db/option"
	"github.com/itfy/evoting/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO events (id, owner_id, name, slug, description, status, allow_multiple_votes,
		 start_time, end_time, current_vote_count, total_revenue, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.OwnerID,
		event.Name,
		event.Slug,
		event.Description,
		event.Status,
		event.AllowMultipleVotes,
		event.StartTime,
		event.EndTime,
		event.CurrentVoteCount,
		event.TotalRevenue,
		event.CreatedAt,
		event.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM events WHERE id = ?`, id,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM events WHERE slug = ?`, slug,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListEventFilter, page pagination.Pagination) ([]*domain.Event, error) {
	var events []*domain.Event
	stmt := db.WithContext(ctx).Model(&domain.Event{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != 0 {
		stmt = stmt.Where("owner_id = ?", filter.OwnerID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`UPDATE events SET name = ?, slug = ?, description = ?, start_time = ?, end_time = ?, updated_at = ?
		 WHERE id = ?`,
		event.Name,
		event.Slug,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.UpdatedAt,
		event.ID,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, event *domain.Event, from domain.Status) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE events SET status = ?, published_at = ?, activated_at = ?, closed_at = ?,
		 archived_at = ?, cancelled_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		event.Status,
		event.PublishedAt,
		event.ActivatedAt,
		event.ClosedAt,
		event.ArchivedAt,
		event.CancelledAt,
		event.UpdatedAt,
		event.ID,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) IncrementVoteCount(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE events SET current_vote_count = current_vote_count + ? WHERE id = ?`,
		delta, id,
	).Error
}

func (r *repo) IncrementRevenue(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE events SET total_revenue = total_revenue + ? WHERE id = ?`,
		amount, id,
	).Error
}

func (r *repo) RecountVotes(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE events SET current_vote_count = (SELECT COUNT(*) FROM votes WHERE votes.event_id = events.id)
		 WHERE id = ?`,
		id,
	).Error
}
