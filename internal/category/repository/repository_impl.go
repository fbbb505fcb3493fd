package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/category/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO categories (id, event_id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.EventID,
		category.Name,
		category.Description,
		category.CreatedAt,
		category.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Category, error) {
	var category domain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM categories WHERE id = ?`, id,
	).Scan(&category).Error
	if err != nil {
		return nil, err
	}
	if category.ID == 0 {
		return nil, nil
	}
	return &category, nil
}

func (r *repo) ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM categories WHERE event_id = ? ORDER BY created_at asc, id asc`, eventID,
	).Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
