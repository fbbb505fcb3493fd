package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/bundle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertDefinition(ctx context.Context, db *gorm.DB, def *domain.Definition) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bundle_definitions (id, event_id, category_id, name, price, vote_quantity, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID,
		def.EventID,
		def.CategoryID,
		def.Name,
		def.Price,
		def.VoteQuantity,
		def.Active,
		def.CreatedAt,
		def.UpdatedAt,
	).Error
}

func (r *repo) FindDefinitionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Definition, error) {
	var def domain.Definition
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM bundle_definitions WHERE id = ?`, id,
	).Scan(&def).Error
	if err != nil {
		return nil, err
	}
	if def.ID == 0 {
		return nil, nil
	}
	return &def, nil
}

func (r *repo) ListDefinitions(ctx context.Context, db *gorm.DB, eventID, categoryID snowflake.ID) ([]*domain.Definition, error) {
	var defs []*domain.Definition
	stmt := db.WithContext(ctx).Model(&domain.Definition{}).Where("event_id = ?", eventID)
	if categoryID != 0 {
		stmt = stmt.Where("category_id = ?", categoryID)
	}
	err := stmt.Order("price asc, id asc").Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *repo) SetDefinitionActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bundle_definitions SET active = ?, updated_at = ? WHERE id = ? AND active = ?`,
		active, now, id, !active,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) InsertBundle(ctx context.Context, db *gorm.DB, bundle *domain.VoteBundle) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vote_bundles (id, definition_id, event_id, category_id, code, price, vote_quantity,
		 votes_remaining, payment_id, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bundle.ID,
		bundle.DefinitionID,
		bundle.EventID,
		bundle.CategoryID,
		bundle.Code,
		bundle.Price,
		bundle.VoteQuantity,
		bundle.VotesRemaining,
		bundle.PaymentID,
		bundle.ExpiresAt,
		bundle.CreatedAt,
		bundle.UpdatedAt,
	).Error
}

func (r *repo) FindBundleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.VoteBundle, error) {
	var bundle domain.VoteBundle
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM vote_bundles WHERE id = ?`, id,
	).Scan(&bundle).Error
	if err != nil {
		return nil, err
	}
	if bundle.ID == 0 {
		return nil, nil
	}
	return &bundle, nil
}

func (r *repo) FindBundleByCode(ctx context.Context, db *gorm.DB, code string) (*domain.VoteBundle, error) {
	var bundle domain.VoteBundle
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM vote_bundles WHERE code = ?`, code,
	).Scan(&bundle).Error
	if err != nil {
		return nil, err
	}
	if bundle.ID == 0 {
		return nil, nil
	}
	return &bundle, nil
}

func (r *repo) FindBundleByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (*domain.VoteBundle, error) {
	var bundle domain.VoteBundle
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM vote_bundles WHERE payment_id = ?`, paymentID,
	).Scan(&bundle).Error
	if err != nil {
		return nil, err
	}
	if bundle.ID == 0 {
		return nil, nil
	}
	return &bundle, nil
}

func (r *repo) Credit(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE vote_bundles SET votes_remaining = vote_quantity, updated_at = ?
		 WHERE id = ? AND payment_id IS NOT NULL AND votes_remaining = 0`,
		now, id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Reserve(ctx context.Context, db *gorm.DB, id, eventID, categoryID snowflake.ID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE vote_bundles SET votes_remaining = votes_remaining - 1, updated_at = ?
		 WHERE id = ? AND event_id = ? AND category_id = ?
		 AND payment_id IS NOT NULL
		 AND votes_remaining > 0
		 AND (expires_at IS NULL OR expires_at > ?)`,
		now, id, eventID, categoryID, now,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Revoke(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE vote_bundles SET votes_remaining = 0, updated_at = ? WHERE id = ?`,
		now, id,
	).Error
}

func (r *repo) Release(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE vote_bundles SET votes_remaining = votes_remaining + 1, updated_at = ?
		 WHERE id = ? AND votes_remaining < vote_quantity`,
		now, id,
	).Error
}
