package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateDefinitionRequest struct {
	EventID      snowflake.ID
	CategoryID   snowflake.ID
	Name         string
	Price        int64
	VoteQuantity int
}

type Service interface {
	CreateDefinition(context.Context, CreateDefinitionRequest) (Definition, error)
	GetDefinition(ctx context.Context, id snowflake.ID) (Definition, error)
	ListDefinitions(ctx context.Context, eventID, categoryID snowflake.ID) ([]Definition, error)
	Deactivate(ctx context.Context, id snowflake.ID) (Definition, error)

	GetBundle(ctx context.Context, id snowflake.ID) (VoteBundle, error)
	GetBundleByCode(ctx context.Context, code string) (VoteBundle, error)
}

var (
	ErrDefinitionNotFound = errors.New("bundle_definition_not_found")
	ErrDefinitionInactive = errors.New("bundle_definition_inactive")
	ErrInvalidDefinition  = errors.New("invalid_bundle_definition")
	ErrNotFound           = errors.New("bundle_not_found")
	ErrNotPurchased       = errors.New("bundle_not_purchased")
	ErrExhausted          = errors.New("bundle_exhausted")
	ErrExpired            = errors.New("bundle_expired")
	ErrScopeMismatch      = errors.New("bundle_scope_mismatch")
)
