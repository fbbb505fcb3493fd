package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCategoryRequest struct {
	EventID     snowflake.ID
	Name        string
	Description string
}

type Service interface {
	Create(context.Context, CreateCategoryRequest) (Category, error)
	GetByID(ctx context.Context, id snowflake.ID) (Category, error)
	ListByEvent(ctx context.Context, eventID snowflake.ID) ([]Category, error)
}

var (
	ErrNotFound      = errors.New("category_not_found")
	ErrInvalidName   = errors.New("invalid_category_name")
	ErrInvalidEvent  = errors.New("invalid_category_event")
	ErrDuplicateName = errors.New("duplicate_category_name")
)
