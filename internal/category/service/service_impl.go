package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/category/domain"
	"github.com/itfy/evoting/internal/clock"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	"github.com/itfy/evoting/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	EventRepo eventdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	eventRepo eventdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("category.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		eventRepo: p.EventRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCategoryRequest) (domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, domain.ErrInvalidName
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, req.EventID)
	if err != nil {
		return domain.Category{}, err
	}
	if event == nil {
		return domain.Category{}, domain.ErrInvalidEvent
	}

	now := s.clock.Now().UTC()
	category := domain.Category{
		ID:          s.genID.Generate(),
		EventID:     req.EventID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &category); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Category{}, domain.ErrDuplicateName
		}
		return domain.Category{}, err
	}

	return category, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Category, error) {
	category, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Category{}, err
	}
	if category == nil {
		return domain.Category{}, domain.ErrNotFound
	}
	return *category, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID snowflake.ID) ([]domain.Category, error) {
	items, err := s.repo.ListByEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		categories = append(categories, *item)
	}
	return categories, nil
}
