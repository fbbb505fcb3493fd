package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/bundle/domain"
	categorydomain "github.com/itfy/evoting/internal/category/domain"
	"github.com/itfy/evoting/internal/clock"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	EventRepo    eventdomain.Repository
	CategoryRepo categorydomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	eventRepo    eventdomain.Repository
	categoryRepo categorydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("bundle.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		eventRepo:    p.EventRepo,
		categoryRepo: p.CategoryRepo,
	}
}

func (s *Service) CreateDefinition(ctx context.Context, req domain.CreateDefinitionRequest) (domain.Definition, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price < 0 || req.VoteQuantity < 1 {
		return domain.Definition{}, domain.ErrInvalidDefinition
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, req.EventID)
	if err != nil {
		return domain.Definition{}, err
	}
	if event == nil {
		return domain.Definition{}, domain.ErrInvalidDefinition
	}

	category, err := s.categoryRepo.FindByID(ctx, s.db, req.CategoryID)
	if err != nil {
		return domain.Definition{}, err
	}
	if category == nil || category.EventID != req.EventID {
		return domain.Definition{}, domain.ErrInvalidDefinition
	}

	now := s.clock.Now().UTC()
	def := domain.Definition{
		ID:           s.genID.Generate(),
		EventID:      req.EventID,
		CategoryID:   req.CategoryID,
		Name:         name,
		Price:        req.Price,
		VoteQuantity: req.VoteQuantity,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertDefinition(ctx, s.db, &def); err != nil {
		return domain.Definition{}, err
	}

	return def, nil
}

func (s *Service) GetDefinition(ctx context.Context, id snowflake.ID) (domain.Definition, error) {
	def, err := s.repo.FindDefinitionByID(ctx, s.db, id)
	if err != nil {
		return domain.Definition{}, err
	}
	if def == nil {
		return domain.Definition{}, domain.ErrDefinitionNotFound
	}
	return *def, nil
}

func (s *Service) ListDefinitions(ctx context.Context, eventID, categoryID snowflake.ID) ([]domain.Definition, error) {
	items, err := s.repo.ListDefinitions(ctx, s.db, eventID, categoryID)
	if err != nil {
		return nil, err
	}

	defs := make([]domain.Definition, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		defs = append(defs, *item)
	}
	return defs, nil
}

func (s *Service) Deactivate(ctx context.Context, id snowflake.ID) (domain.Definition, error) {
	def, err := s.repo.FindDefinitionByID(ctx, s.db, id)
	if err != nil {
		return domain.Definition{}, err
	}
	if def == nil {
		return domain.Definition{}, domain.ErrDefinitionNotFound
	}
	if !def.Active {
		return domain.Definition{}, domain.ErrDefinitionInactive
	}

	now := s.clock.Now().UTC()
	ok, err := s.repo.SetDefinitionActive(ctx, s.db, id, false, now)
	if err != nil {
		return domain.Definition{}, err
	}
	if !ok {
		return domain.Definition{}, domain.ErrDefinitionInactive
	}

	def.Active = false
	def.UpdatedAt = now
	return *def, nil
}

func (s *Service) GetBundle(ctx context.Context, id snowflake.ID) (domain.VoteBundle, error) {
	bundle, err := s.repo.FindBundleByID(ctx, s.db, id)
	if err != nil {
		return domain.VoteBundle{}, err
	}
	if bundle == nil {
		return domain.VoteBundle{}, domain.ErrNotFound
	}
	return *bundle, nil
}

func (s *Service) GetBundleByCode(ctx context.Context, code string) (domain.VoteBundle, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.VoteBundle{}, domain.ErrNotFound
	}

	bundle, err := s.repo.FindBundleByCode(ctx, s.db, code)
	if err != nil {
		return domain.VoteBundle{}, err
	}
	if bundle == nil {
		return domain.VoteBundle{}, domain.ErrNotFound
	}
	return *bundle, nil
}
