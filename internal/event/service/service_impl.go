package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	candidatedomain "github.com/itfy/evoting/internal/candidate/domain"
	"github.com/itfy/evoting/internal/clock"
	"github.com/itfy/evoting/internal/config"
	"github.com/itfy/evoting/internal/event/domain"
	"github.com/itfy/evoting/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config        config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	CandidateRepo candidatedomain.Repository
}

type Service struct {
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	candidateRepo candidatedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:           p.Config,
		db:            p.DB,
		log:           p.Log.Named("event.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		candidateRepo: p.CandidateRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEventRequest) (domain.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Event{}, domain.ErrInvalidName
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.EndTime.After(req.StartTime) {
		return domain.Event{}, domain.ErrInvalidSchedule
	}

	now := s.clock.Now().UTC()
	id := s.genID.Generate()
	event := domain.Event{
		ID:                 id,
		OwnerID:            req.OwnerID,
		Name:               name,
		Slug:               slug.Make(name) + "-" + id.String(),
		Description:        strings.TrimSpace(req.Description),
		Status:             domain.StatusDraft,
		AllowMultipleVotes: req.AllowMultipleVotes,
		StartTime:          req.StartTime.UTC(),
		EndTime:            req.EndTime.UTC(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		return domain.Event{}, err
	}

	return event, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEventRequest) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	if event.Status != domain.StatusDraft && event.Status != domain.StatusPublished {
		return domain.Event{}, domain.ErrNotEditable
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Event{}, domain.ErrInvalidName
		}
		event.Name = name
		event.Slug = slug.Make(name) + "-" + event.ID.String()
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.StartTime != nil {
		event.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime.UTC()
	}
	if !event.EndTime.After(event.StartTime) {
		return domain.Event{}, domain.ErrInvalidSchedule
	}

	event.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, event); err != nil {
		return domain.Event{}, err
	}

	return *event, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	return *event, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEventRequest) (domain.ListEventResponse, error) {
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		return domain.ListEventResponse{}, domain.ErrInvalidStatus
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListEventFilter{
		Status:  req.Status,
		OwnerID: req.OwnerID,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListEventResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(event *domain.Event) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        event.ID.String(),
			CreatedAt: event.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, *item)
	}

	resp := domain.ListEventResponse{Events: events}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Transition(ctx context.Context, id snowflake.ID, target domain.Status) (domain.Event, error) {
	if !domain.ValidStatus(target) {
		return domain.Event{}, domain.ErrInvalidStatus
	}

	event, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	if !domain.CanTransition(event.Status, target) {
		return domain.Event{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now().UTC()
	if target == domain.StatusActive {
		approved, err := s.candidateRepo.CountByEvent(ctx, s.db, event.ID, candidatedomain.StatusApproved)
		if err != nil {
			return domain.Event{}, err
		}
		if approved < int64(s.cfg.Voting.MinApprovedCandidates) {
			return domain.Event{}, domain.ErrNotEnoughCandidates
		}
		if now.After(event.StartTime) {
			return domain.Event{}, domain.ErrWindowPassed
		}
	}

	from := event.Status
	event.Status = target
	event.UpdatedAt = now
	switch target {
	case domain.StatusPublished:
		event.PublishedAt = &now
	case domain.StatusActive:
		event.ActivatedAt = &now
	case domain.StatusClosed:
		event.ClosedAt = &now
	case domain.StatusArchived:
		event.ArchivedAt = &now
	case domain.StatusCancelled:
		event.CancelledAt = &now
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateStatus(ctx, tx, event, from)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		if target == domain.StatusClosed {
			return s.tally(ctx, tx, event.ID)
		}
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.log.Info("event transitioned",
		zap.String("event_id", event.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)

	return *event, nil
}

// tally recounts votes from the vote table and persists candidate ranks.
// Ties break on the earlier registration timestamp.
func (s *Service) tally(ctx context.Context, tx *gorm.DB, eventID snowflake.ID) error {
	if err := s.candidateRepo.RecountVotes(ctx, tx, eventID); err != nil {
		return err
	}
	if err := s.repo.RecountVotes(ctx, tx, eventID); err != nil {
		return err
	}

	candidates, err := s.candidateRepo.ListForTally(ctx, tx, eventID)
	if err != nil {
		return err
	}
	for i, candidate := range candidates {
		if err := s.candidateRepo.SetRank(ctx, tx, candidate.ID, i+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Results(ctx context.Context, id snowflake.ID) ([]domain.ResultEntry, error) {
	event, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	if event.Status != domain.StatusClosed && event.Status != domain.StatusArchived {
		return nil, domain.ErrResultsNotReady
	}

	candidates, err := s.candidateRepo.ListForTally(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ResultEntry, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, domain.ResultEntry{
			CandidateID:  candidate.ID,
			CategoryID:   candidate.CategoryID,
			Name:         candidate.Name,
			VoteCount:    candidate.VoteCount,
			Rank:         candidate.Rank,
			RegisteredAt: candidate.RegisteredAt,
		})
	}
	return results, nil
}
