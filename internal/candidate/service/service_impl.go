package service

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/candidate/domain"
	categorydomain "github.com/itfy/evoting/internal/category/domain"
	"github.com/itfy/evoting/internal/clock"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	"github.com/itfy/evoting/pkg/db"
	"github.com/itfy/evoting/pkg/db/pagination"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// codeAlphabet excludes ambiguous glyphs (0/O, 1/I/L).
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const (
	codeLength         = 6
	codeInsertRetries  = 3
	codeReservationTTL = 10 * time.Minute
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Redis        *redis.Client
	Repo         domain.Repository
	EventRepo    eventdomain.Repository
	CategoryRepo categorydomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	rdb          *redis.Client
	repo         domain.Repository
	eventRepo    eventdomain.Repository
	categoryRepo categorydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("candidate.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		rdb:          p.Redis,
		repo:         p.Repo,
		eventRepo:    p.EventRepo,
		categoryRepo: p.CategoryRepo,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterCandidateRequest) (domain.Candidate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Candidate{}, domain.ErrInvalidName
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, req.EventID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if event == nil {
		return domain.Candidate{}, domain.ErrInvalidEvent
	}
	if event.Status != eventdomain.StatusDraft && event.Status != eventdomain.StatusPublished {
		return domain.Candidate{}, domain.ErrEventNotAccepting
	}

	category, err := s.categoryRepo.FindByID(ctx, s.db, req.CategoryID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if category == nil || category.EventID != req.EventID {
		return domain.Candidate{}, domain.ErrCategoryMismatch
	}

	now := s.clock.Now().UTC()
	candidate := domain.Candidate{
		ID:           s.genID.Generate(),
		EventID:      req.EventID,
		CategoryID:   req.CategoryID,
		Name:         name,
		Bio:          strings.TrimSpace(req.Bio),
		ImageURL:     strings.TrimSpace(req.ImageURL),
		Status:       domain.StatusPending,
		RegisteredAt: now,
		UpdatedAt:    now,
	}

	// The unique index on voting_code is the real guard; the redis
	// reservation only narrows the retry window across instances.
	for attempt := 0; attempt < codeInsertRetries; attempt++ {
		code, err := s.reserveVotingCode(ctx)
		if err != nil {
			return domain.Candidate{}, err
		}
		candidate.VotingCode = code

		err = s.repo.Insert(ctx, s.db, &candidate)
		if err == nil {
			return candidate, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.Candidate{}, err
		}
	}

	return domain.Candidate{}, domain.ErrVotingCodeConflict
}

func (s *Service) reserveVotingCode(ctx context.Context) (string, error) {
	for {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		if s.rdb == nil {
			return code, nil
		}

		ok, err := s.rdb.SetNX(ctx, "voting_code:"+code, 1, codeReservationTTL).Result()
		if err != nil {
			s.log.Warn("voting code reservation unavailable", zap.Error(err))
			return code, nil
		}
		if ok {
			return code, nil
		}
	}
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}

func (s *Service) Approve(ctx context.Context, id snowflake.ID) (domain.Candidate, error) {
	return s.moderate(ctx, id, domain.StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id snowflake.ID, reason string) (domain.Candidate, error) {
	candidate, err := s.moderate(ctx, id, domain.StatusRejected)
	if err != nil {
		return domain.Candidate{}, err
	}
	if reason != "" {
		s.log.Info("candidate rejected",
			zap.String("candidate_id", candidate.ID.String()),
			zap.String("reason", reason),
		)
	}
	return candidate, nil
}

func (s *Service) moderate(ctx context.Context, id snowflake.ID, target domain.Status) (domain.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	if candidate == nil {
		return domain.Candidate{}, domain.ErrNotFound
	}
	if candidate.Status != domain.StatusPending {
		return domain.Candidate{}, domain.ErrAlreadyModerated
	}

	candidate.Status = target
	candidate.UpdatedAt = s.clock.Now().UTC()

	ok, err := s.repo.UpdateStatus(ctx, s.db, candidate)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !ok {
		return domain.Candidate{}, domain.ErrAlreadyModerated
	}
	return *candidate, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	if candidate == nil {
		return domain.Candidate{}, domain.ErrNotFound
	}
	return *candidate, nil
}

func (s *Service) GetByVotingCode(ctx context.Context, code string) (domain.Candidate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Candidate{}, domain.ErrNotFound
	}

	candidate, err := s.repo.FindByVotingCode(ctx, s.db, code)
	if err != nil {
		return domain.Candidate{}, err
	}
	if candidate == nil {
		return domain.Candidate{}, domain.ErrNotFound
	}
	return *candidate, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCandidateRequest) (domain.ListCandidateResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListCandidateFilter{
		EventID:    req.EventID,
		CategoryID: req.CategoryID,
		Status:     req.Status,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListCandidateResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(candidate *domain.Candidate) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        candidate.ID.String(),
			CreatedAt: candidate.RegisteredAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		candidates = append(candidates, *item)
	}

	resp := domain.ListCandidateResponse{Candidates: candidates}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
