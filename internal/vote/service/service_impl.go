package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	bundledomain "github.com/itfy/evoting/internal/bundle/domain"
	candidatedomain "github.com/itfy/evoting/internal/candidate/domain"
	"github.com/itfy/evoting/internal/clock"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	"github.com/itfy/evoting/internal/notify"
	"github.com/itfy/evoting/internal/observability/metrics"
	"github.com/itfy/evoting/internal/vote/domain"
	"github.com/itfy/evoting/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	EventRepo     eventdomain.Repository
	CandidateRepo candidatedomain.Repository
	BundleRepo    bundledomain.Repository
	Notifier      *notify.Notifier
	Metrics       *metrics.Metrics
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	eventRepo     eventdomain.Repository
	candidateRepo candidatedomain.Repository
	bundleRepo    bundledomain.Repository
	notifier      *notify.Notifier
	metrics       *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("vote.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		eventRepo:     p.EventRepo,
		candidateRepo: p.CandidateRepo,
		bundleRepo:    p.BundleRepo,
		notifier:      p.Notifier,
		metrics:       p.Metrics,
	}
}

func (s *Service) Cast(ctx context.Context, req domain.CastVoteRequest) (domain.Vote, error) {
	voterKey := voterKey(req.UserID, req.VoterEmail)
	if voterKey == "" {
		return domain.Vote{}, domain.ErrInvalidVoter
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, req.EventID)
	if err != nil {
		return domain.Vote{}, err
	}
	if event == nil {
		return domain.Vote{}, eventdomain.ErrNotFound
	}
	if event.Status != eventdomain.StatusActive {
		return domain.Vote{}, domain.ErrEventNotActive
	}

	now := s.clock.Now().UTC()
	if now.Before(event.StartTime) {
		return domain.Vote{}, domain.ErrVotingNotStarted
	}
	if now.After(event.EndTime) {
		return domain.Vote{}, domain.ErrVotingClosed
	}

	candidate, err := s.candidateRepo.FindByID(ctx, s.db, req.CandidateID)
	if err != nil {
		return domain.Vote{}, err
	}
	if candidate == nil || candidate.EventID != req.EventID {
		return domain.Vote{}, candidatedomain.ErrNotFound
	}
	if candidate.Status != candidatedomain.StatusApproved {
		return domain.Vote{}, domain.ErrCandidateNotEligible
	}

	// One dedup key column enforces both policies: single-vote events
	// key on the voter alone, multi-vote events on voter+candidate.
	dedupKey := voterKey
	if event.AllowMultipleVotes {
		dedupKey = voterKey + ":" + candidate.ID.String()
	}

	exists, err := s.repo.Exists(ctx, s.db, event.ID, dedupKey)
	if err != nil {
		return domain.Vote{}, err
	}
	if exists {
		return domain.Vote{}, domain.ErrDuplicateVote
	}

	vote := domain.Vote{
		ID:          s.genID.Generate(),
		EventID:     event.ID,
		CategoryID:  candidate.CategoryID,
		CandidateID: candidate.ID,
		VoterKey:    voterKey,
		DedupKey:    dedupKey,
		VoterEmail:  strings.ToLower(strings.TrimSpace(req.VoterEmail)),
		BundleID:    req.BundleID,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		CreatedAt:   now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.BundleID != nil {
			if err := s.reserveBundle(ctx, tx, *req.BundleID, event.ID, candidate.CategoryID); err != nil {
				return err
			}
		}

		if err := s.repo.Insert(ctx, tx, &vote); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateVote
			}
			return err
		}
		if err := s.candidateRepo.IncrementVoteCount(ctx, tx, candidate.ID, 1); err != nil {
			return err
		}
		return s.eventRepo.IncrementVoteCount(ctx, tx, event.ID, 1)
	})
	if err != nil {
		return domain.Vote{}, err
	}

	s.metrics.RecordVoteCast(event.ID.String())
	if vote.VoterEmail != "" {
		s.notifier.VoteConfirmation(vote.VoterEmail, candidate.Name, event.Name)
	}
	s.log.Info("vote cast",
		zap.String("event_id", event.ID.String()),
		zap.String("candidate_id", candidate.ID.String()),
	)

	return vote, nil
}

// reserveBundle consumes one vote from the bundle and, on failure,
// re-reads the row to report why.
func (s *Service) reserveBundle(ctx context.Context, tx *gorm.DB, bundleID, eventID, categoryID snowflake.ID) error {
	now := s.clock.Now().UTC()
	ok, err := s.bundleRepo.Reserve(ctx, tx, bundleID, eventID, categoryID, now)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	bundle, err := s.bundleRepo.FindBundleByID(ctx, tx, bundleID)
	if err != nil {
		return err
	}
	switch {
	case bundle == nil:
		return bundledomain.ErrNotFound
	case bundle.EventID != eventID || bundle.CategoryID != categoryID:
		return bundledomain.ErrScopeMismatch
	case bundle.PaymentID == nil:
		return bundledomain.ErrNotPurchased
	case bundle.ExpiresAt != nil && !bundle.ExpiresAt.After(now):
		return bundledomain.ErrExpired
	default:
		return bundledomain.ErrExhausted
	}
}

func (s *Service) CountByEvent(ctx context.Context, eventID snowflake.ID) (int64, error) {
	return s.repo.CountByEvent(ctx, s.db, eventID)
}

func voterKey(userID snowflake.ID, email string) string {
	if userID != 0 {
		return "user:" + userID.String()
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ""
	}
	return "email:" + email
}
