package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CastVoteRequest struct {
	EventID     snowflake.ID
	CandidateID snowflake.ID
	UserID      snowflake.ID
	VoterEmail  string
	BundleID    *snowflake.ID
	IPAddress   string
	UserAgent   string
}

type Service interface {
	// Cast records one vote. The vote row, both counters and the bundle
	// decrement commit or roll back together.
	Cast(context.Context, CastVoteRequest) (Vote, error)

	CountByEvent(ctx context.Context, eventID snowflake.ID) (int64, error)
}

var (
	ErrInvalidVoter         = errors.New("invalid_voter_identity")
	ErrEventNotActive       = errors.New("event_not_active")
	ErrVotingNotStarted     = errors.New("voting_not_started")
	ErrVotingClosed         = errors.New("voting_closed")
	ErrCandidateNotEligible = errors.New("candidate_not_eligible")
	ErrDuplicateVote        = errors.New("duplicate_vote")
)
