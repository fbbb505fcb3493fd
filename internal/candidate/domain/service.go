package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/pkg/db/pagination"
)

type RegisterCandidateRequest struct {
	EventID    snowflake.ID
	CategoryID snowflake.ID
	Name       string
	Bio        string
	ImageURL   string
}

type ListCandidateRequest struct {
	PageToken  string
	PageSize   int32
	EventID    snowflake.ID
	CategoryID snowflake.ID
	Status     Status
}

type ListCandidateFilter struct {
	EventID    snowflake.ID
	CategoryID snowflake.ID
	Status     Status
}

type ListCandidateResponse struct {
	pagination.PageInfo
	Candidates []Candidate `json:"candidates"`
}

type Service interface {
	// Register creates a pending candidate and assigns a unique voting code.
	Register(context.Context, RegisterCandidateRequest) (Candidate, error)
	Approve(ctx context.Context, id snowflake.ID) (Candidate, error)
	Reject(ctx context.Context, id snowflake.ID, reason string) (Candidate, error)
	GetByID(ctx context.Context, id snowflake.ID) (Candidate, error)
	GetByVotingCode(ctx context.Context, code string) (Candidate, error)
	List(context.Context, ListCandidateRequest) (ListCandidateResponse, error)
}

var (
	ErrNotFound           = errors.New("candidate_not_found")
	ErrInvalidName        = errors.New("invalid_candidate_name")
	ErrInvalidEvent       = errors.New("invalid_candidate_event")
	ErrEventNotAccepting  = errors.New("event_not_accepting_candidates")
	ErrCategoryMismatch   = errors.New("category_not_in_event")
	ErrAlreadyModerated   = errors.New("candidate_already_moderated")
	ErrVotingCodeConflict = errors.New("voting_code_conflict")
)
