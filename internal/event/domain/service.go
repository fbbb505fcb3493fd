package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/pkg/db/pagination"
)

type CreateEventRequest struct {
	OwnerID            snowflake.ID
	Name               string
	Description        string
	AllowMultipleVotes bool
	StartTime          time.Time
	EndTime            time.Time
}

type UpdateEventRequest struct {
	ID          snowflake.ID
	Name        *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

type ListEventRequest struct {
	PageToken string
	PageSize  int32
	Status    Status
	OwnerID   snowflake.ID
}

type ListEventFilter struct {
	Status  Status
	OwnerID snowflake.ID
}

type ListEventResponse struct {
	pagination.PageInfo
	Events []Event `json:"events"`
}

// ResultEntry is a single row of the closed-event tally.
type ResultEntry struct {
	CandidateID  snowflake.ID `json:"candidate_id"`
	CategoryID   snowflake.ID `json:"category_id"`
	Name         string       `json:"name"`
	VoteCount    int64        `json:"vote_count"`
	Rank         int          `json:"rank"`
	RegisteredAt time.Time    `json:"registered_at"`
}

type Service interface {
	Create(context.Context, CreateEventRequest) (Event, error)
	Update(context.Context, UpdateEventRequest) (Event, error)
	GetByID(ctx context.Context, id snowflake.ID) (Event, error)
	List(context.Context, ListEventRequest) (ListEventResponse, error)

	// Transition moves the event to target following the state machine.
	// Entering active enforces the approved-candidate minimum and the
	// start window; entering closed runs the final tally in the same
	// transaction.
	Transition(ctx context.Context, id snowflake.ID, target Status) (Event, error)

	// Results returns the persisted ranking of a closed or archived event.
	Results(ctx context.Context, id snowflake.ID) ([]ResultEntry, error)
}

var (
	ErrNotFound            = errors.New("event_not_found")
	ErrInvalidName         = errors.New("invalid_event_name")
	ErrInvalidSchedule     = errors.New("invalid_event_schedule")
	ErrInvalidStatus       = errors.New("invalid_event_status")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrNotEditable         = errors.New("event_not_editable")
	ErrNotEnoughCandidates = errors.New("not_enough_approved_candidates")
	ErrWindowPassed        = errors.New("event_window_passed")
	ErrResultsNotReady     = errors.New("results_not_ready")
)
