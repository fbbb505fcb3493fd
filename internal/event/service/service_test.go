package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	candidatedomain "github.com/itfy/evoting/internal/candidate/domain"
	candidaterepo "github.com/itfy/evoting/internal/candidate/repository"
	"github.com/itfy/evoting/internal/clock"
	"github.com/itfy/evoting/internal/config"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	eventrepo "github.com/itfy/evoting/internal/event/repository"
	eventservice "github.com/itfy/evoting/internal/event/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE events (
			id BIGINT PRIMARY KEY,
			owner_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			allow_multiple_votes BOOLEAN NOT NULL DEFAULT FALSE,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			current_vote_count BIGINT NOT NULL DEFAULT 0,
			total_revenue BIGINT NOT NULL DEFAULT 0,
			published_at TIMESTAMP,
			activated_at TIMESTAMP,
			closed_at TIMESTAMP,
			archived_at TIMESTAMP,
			cancelled_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE candidates (
			id BIGINT PRIMARY KEY,
			event_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			voting_code TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			vote_count BIGINT NOT NULL DEFAULT 0,
			rank INTEGER NOT NULL DEFAULT 0,
			registered_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE votes (
			id BIGINT PRIMARY KEY,
			event_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			candidate_id BIGINT NOT NULL,
			voter_key TEXT NOT NULL,
			dedup_key TEXT NOT NULL,
			voter_email TEXT NOT NULL DEFAULT '',
			bundle_id BIGINT,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX idx_votes_event_dedup ON votes(event_id, dedup_key)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

func newEventService(t *testing.T, db *gorm.DB, clk clock.Clock) (eventdomain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := eventservice.New(eventservice.Params{
		Config: config.Config{
			Voting: config.VotingConfig{MinApprovedCandidates: 2},
		},
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clk,
		Repo:          eventrepo.Provide(),
		CandidateRepo: candidaterepo.Provide(),
	})
	return svc, node
}

func seedCandidate(t *testing.T, db *gorm.DB, node *snowflake.Node, eventID snowflake.ID, name string, status candidatedomain.Status, registeredAt time.Time) snowflake.ID {
	t.Helper()

	id := node.Generate()
	candidate := candidatedomain.Candidate{
		ID:           id,
		EventID:      eventID,
		CategoryID:   node.Generate(),
		Name:         name,
		VotingCode:   id.String(),
		Status:       status,
		RegisteredAt: registeredAt,
		UpdatedAt:    registeredAt,
	}
	if err := candidaterepo.Provide().Insert(context.Background(), db, &candidate); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return id
}

func seedVote(t *testing.T, db *gorm.DB, node *snowflake.Node, eventID, candidateID snowflake.ID, voter string, at time.Time) {
	t.Helper()

	err := db.Exec(
		`INSERT INTO votes (id, event_id, category_id, candidate_id, voter_key, dedup_key, created_at)
		 VALUES (?, ?, 0, ?, ?, ?, ?)`,
		node.Generate(), eventID, candidateID, voter, voter+":"+candidateID.String(), at,
	).Error
	if err != nil {
		t.Fatalf("seed vote: %v", err)
	}
}

func TestCreateEventStartsDraft(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newEventService(t, db, clk)

	event, err := svc.Create(ctx, eventdomain.CreateEventRequest{
		Name:      "Campus Music Awards",
		StartTime: clk.Now().Add(24 * time.Hour),
		EndTime:   clk.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if event.Status != eventdomain.StatusDraft {
		t.Fatalf("expected draft status, got %s", event.Status)
	}
	if event.Slug == "" {
		t.Fatalf("expected slug to be assigned")
	}

	if _, err := svc.Create(ctx, eventdomain.CreateEventRequest{
		Name:      "Backwards",
		StartTime: clk.Now().Add(72 * time.Hour),
		EndTime:   clk.Now().Add(24 * time.Hour),
	}); err != eventdomain.ErrInvalidSchedule {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestActivationRequiresApprovedCandidates(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, node := newEventService(t, db, clk)

	event, err := svc.Create(ctx, eventdomain.CreateEventRequest{
		Name:      "Talent Hunt",
		StartTime: clk.Now().Add(24 * time.Hour),
		EndTime:   clk.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}

	seedCandidate(t, db, node, event.ID, "Ada", candidatedomain.StatusApproved, clk.Now())
	seedCandidate(t, db, node, event.ID, "Ben", candidatedomain.StatusPending, clk.Now())

	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusActive); err != eventdomain.ErrNotEnoughCandidates {
		t.Fatalf("expected ErrNotEnoughCandidates, got %v", err)
	}

	seedCandidate(t, db, node, event.ID, "Chi", candidatedomain.StatusApproved, clk.Now())

	activated, err := svc.Transition(ctx, event.ID, eventdomain.StatusActive)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.Status != eventdomain.StatusActive {
		t.Fatalf("expected active status, got %s", activated.Status)
	}
	if activated.ActivatedAt == nil {
		t.Fatalf("expected activated_at to be set")
	}
}

func TestActivationRejectedAfterStartTime(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, node := newEventService(t, db, clk)

	event, err := svc.Create(ctx, eventdomain.CreateEventRequest{
		Name:      "Late Start",
		StartTime: clk.Now().Add(time.Hour),
		EndTime:   clk.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}
	seedCandidate(t, db, node, event.ID, "Ada", candidatedomain.StatusApproved, clk.Now())
	seedCandidate(t, db, node, event.ID, "Ben", candidatedomain.StatusApproved, clk.Now())

	clk.Advance(2 * time.Hour)

	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusActive); err != eventdomain.ErrWindowPassed {
		t.Fatalf("expected ErrWindowPassed, got %v", err)
	}
}

func TestCloseTalliesAndRanks(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, node := newEventService(t, db, clk)

	event, err := svc.Create(ctx, eventdomain.CreateEventRequest{
		Name:      "Final Showdown",
		StartTime: clk.Now().Add(time.Hour),
		EndTime:   clk.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}

	early := clk.Now()
	late := early.Add(time.Minute)
	first := seedCandidate(t, db, node, event.ID, "Ada", candidatedomain.StatusApproved, late)
	second := seedCandidate(t, db, node, event.ID, "Ben", candidatedomain.StatusApproved, early)
	third := seedCandidate(t, db, node, event.ID, "Chi", candidatedomain.StatusApproved, late)

	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusActive); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if _, err := svc.Results(ctx, event.ID); err != eventdomain.ErrResultsNotReady {
		t.Fatalf("expected ErrResultsNotReady, got %v", err)
	}

	// first gets two votes; second and third tie on one vote each, with
	// second registered earlier.
	seedVote(t, db, node, event.ID, first, "email:a@example.com", clk.Now())
	seedVote(t, db, node, event.ID, first, "email:b@example.com", clk.Now())
	seedVote(t, db, node, event.ID, second, "email:c@example.com", clk.Now())
	seedVote(t, db, node, event.ID, third, "email:d@example.com", clk.Now())

	closed, err := svc.Transition(ctx, event.ID, eventdomain.StatusClosed)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.ClosedAt == nil {
		t.Fatalf("expected closed_at to be set")
	}

	results, err := svc.Results(ctx, event.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 result rows, got %d", len(results))
	}
	if results[0].CandidateID != first || results[0].Rank != 1 || results[0].VoteCount != 2 {
		t.Fatalf("unexpected first place: %+v", results[0])
	}
	if results[1].CandidateID != second || results[1].Rank != 2 {
		t.Fatalf("expected earlier registration to win the tie, got %+v", results[1])
	}
	if results[2].CandidateID != third || results[2].Rank != 3 {
		t.Fatalf("unexpected third place: %+v", results[2])
	}

	var eventCount int64
	if err := db.Raw(`SELECT current_vote_count FROM events WHERE id = ?`, event.ID).Scan(&eventCount).Error; err != nil {
		t.Fatalf("scan event count: %v", err)
	}
	if eventCount != 4 {
		t.Fatalf("expected event vote count 4, got %d", eventCount)
	}

	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusClosed); err != eventdomain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on double close, got %v", err)
	}
}

func TestUpdateOnlyBeforeActivation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, node := newEventService(t, db, clk)

	event, err := svc.Create(ctx, eventdomain.CreateEventRequest{
		Name:      "Editable",
		StartTime: clk.Now().Add(time.Hour),
		EndTime:   clk.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	name := "Renamed"
	updated, err := svc.Update(ctx, eventdomain.UpdateEventRequest{ID: event.ID, Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("expected renamed event, got %s", updated.Name)
	}

	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}
	seedCandidate(t, db, node, event.ID, "Ada", candidatedomain.StatusApproved, clk.Now())
	seedCandidate(t, db, node, event.ID, "Ben", candidatedomain.StatusApproved, clk.Now())
	if _, err := svc.Transition(ctx, event.ID, eventdomain.StatusActive); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if _, err := svc.Update(ctx, eventdomain.UpdateEventRequest{ID: event.ID, Name: &name}); err != eventdomain.ErrNotEditable {
		t.Fatalf("expected ErrNotEditable, got %v", err)
	}
}
