package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
	StatusArchived  Status = "archived"
	StatusCancelled Status = "cancelled"
)

// transitions is the only source of truth for the event state machine.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusCancelled},
	StatusPublished: {StatusActive, StatusCancelled},
	StatusActive:    {StatusClosed, StatusCancelled},
	StatusClosed:    {StatusArchived},
	StatusArchived:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

type Event struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	OwnerID            snowflake.ID `json:"owner_id" gorm:"not null;index"`
	Name               string       `json:"name" gorm:"type:text;not null"`
	Slug               string       `json:"slug" gorm:"type:text;not null"`
	Description        string       `json:"description" gorm:"type:text"`
	Status             Status       `json:"status" gorm:"type:text;not null"`
	AllowMultipleVotes bool         `json:"allow_multiple_votes" gorm:"not null"`
	StartTime          time.Time    `json:"start_time" gorm:"not null"`
	EndTime            time.Time    `json:"end_time" gorm:"not null"`
	CurrentVoteCount   int64        `json:"current_vote_count" gorm:"not null"`
	TotalRevenue       int64        `json:"total_revenue" gorm:"not null"`
	PublishedAt        *time.Time   `json:"published_at"`
	ActivatedAt        *time.Time   `json:"activated_at"`
	ClosedAt           *time.Time   `json:"closed_at"`
	ArchivedAt         *time.Time   `json:"archived_at"`
	CancelledAt        *time.Time   `json:"cancelled_at"`
	CreatedAt          time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time    `json:"updated_at" gorm:"not null"`
}

func (Event) TableName() string { return "events" }
