package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Candidate struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	EventID      snowflake.ID `json:"event_id" gorm:"not null;index"`
	CategoryID   snowflake.ID `json:"category_id" gorm:"not null;index"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	Bio          string       `json:"bio" gorm:"type:text"`
	ImageURL     string       `json:"image_url" gorm:"type:text"`
	VotingCode   string       `json:"voting_code" gorm:"type:text"`
	Status       Status       `json:"status" gorm:"type:text;not null"`
	VoteCount    int64        `json:"vote_count" gorm:"not null"`
	Rank         int          `json:"rank" gorm:"not null"`
	RegisteredAt time.Time    `json:"registered_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (Candidate) TableName() string { return "candidates" }
