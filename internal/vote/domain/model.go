package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Vote struct {
	ID          snowflake.ID  `json:"id" gorm:"primaryKey"`
	EventID     snowflake.ID  `json:"event_id" gorm:"not null;index"`
	CategoryID  snowflake.ID  `json:"category_id" gorm:"not null"`
	CandidateID snowflake.ID  `json:"candidate_id" gorm:"not null;index"`
	VoterKey    string        `json:"voter_key" gorm:"type:text;not null"`
	DedupKey    string        `json:"-" gorm:"type:text;not null"`
	VoterEmail  string        `json:"voter_email" gorm:"type:text"`
	BundleID    *snowflake.ID `json:"bundle_id"`
	IPAddress   string        `json:"ip_address" gorm:"type:text"`
	UserAgent   string        `json:"user_agent" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null"`
}

func (Vote) TableName() string { return "votes" }
