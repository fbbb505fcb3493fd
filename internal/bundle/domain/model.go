package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Definition is an organizer-published bundle offer: a price for a
// number of votes in one event category.
type Definition struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	EventID      snowflake.ID `json:"event_id" gorm:"not null;index"`
	CategoryID   snowflake.ID `json:"category_id" gorm:"not null;index"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	Price        int64        `json:"price" gorm:"not null"`
	VoteQuantity int          `json:"vote_quantity" gorm:"not null"`
	Active       bool         `json:"active" gorm:"not null"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (Definition) TableName() string { return "bundle_definitions" }

// VoteBundle is one purchased instance of a definition. It is issued
// alongside a payment and only becomes spendable once that payment
// settles and votes are credited.
type VoteBundle struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	DefinitionID   snowflake.ID  `json:"definition_id" gorm:"not null;index"`
	EventID        snowflake.ID  `json:"event_id" gorm:"not null;index"`
	CategoryID     snowflake.ID  `json:"category_id" gorm:"not null"`
	Code           string        `json:"code" gorm:"type:text;not null"`
	Price          int64         `json:"price" gorm:"not null"`
	VoteQuantity   int           `json:"vote_quantity" gorm:"not null"`
	VotesRemaining int           `json:"votes_remaining" gorm:"not null"`
	PaymentID      *snowflake.ID `json:"payment_id"`
	ExpiresAt      *time.Time    `json:"expires_at"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"not null"`
}

func (VoteBundle) TableName() string { return "vote_bundles" }
