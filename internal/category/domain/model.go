package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category is a competition track inside an event. Candidates, bundles
// and votes are all scoped to one category.
type Category struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	EventID     snowflake.ID `json:"event_id" gorm:"not null;index"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Description string       `json:"description" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Category) TableName() string { return "categories" }
