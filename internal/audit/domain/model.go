package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Entry struct {
	ID         snowflake.ID      `json:"id" gorm:"primaryKey"`
	ActorID    snowflake.ID      `json:"actor_id"`
	Action     string            `json:"action" gorm:"type:text;not null"`
	TargetType string            `json:"target_type" gorm:"type:text;not null"`
	TargetID   string            `json:"target_id" gorm:"type:text;not null"`
	Metadata   datatypes.JSONMap `json:"metadata"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null"`
}

func (Entry) TableName() string { return "audit_logs" }

// Recorder appends to the audit trail. Recording is best effort and
// must never fail the calling operation.
type Recorder interface {
	Record(ctx context.Context, actorID snowflake.ID, action, targetType, targetID string, metadata map[string]interface{})
}
