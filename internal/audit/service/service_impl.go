package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/itfy/evoting/internal/audit/domain"
	"github.com/itfy/evoting/internal/audit/masking"
	"github.com/itfy/evoting/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Recorder struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Recorder {
	return &Recorder{
		db:    p.DB,
		log:   p.Log.Named("audit"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (r *Recorder) Record(ctx context.Context, actorID snowflake.ID, action, targetType, targetID string, metadata map[string]interface{}) {
	entry := domain.Entry{
		ID:         r.genID.Generate(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(masking.MaskJSON(metadata)),
		CreatedAt:  r.clock.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO audit_logs (id, actor_id, action, target_type, target_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Metadata,
		entry.CreatedAt,
	).Error
	if err != nil {
		r.log.Warn("audit record failed",
			zap.String("action", action),
			zap.String("target_id", targetID),
			zap.Error(err),
		)
	}
}
