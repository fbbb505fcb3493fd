package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

type Payment struct {
	ID                 snowflake.ID  `json:"id" gorm:"primaryKey"`
	Reference          string        `json:"reference" gorm:"type:text;not null"`
	VoterEmail         string        `json:"voter_email" gorm:"type:text;not null"`
	UserID             *snowflake.ID `json:"user_id"`
	EventID            snowflake.ID  `json:"event_id" gorm:"not null;index"`
	CategoryID         snowflake.ID  `json:"category_id" gorm:"not null"`
	BundleDefinitionID snowflake.ID  `json:"bundle_definition_id" gorm:"not null"`
	BundleID           snowflake.ID  `json:"bundle_id" gorm:"not null"`
	OriginalAmount     int64         `json:"original_amount" gorm:"not null"`
	DiscountAmount     int64         `json:"discount_amount" gorm:"not null"`
	FinalAmount        int64         `json:"final_amount" gorm:"not null"`
	CouponID           *snowflake.ID `json:"coupon_id"`
	Status             Status        `json:"status" gorm:"type:text;not null"`
	GatewayTxnID       string        `json:"gateway_txn_id" gorm:"type:text"`
	Channel            string        `json:"channel" gorm:"type:text"`
	PaidAt             *time.Time    `json:"paid_at"`
	WebhookVerified    bool          `json:"webhook_verified" gorm:"not null"`
	FraudFlag          string        `json:"fraud_flag" gorm:"type:text"`
	AuthorizationURL   string        `json:"authorization_url" gorm:"type:text"`
	AccessCode         string        `json:"access_code" gorm:"type:text"`
	IPAddress          string        `json:"ip_address" gorm:"type:text"`
	FailureReason      string        `json:"failure_reason" gorm:"type:text"`
	RefundReason       string        `json:"refund_reason" gorm:"type:text"`
	RefundedAt         *time.Time    `json:"refunded_at"`
	ExpiresAt          time.Time     `json:"expires_at" gorm:"not null"`
	CreatedAt          time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time     `json:"updated_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// EventRecord is the webhook dedup ledger. The unique key on
// (provider, provider_event_id) makes replayed deliveries no-ops.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	Reference       string         `json:"reference" gorm:"type:text;not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }
