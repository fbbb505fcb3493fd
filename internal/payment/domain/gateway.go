package domain

import (
	"context"
	"time"
)

type GatewayInitRequest struct {
	Email     string
	Amount    int64
	Reference string
	Currency  string
	Metadata  map[string]interface{}
}

type GatewayInitResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type GatewayVerification struct {
	Status        string
	Amount        int64
	TransactionID string
	Channel       string
	PaidAt        *time.Time
	Message       string
}

const (
	GatewayStatusSuccess   = "success"
	GatewayStatusFailed    = "failed"
	GatewayStatusAbandoned = "abandoned"
	GatewayStatusPending   = "pending"
)

// Gateway is the hosted-checkout payment provider port.
type Gateway interface {
	Initialize(ctx context.Context, req GatewayInitRequest) (GatewayInitResponse, error)
	Verify(ctx context.Context, reference string) (GatewayVerification, error)
	Refund(ctx context.Context, transactionID string, amount int64) error

	// VerifySignature authenticates a webhook body against its
	// signature header before any payload field is trusted.
	VerifySignature(payload []byte, signature string) error
}
