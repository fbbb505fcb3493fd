package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type InitializePaymentRequest struct {
	VoterEmail         string
	UserID             snowflake.ID
	EventID            snowflake.ID
	CategoryID         snowflake.ID
	BundleDefinitionID snowflake.ID
	CouponCode         string
	IPAddress          string
}

type InitializePaymentResponse struct {
	Payment          Payment `json:"payment"`
	AuthorizationURL string  `json:"authorization_url"`
	AccessCode       string  `json:"access_code"`
}

type Service interface {
	// Initialize creates a pending payment and hands the voter off to
	// the gateway checkout. Re-invoking with an open pending payment
	// returns that payment unchanged.
	Initialize(context.Context, InitializePaymentRequest) (InitializePaymentResponse, error)

	// Verify pulls the authoritative status from the gateway and
	// settles the payment. Safe to call any number of times.
	Verify(ctx context.Context, reference string) (Payment, error)

	Refund(ctx context.Context, reference, reason string) (Payment, error)
	GetByReference(ctx context.Context, reference string) (Payment, error)
	ListByEvent(ctx context.Context, eventID snowflake.ID) ([]Payment, error)
}

// WebhookService ingests asynchronous gateway deliveries. Settlement
// logic is shared with Verify so both paths converge on one outcome.
type WebhookService interface {
	Ingest(ctx context.Context, payload []byte, signature string) error
}

var (
	ErrNotFound            = errors.New("payment_not_found")
	ErrInvalidRequest      = errors.New("invalid_payment_request")
	ErrEventNotPurchasable = errors.New("event_not_purchasable")
	ErrInvalidBundle       = errors.New("invalid_bundle_selection")
	ErrAlreadyPurchased    = errors.New("already_purchased")
	ErrFraudRejected       = errors.New("payment_rejected")
	ErrNotRefundable       = errors.New("payment_not_refundable")
	ErrGatewayUnavailable  = errors.New("gateway_unavailable")
	ErrInvalidSignature    = errors.New("invalid_signature")
)
